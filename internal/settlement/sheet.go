package settlement

import (
	"errors"
	"fmt"
)

var ErrNegativeScore = errors.New("base score must not be negative")

// AttendanceSheet is the serialised form of an attendance settlement request.
// A nil PenaltyPerMiss falls back to the policy's value.
type AttendanceSheet struct {
	Participants   []string          `json:"participants" yaml:"participants"`
	Records        map[string][]bool `json:"records" yaml:"records"`
	TotalSessions  int               `json:"total_sessions" yaml:"total_sessions"`
	DepositAmount  int64             `json:"deposit_amount" yaml:"deposit_amount"`
	PenaltyPerMiss *int64            `json:"penalty_per_miss,omitempty" yaml:"penalty_per_miss,omitempty"`
}

type AttendanceReport struct {
	Results      []AttendanceResult `json:"results" yaml:"results"`
	TotalRefund  int64              `json:"total_refund" yaml:"total_refund"`
	TotalPenalty int64              `json:"total_penalty" yaml:"total_penalty"`
}

func (s AttendanceSheet) Settle(p Policy) (AttendanceReport, error) {
	penalty := p.PenaltyPerMiss
	if s.PenaltyPerMiss != nil {
		penalty = *s.PenaltyPerMiss
	}
	in, err := NewAttendanceInput(s.Participants, s.Records, s.TotalSessions, s.DepositAmount, penalty)
	if err != nil {
		return AttendanceReport{}, err
	}
	results := ComputeAttendanceSettlement(in)
	return AttendanceReport{
		Results:      results,
		TotalRefund:  TotalRefund(results),
		TotalPenalty: TotalPenalty(results),
	}, nil
}

type MissionSheetEntry struct {
	ID       string         `json:"id" yaml:"id"`
	Title    string         `json:"title" yaml:"title"`
	Progress map[string]int `json:"progress" yaml:"progress"`
}

// MissionSheet is the serialised form of a mission ranking request.
// Nil RewardTiers falls back to the policy's schedule.
type MissionSheet struct {
	Participants []string            `json:"participants" yaml:"participants"`
	Missions     []MissionSheetEntry `json:"missions" yaml:"missions"`
	BaseScores   []ScoreEntry        `json:"base_scores" yaml:"base_scores"`
	RewardTiers  []RewardTier        `json:"reward_tiers,omitempty" yaml:"reward_tiers,omitempty"`
}

type MissionReport struct {
	MissionScores []ScoreEntry `json:"mission_scores" yaml:"mission_scores"`
	Standings     []Standing   `json:"standings" yaml:"standings"`
}

func (s MissionSheet) Settle(p Policy) (MissionReport, error) {
	tiers := p.RewardTiers
	if s.RewardTiers != nil {
		tiers = s.RewardTiers
	}
	schedule, err := NewRewardSchedule(tiers)
	if err != nil {
		return MissionReport{}, err
	}
	for _, e := range s.BaseScores {
		if e.Score < 0 {
			return MissionReport{}, fmt.Errorf("%w: %s has %d", ErrNegativeScore, e.Participant, e.Score)
		}
	}
	missions := make([]Mission, 0, len(s.Missions))
	for _, m := range s.Missions {
		missions = append(missions, NewMission(m.ID, m.Title, m.Progress))
	}
	scores := ComputeMissionScores(missions, s.Participants)
	return MissionReport{
		MissionScores: scores.Entries(),
		Standings:     ComputeFinalRanking(scores, ScoreBoardOf(s.BaseScores...), schedule),
	}, nil
}
