package settlement

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidRewardTiers = errors.New("invalid reward tiers")

// RewardTier pays Amount to the participant finishing at Rank (1-based).
type RewardTier struct {
	Rank   int   `json:"rank" yaml:"rank"`
	Amount int64 `json:"amount" yaml:"amount"`
}

// RewardSchedule is a validated list of tiers with ranks 1..n in order.
type RewardSchedule struct {
	tiers []RewardTier
}

// DefaultRewardTiers pays the top three of a room.
func DefaultRewardTiers() []RewardTier {
	return []RewardTier{
		{Rank: 1, Amount: 5000},
		{Rank: 2, Amount: 3000},
		{Rank: 3, Amount: 1000},
	}
}

// NewRewardSchedule sorts tiers by rank and checks that ranks are contiguous
// from 1 and amounts are not negative.
func NewRewardSchedule(tiers []RewardTier) (RewardSchedule, error) {
	sorted := append([]RewardTier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	for i, t := range sorted {
		if t.Rank != i+1 {
			return RewardSchedule{}, fmt.Errorf("%w: expected rank %d, got %d", ErrInvalidRewardTiers, i+1, t.Rank)
		}
		if t.Amount < 0 {
			return RewardSchedule{}, fmt.Errorf("%w: negative amount for rank %d", ErrInvalidRewardTiers, t.Rank)
		}
	}
	return RewardSchedule{tiers: sorted}, nil
}

// DefaultRewardSchedule wraps DefaultRewardTiers.
func DefaultRewardSchedule() RewardSchedule {
	return RewardSchedule{tiers: DefaultRewardTiers()}
}

// RewardFor returns the reward for a 1-based rank; ranks past the schedule earn nothing.
func (s RewardSchedule) RewardFor(rank int) int64 {
	if rank < 1 || rank > len(s.tiers) {
		return 0
	}
	return s.tiers[rank-1].Amount
}

func (s RewardSchedule) Tiers() []RewardTier { return append([]RewardTier(nil), s.tiers...) }

// Standing is one row of a room's final ranking.
type Standing struct {
	Participant  string `json:"participant" yaml:"participant"`
	BaseScore    int    `json:"base_score" yaml:"base_score"`
	MissionScore int    `json:"mission_score" yaml:"mission_score"`
	TotalScore   int    `json:"total_score" yaml:"total_score"`
	Rank         int    `json:"rank" yaml:"rank"`
	Reward       int64  `json:"reward" yaml:"reward"`
}

// ComputeFinalRanking ranks everyone on either board by base + mission
// score, highest first. Equal totals keep enumeration order: base board
// participants first, then participants only known to the mission board.
func ComputeFinalRanking(missionScores, baseScores ScoreBoard, tiers RewardSchedule) []Standing {
	standings := make([]Standing, 0, baseScores.Len()+missionScores.Len())
	seen := make(map[string]struct{}, cap(standings))
	collect := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		base, mission := baseScores.Get(p), missionScores.Get(p)
		standings = append(standings, Standing{
			Participant:  p,
			BaseScore:    base,
			MissionScore: mission,
			TotalScore:   base + mission,
		})
	}
	for _, p := range baseScores.order {
		collect(p)
	}
	for _, p := range missionScores.order {
		collect(p)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalScore > standings[j].TotalScore
	})
	for i := range standings {
		standings[i].Rank = i + 1
		standings[i].Reward = tiers.RewardFor(i + 1)
	}
	return standings
}

// Settle runs the whole mission flow for one room.
func Settle(missions []Mission, participants []string, baseScores ScoreBoard, tiers RewardSchedule) []Standing {
	return ComputeFinalRanking(ComputeMissionScores(missions, participants), baseScores, tiers)
}
