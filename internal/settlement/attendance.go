package settlement

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidTotalSessions = errors.New("total sessions must be positive")
	ErrNegativeDeposit      = errors.New("deposit amount must not be negative")
	ErrNegativePenalty      = errors.New("penalty per miss must not be negative")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrEmptyParticipant     = errors.New("participant id must not be empty")
)

// DefaultPenaltyPerMiss is deducted from the deposit for every missed session.
const DefaultPenaltyPerMiss = 10000

// AttendanceInput is a validated snapshot of one study's attendance.
// Build it with NewAttendanceInput; the zero value settles nobody.
type AttendanceInput struct {
	participants   []string
	records        map[string][]bool
	totalSessions  int
	depositAmount  int64
	penaltyPerMiss int64
}

// NewAttendanceInput validates the policy numbers and the roster and copies
// everything it is given, so later changes by the caller are not observed.
//
// Records are not required to have TotalSessions entries. A missing record
// means nothing was attended.
func NewAttendanceInput(participants []string, records map[string][]bool, totalSessions int, depositAmount, penaltyPerMiss int64) (AttendanceInput, error) {
	if totalSessions <= 0 {
		return AttendanceInput{}, fmt.Errorf("%w: got %d", ErrInvalidTotalSessions, totalSessions)
	}
	if depositAmount < 0 {
		return AttendanceInput{}, fmt.Errorf("%w: got %d", ErrNegativeDeposit, depositAmount)
	}
	if penaltyPerMiss < 0 {
		return AttendanceInput{}, fmt.Errorf("%w: got %d", ErrNegativePenalty, penaltyPerMiss)
	}
	roster, err := copyRoster(participants)
	if err != nil {
		return AttendanceInput{}, err
	}

	recs := make(map[string][]bool, len(roster))
	for _, p := range roster {
		if r, ok := records[p]; ok {
			recs[p] = append([]bool(nil), r...)
		}
	}

	return AttendanceInput{
		participants:   roster,
		records:        recs,
		totalSessions:  totalSessions,
		depositAmount:  depositAmount,
		penaltyPerMiss: penaltyPerMiss,
	}, nil
}

func (in AttendanceInput) Participants() []string { return append([]string(nil), in.participants...) }
func (in AttendanceInput) TotalSessions() int     { return in.totalSessions }
func (in AttendanceInput) DepositAmount() int64   { return in.depositAmount }
func (in AttendanceInput) PenaltyPerMiss() int64  { return in.penaltyPerMiss }

// AttendanceResult is one participant's row of an attendance settlement.
type AttendanceResult struct {
	Participant      string `json:"participant" yaml:"participant"`
	AttendedSessions int    `json:"attended_sessions" yaml:"attended_sessions"`
	MissedSessions   int    `json:"missed_sessions" yaml:"missed_sessions"`
	Penalty          int64  `json:"penalty" yaml:"penalty"`
	Refund           int64  `json:"refund" yaml:"refund"`
	Rate             int    `json:"rate" yaml:"rate"`
	Tier             Tier   `json:"tier" yaml:"tier"`
}

// ComputeAttendanceSettlement returns one result per participant in roster order.
//
// Missed sessions are derived from the declared total, not from the record
// length. Entries past the declared total are ignored so that a participant
// can never attend more sessions than the study has.
func ComputeAttendanceSettlement(in AttendanceInput) []AttendanceResult {
	results := make([]AttendanceResult, 0, len(in.participants))
	for _, p := range in.participants {
		attended := countAttended(in.records[p], in.totalSessions)
		missed := in.totalSessions - attended
		penalty := mulCapped(int64(missed), in.penaltyPerMiss)
		refund := in.depositAmount - penalty
		if refund < 0 {
			refund = 0
		}
		rate := AttendanceRate(attended, in.totalSessions)
		results = append(results, AttendanceResult{
			Participant:      p,
			AttendedSessions: attended,
			MissedSessions:   missed,
			Penalty:          penalty,
			Refund:           refund,
			Rate:             rate,
			Tier:             RateTier(rate),
		})
	}
	return results
}

func countAttended(record []bool, total int) int {
	if len(record) > total {
		record = record[:total]
	}
	n := 0
	for _, ok := range record {
		if ok {
			n++
		}
	}
	return n
}

// mulCapped multiplies two non-negative amounts, stopping at math.MaxInt64.
func mulCapped(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}

// addCapped adds two non-negative amounts, stopping at math.MaxInt64.
func addCapped(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// TotalRefund sums the refunds of a settlement.
func TotalRefund(results []AttendanceResult) int64 {
	var sum int64
	for _, r := range results {
		sum = addCapped(sum, r.Refund)
	}
	return sum
}

// TotalPenalty sums the penalties of a settlement.
func TotalPenalty(results []AttendanceResult) int64 {
	var sum int64
	for _, r := range results {
		sum = addCapped(sum, r.Penalty)
	}
	return sum
}

func copyRoster(participants []string) ([]string, error) {
	seen := make(map[string]struct{}, len(participants))
	out := make([]string, 0, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, ErrEmptyParticipant
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
