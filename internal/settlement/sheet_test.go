package settlement

import (
	"errors"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAttendanceSheetSettle(t *testing.T) {
	const doc = `
participants: [kim, lee]
records:
  kim: [true, true, false, true]
  lee: [false, true]
total_sessions: 4
deposit_amount: 50000
`
	var sheet AttendanceSheet
	if err := yaml.Unmarshal([]byte(doc), &sheet); err != nil {
		t.Fatal(err)
	}

	report, err := sheet.Settle(DefaultPolicy())
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results", len(report.Results))
	}
	if r := report.Results[0]; r.Participant != "kim" || r.Refund != 40000 || r.Rate != 75 {
		t.Errorf("kim = %+v", r)
	}
	if r := report.Results[1]; r.Participant != "lee" || r.Refund != 20000 || r.Tier != TierBad {
		t.Errorf("lee = %+v", r)
	}
	if report.TotalRefund != 60000 || report.TotalPenalty != 40000 {
		t.Errorf("totals = %d / %d", report.TotalRefund, report.TotalPenalty)
	}
}

func TestAttendanceSheetPenaltyOverride(t *testing.T) {
	zero := int64(0)
	sheet := AttendanceSheet{
		Participants:   []string{"a"},
		TotalSessions:  3,
		DepositAmount:  30000,
		PenaltyPerMiss: &zero,
	}
	report, err := sheet.Settle(DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Refund != 30000 {
		t.Errorf("refund = %d, want full deposit", report.Results[0].Refund)
	}

	sheet.TotalSessions = 0
	if _, err := sheet.Settle(DefaultPolicy()); !errors.Is(err, ErrInvalidTotalSessions) {
		t.Errorf("Settle() error = %v, want %v", err, ErrInvalidTotalSessions)
	}
}

func TestMissionSheetSettle(t *testing.T) {
	const doc = `
participants: [me, kim, lee]
missions:
  - id: m1
    title: algorithms
    progress: {me: 100, kim: 100, lee: 40}
  - id: m2
    title: review
    progress: {lee: 100}
base_scores:
  - {participant: me, score: 0}
  - {participant: kim, score: 20}
  - {participant: lee, score: 10}
`
	var sheet MissionSheet
	if err := yaml.Unmarshal([]byte(doc), &sheet); err != nil {
		t.Fatal(err)
	}

	report, err := sheet.Settle(DefaultPolicy())
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	wantScores := []ScoreEntry{{"me", 100}, {"kim", 80}, {"lee", 100}}
	for i, w := range wantScores {
		if report.MissionScores[i] != w {
			t.Errorf("mission score %d = %+v, want %+v", i, report.MissionScores[i], w)
		}
	}
	wantOrder := []string{"lee", "me", "kim"}
	for i, p := range wantOrder {
		if report.Standings[i].Participant != p {
			t.Errorf("rank %d = %s, want %s", i+1, report.Standings[i].Participant, p)
		}
	}
	if report.Standings[0].Reward != 5000 {
		t.Errorf("first reward = %d", report.Standings[0].Reward)
	}
}

func TestMissionSheetInvalidTiers(t *testing.T) {
	sheet := MissionSheet{RewardTiers: []RewardTier{{Rank: 2, Amount: 100}}}
	if _, err := sheet.Settle(DefaultPolicy()); !errors.Is(err, ErrInvalidRewardTiers) {
		t.Errorf("Settle() error = %v, want %v", err, ErrInvalidRewardTiers)
	}
}

func TestMissionSheetNegativeBaseScore(t *testing.T) {
	sheet := MissionSheet{
		Participants: []string{"a", "b"},
		BaseScores:   []ScoreEntry{{"a", 10}, {"b", -5}},
	}
	if _, err := sheet.Settle(DefaultPolicy()); !errors.Is(err, ErrNegativeScore) {
		t.Errorf("Settle() error = %v, want %v", err, ErrNegativeScore)
	}
}

func TestAttendanceSheetHugePenalty(t *testing.T) {
	penalty := int64(math.MaxInt64 - 2499)
	sheet := AttendanceSheet{
		Participants:   []string{"a"},
		TotalSessions:  2,
		DepositAmount:  1000,
		PenaltyPerMiss: &penalty,
	}
	report, err := sheet.Settle(DefaultPolicy())
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if r := report.Results[0]; r.Refund != 0 || r.Penalty < 0 {
		t.Errorf("result = %+v, want refund 0 and non-negative penalty", r)
	}
}
