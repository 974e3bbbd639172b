package mogakco

import (
	"testing"

	"github.com/susu3304/studybot/internal/settlement"
)

func TestSnapshotSettle(t *testing.T) {
	snap := Snapshot{
		Participants: []Participant{
			{UserID: "kim", BaseScore: 0},
			{UserID: "lee", BaseScore: 10},
			{UserID: "park", BaseScore: 0},
		},
		Missions: []Mission{
			{ID: "m1", Title: "API", Progress: map[string]int{"kim": 100, "lee": 50, "park": 100}},
			{ID: "m2", Title: "Test", Progress: map[string]int{"lee": 100, "ghost": 100}},
		},
	}

	got := snap.Settle(settlement.DefaultRewardSchedule())
	want := []settlement.Standing{
		{Participant: "lee", BaseScore: 10, MissionScore: 100, TotalScore: 110, Rank: 1, Reward: 5000},
		{Participant: "kim", BaseScore: 0, MissionScore: 100, TotalScore: 100, Rank: 2, Reward: 3000},
		{Participant: "park", BaseScore: 0, MissionScore: 80, TotalScore: 80, Rank: 3, Reward: 1000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d standings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("standing %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSnapshotMissionScores(t *testing.T) {
	snap := Snapshot{
		Participants: []Participant{{UserID: "a"}, {UserID: "b"}},
		Missions: []Mission{
			{ID: "m1", Progress: map[string]int{"a": 100, "b": 130}},
			{ID: "m2", Progress: map[string]int{"a": 90}},
		},
	}
	board := snap.MissionScores()
	if board.Get("a") != 100 || board.Get("b") != 80 || board.Len() != 2 {
		t.Errorf("scores = %v", board.Map())
	}
}

func TestSnapshotEmptyRoom(t *testing.T) {
	if got := (Snapshot{}).Settle(settlement.DefaultRewardSchedule()); len(got) != 0 {
		t.Errorf("empty room ranked %+v", got)
	}
}
