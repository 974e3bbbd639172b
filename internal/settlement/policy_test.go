package settlement

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantPenalty int64
		wantTiers   []RewardTier
		wantErr     error
	}{
		{
			name:        "empty document keeps defaults",
			yaml:        "",
			wantPenalty: DefaultPenaltyPerMiss,
			wantTiers:   DefaultRewardTiers(),
		},
		{
			name:        "override penalty only",
			yaml:        "penalty_per_miss: 5000\n",
			wantPenalty: 5000,
			wantTiers:   DefaultRewardTiers(),
		},
		{
			name:        "override tiers",
			yaml:        "reward_tiers:\n  - rank: 1\n    amount: 10000\n  - rank: 2\n    amount: 2000\n",
			wantPenalty: DefaultPenaltyPerMiss,
			wantTiers:   []RewardTier{{1, 10000}, {2, 2000}},
		},
		{
			name:    "negative penalty",
			yaml:    "penalty_per_miss: -1\n",
			wantErr: ErrNegativePenalty,
		},
		{
			name:    "gap in tiers",
			yaml:    "reward_tiers:\n  - rank: 2\n    amount: 10\n",
			wantErr: ErrInvalidRewardTiers,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(tt.yaml))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePolicy() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy() error = %v", err)
			}
			if p.PenaltyPerMiss != tt.wantPenalty {
				t.Errorf("PenaltyPerMiss = %d, want %d", p.PenaltyPerMiss, tt.wantPenalty)
			}
			if !reflect.DeepEqual(p.RewardTiers, tt.wantTiers) {
				t.Errorf("RewardTiers = %v, want %v", p.RewardTiers, tt.wantTiers)
			}
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil || !reflect.DeepEqual(p, DefaultPolicy()) {
		t.Fatalf("LoadPolicy(\"\") = %+v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("penalty_per_miss: 2500\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err = LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if p.PenaltyPerMiss != 2500 {
		t.Errorf("PenaltyPerMiss = %d, want 2500", p.PenaltyPerMiss)
	}

	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadPolicy() on a missing file returned no error")
	}
}

func TestPolicySchedule(t *testing.T) {
	s, err := DefaultPolicy().Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if got := s.RewardFor(1); got != 5000 {
		t.Errorf("RewardFor(1) = %d, want 5000", got)
	}

	bad := Policy{RewardTiers: []RewardTier{{Rank: 1, Amount: 100}, {Rank: 3, Amount: 10}}}
	if _, err := bad.Schedule(); !errors.Is(err, ErrInvalidRewardTiers) {
		t.Errorf("Schedule() error = %v, want %v", err, ErrInvalidRewardTiers)
	}
	sheet := MissionSheet{Participants: []string{"a"}}
	if _, err := sheet.Settle(bad); !errors.Is(err, ErrInvalidRewardTiers) {
		t.Errorf("MissionSheet.Settle() error = %v, want %v", err, ErrInvalidRewardTiers)
	}
}
