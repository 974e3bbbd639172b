package settlement

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the tunable numbers of both settlement flows.
type Policy struct {
	PenaltyPerMiss int64        `yaml:"penalty_per_miss"`
	RewardTiers    []RewardTier `yaml:"reward_tiers"`
}

func DefaultPolicy() Policy {
	return Policy{
		PenaltyPerMiss: DefaultPenaltyPerMiss,
		RewardTiers:    DefaultRewardTiers(),
	}
}

func (p Policy) Validate() error {
	if p.PenaltyPerMiss < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativePenalty, p.PenaltyPerMiss)
	}
	_, err := NewRewardSchedule(p.RewardTiers)
	return err
}

// Schedule returns the policy's reward schedule, or ErrInvalidRewardTiers
// when the tiers do not describe ranks 1..n.
func (p Policy) Schedule() (RewardSchedule, error) {
	return NewRewardSchedule(p.RewardTiers)
}

// ParsePolicy reads a YAML policy. Omitted fields keep their defaults;
// an explicit empty reward_tiers list disables rewards.
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicy reads a policy file. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}
