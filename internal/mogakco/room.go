package mogakco

import (
	"time"

	"github.com/susu3304/studybot/internal/settlement"
)

type Room struct {
	ID        int64
	ChannelID string
	GuildID   int64
	HostID    string
	Status    string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

type Participant struct {
	UserID    string
	BaseScore int
}

type Mission struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	Progress    map[string]int
}

// Snapshot is everything needed to rank a room. Participants are in join order.
type Snapshot struct {
	Room         Room
	Participants []Participant
	Missions     []Mission
}

func (s Snapshot) roster() []string {
	ids := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// MissionScores returns the mission points earned so far.
func (s Snapshot) MissionScores() settlement.ScoreBoard {
	return settlement.ComputeMissionScores(s.missions(), s.roster())
}

// Settle ranks the room with the given reward schedule.
func (s Snapshot) Settle(tiers settlement.RewardSchedule) []settlement.Standing {
	base := make([]settlement.ScoreEntry, 0, len(s.Participants))
	for _, p := range s.Participants {
		base = append(base, settlement.ScoreEntry{Participant: p.UserID, Score: p.BaseScore})
	}
	return settlement.Settle(s.missions(), s.roster(), settlement.ScoreBoardOf(base...), tiers)
}

func (s Snapshot) missions() []settlement.Mission {
	out := make([]settlement.Mission, 0, len(s.Missions))
	for _, m := range s.Missions {
		out = append(out, settlement.NewMission(m.ID, m.Title, m.Progress))
	}
	return out
}
