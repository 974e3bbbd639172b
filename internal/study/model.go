package study

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Study is a deposit-backed study group bound to one channel.
type Study struct {
	ChannelID      string
	Title          string
	OrganizerID    string
	TotalSessions  int
	CurrentSession int
	DepositAmount  int64
	Status         Status
	Participants   []string
	Attendance     map[string][]bool
	SessionDates   []time.Time
	Applications   []Application
}

type Application struct {
	ID        string
	UserID    string
	Message   string
	AppliedAt time.Time
}

func (s *Study) clone() Study {
	out := *s
	out.Participants = append([]string(nil), s.Participants...)
	out.SessionDates = append([]time.Time(nil), s.SessionDates...)
	out.Applications = append([]Application(nil), s.Applications...)
	out.Attendance = make(map[string][]bool, len(s.Attendance))
	for uid, rec := range s.Attendance {
		out.Attendance[uid] = append([]bool(nil), rec...)
	}
	return out
}

func (s *Study) isParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
