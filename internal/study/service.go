package study

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/susu3304/studybot/internal/settlement"
)

var (
	ErrStudyExists         = errors.New("이 채널에는 이미 스터디가 있습니다")
	ErrStudyNotFound       = errors.New("스터디가 존재하지 않습니다")
	ErrStudyCompleted      = errors.New("이미 완료된 스터디입니다")
	ErrAlreadyParticipant  = errors.New("이미 참여 중입니다")
	ErrAlreadyApplied      = errors.New("이미 신청했습니다")
	ErrApplicationNotFound = errors.New("신청을 찾을 수 없습니다")
	ErrNotParticipant      = errors.New("참여자가 아닙니다")
	ErrAllSessionsOpened   = errors.New("모든 회차가 이미 진행되었습니다")
	ErrSessionOutOfRange   = errors.New("진행되지 않은 회차입니다")
	ErrInvalidTitle        = errors.New("스터디 이름이 필요합니다")
)

// Service keeps one study per channel in memory.
type Service struct {
	mu     sync.Mutex
	store  map[string]*Study
	policy settlement.Policy
	now    func() time.Time
}

func NewService(policy settlement.Policy) *Service {
	return &Service{
		store:  make(map[string]*Study),
		policy: policy,
		now:    time.Now,
	}
}

func (s *Service) Policy() settlement.Policy {
	return s.policy
}

// Create starts a study in the channel. The policy numbers are validated
// by the settlement engine so that a study can always be settled later.
func (s *Service) Create(channelID, title string, totalSessions int, deposit int64, organizerID string, participants []string) (Study, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Study{}, ErrInvalidTitle
	}
	roster := uniqueNonEmpty(participants)
	if _, err := settlement.NewAttendanceInput(roster, nil, totalSessions, deposit, s.policy.PenaltyPerMiss); err != nil {
		return Study{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[channelID]; ok {
		return Study{}, ErrStudyExists
	}
	st := &Study{
		ChannelID:     channelID,
		Title:         title,
		OrganizerID:   organizerID,
		TotalSessions: totalSessions,
		DepositAmount: deposit,
		Status:        StatusActive,
		Participants:  roster,
		Attendance:    make(map[string][]bool, len(roster)),
	}
	for _, uid := range roster {
		st.Attendance[uid] = []bool{}
	}
	s.store[channelID] = st
	return st.clone(), nil
}

func (s *Service) Get(channelID string) (Study, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.store[channelID]
	if !ok {
		return Study{}, ErrStudyNotFound
	}
	return st.clone(), nil
}

// Channels lists every channel that has a study.
func (s *Service) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.store))
	for id := range s.store {
		ids = append(ids, id)
	}
	return ids
}

func (s *Service) Remove(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[channelID]; !ok {
		return ErrStudyNotFound
	}
	delete(s.store, channelID)
	return nil
}

// active must be called with s.mu held.
func (s *Service) active(channelID string) (*Study, error) {
	st, ok := s.store[channelID]
	if !ok {
		return nil, ErrStudyNotFound
	}
	if st.Status != StatusActive {
		return nil, ErrStudyCompleted
	}
	return st, nil
}

func (s *Service) Apply(channelID, userID, message string) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.active(channelID)
	if err != nil {
		return Application{}, err
	}
	if st.isParticipant(userID) {
		return Application{}, ErrAlreadyParticipant
	}
	for _, app := range st.Applications {
		if app.UserID == userID {
			return Application{}, ErrAlreadyApplied
		}
	}
	app := Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   strings.TrimSpace(message),
		AppliedAt: s.now(),
	}
	st.Applications = append(st.Applications, app)
	return app, nil
}

// Approve admits an applicant. Sessions held before approval are recorded
// as missed, so a late joiner is settled against the full session count.
func (s *Service) Approve(channelID, applicationID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.active(channelID)
	if err != nil {
		return "", err
	}
	idx := findApplication(st.Applications, applicationID)
	if idx < 0 {
		return "", ErrApplicationNotFound
	}
	app := st.Applications[idx]
	st.Applications = append(st.Applications[:idx:idx], st.Applications[idx+1:]...)
	st.Participants = append(st.Participants, app.UserID)
	st.Attendance[app.UserID] = make([]bool, st.CurrentSession)
	return app.UserID, nil
}

func (s *Service) Reject(channelID, applicationID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.active(channelID)
	if err != nil {
		return "", err
	}
	idx := findApplication(st.Applications, applicationID)
	if idx < 0 {
		return "", ErrApplicationNotFound
	}
	app := st.Applications[idx]
	st.Applications = append(st.Applications[:idx:idx], st.Applications[idx+1:]...)
	return app.UserID, nil
}

// ApplicationByUser finds a pending application by applicant.
func (s *Service) ApplicationByUser(channelID, userID string) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.store[channelID]
	if !ok {
		return Application{}, ErrStudyNotFound
	}
	for _, app := range st.Applications {
		if app.UserID == userID {
			return app, nil
		}
	}
	return Application{}, ErrApplicationNotFound
}

// AddSession opens the next session and returns its 1-based number.
func (s *Service) AddSession(channelID string, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.active(channelID)
	if err != nil {
		return 0, err
	}
	if st.CurrentSession >= st.TotalSessions {
		return 0, ErrAllSessionsOpened
	}
	st.CurrentSession++
	st.SessionDates = append(st.SessionDates, date)
	for _, uid := range st.Participants {
		rec := st.Attendance[uid]
		for len(rec) < st.CurrentSession {
			rec = append(rec, false)
		}
		st.Attendance[uid] = rec
	}
	return st.CurrentSession, nil
}

// ToggleAttendance flips attendance for a 1-based session and returns the new value.
func (s *Service) ToggleAttendance(channelID, userID string, session int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.record(channelID, userID, session)
	if err != nil {
		return false, err
	}
	rec[session-1] = !rec[session-1]
	return rec[session-1], nil
}

func (s *Service) SetAttendance(channelID, userID string, session int, attended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.record(channelID, userID, session)
	if err != nil {
		return err
	}
	rec[session-1] = attended
	return nil
}

// record must be called with s.mu held.
func (s *Service) record(channelID, userID string, session int) ([]bool, error) {
	st, err := s.active(channelID)
	if err != nil {
		return nil, err
	}
	if !st.isParticipant(userID) {
		return nil, ErrNotParticipant
	}
	if session < 1 || session > st.CurrentSession {
		return nil, fmt.Errorf("%w: %d", ErrSessionOutOfRange, session)
	}
	rec := st.Attendance[userID]
	for len(rec) < st.CurrentSession {
		rec = append(rec, false)
	}
	st.Attendance[userID] = rec
	return rec, nil
}

// Settlement previews the refunds as if the study ended now.
func (s *Service) Settlement(channelID string) ([]settlement.AttendanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.store[channelID]
	if !ok {
		return nil, ErrStudyNotFound
	}
	return s.settle(st)
}

// Complete closes the study and returns its final settlement.
func (s *Service) Complete(channelID string) ([]settlement.AttendanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.active(channelID)
	if err != nil {
		return nil, err
	}
	res, err := s.settle(st)
	if err != nil {
		return nil, err
	}
	st.Status = StatusCompleted
	st.Applications = nil
	return res, nil
}

func (s *Service) settle(st *Study) ([]settlement.AttendanceResult, error) {
	in, err := settlement.NewAttendanceInput(st.Participants, st.Attendance, st.TotalSessions, st.DepositAmount, s.policy.PenaltyPerMiss)
	if err != nil {
		return nil, err
	}
	return settlement.ComputeAttendanceSettlement(in), nil
}

func findApplication(apps []Application, id string) int {
	for i, app := range apps {
		if app.ID == id {
			return i
		}
	}
	return -1
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
