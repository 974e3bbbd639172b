package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/studybot/internal/commands"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
)

type fakeSession struct {
	sent map[string]string
	err  error
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent[channelID] = content
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

type fakeReminderStore struct {
	due     []db.ReminderDue
	marked  map[string]time.Time
	delayed map[string]time.Time
	deleted []string
}

func (f *fakeReminderStore) DueReminders(ctx context.Context, now time.Time) ([]db.ReminderDue, error) {
	return f.due, nil
}

func (f *fakeReminderStore) MarkReminderSent(ctx context.Context, channelID string, sentAt time.Time, nextDue time.Time) error {
	f.marked[channelID] = nextDue
	return nil
}

func (f *fakeReminderStore) DelayReminder(ctx context.Context, channelID string, nextDue time.Time) error {
	f.delayed[channelID] = nextDue
	return nil
}

func (f *fakeReminderStore) DeleteReminder(ctx context.Context, channelID string) error {
	f.deleted = append(f.deleted, channelID)
	return nil
}

func newTestWorker(t *testing.T, sendErr error) (*reminderWorker, *fakeSession, *fakeReminderStore, time.Time) {
	t.Helper()
	studies := study.NewService(settlement.DefaultPolicy())
	if _, err := studies.Create("c1", "알고리즘", 4, 40000, "org", []string{"org", "kim"}); err != nil {
		t.Fatal(err)
	}
	session := &fakeSession{sent: map[string]string{}, err: sendErr}
	store := &fakeReminderStore{
		due:     []db.ReminderDue{{ChannelID: "c1", IntervalMinutes: 60}, {ChannelID: "gone", IntervalMinutes: 10}},
		marked:  map[string]time.Time{},
		delayed: map[string]time.Time{},
	}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	w := newReminderWorker(session, store, studies, commands.NewFormatter("ko"))
	w.now = func() time.Time { return now }
	return w, session, store, now
}

func TestReminderTickSends(t *testing.T) {
	w, session, store, now := newTestWorker(t, nil)
	w.tick(context.Background())

	msg, ok := session.sent["c1"]
	if !ok {
		t.Fatal("no message sent to c1")
	}
	if !strings.Contains(msg, "알고리즘") || !strings.Contains(msg, "자동 알림") {
		t.Errorf("message = %q", msg)
	}
	if got := store.marked["c1"]; !got.Equal(now.Add(time.Hour)) {
		t.Errorf("next due = %v, want %v", got, now.Add(time.Hour))
	}
	if len(store.deleted) != 1 || store.deleted[0] != "gone" {
		t.Errorf("deleted = %v", store.deleted)
	}
}

func TestReminderTickBacksOff(t *testing.T) {
	w, _, store, now := newTestWorker(t, errors.New("403 Forbidden"))
	w.tick(context.Background())

	if _, ok := store.marked["c1"]; ok {
		t.Error("failed send was marked as sent")
	}
	if got := store.delayed["c1"]; !got.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("delayed until %v, want %v", got, now.Add(2*time.Minute))
	}
}

func TestReminderStopWithoutStart(t *testing.T) {
	w, _, _, _ := newTestWorker(t, nil)
	w.stop()
}
