package bot

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/studybot/internal/commands"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/study"
)

// reminderWorker periodically posts the study standing to channels.
type reminderWorker struct {
	store    reminderStore
	studies  *study.Service
	f        commands.Formatter
	session  reminderSession
	stopChan chan struct{}
	ticker   *time.Ticker
	interval time.Duration
	now      func() time.Time
}

// Minimal session interface for sending channel messages.
type reminderSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type reminderStore interface {
	DueReminders(ctx context.Context, now time.Time) ([]db.ReminderDue, error)
	MarkReminderSent(ctx context.Context, channelID string, sentAt time.Time, nextDue time.Time) error
	DelayReminder(ctx context.Context, channelID string, nextDue time.Time) error
	DeleteReminder(ctx context.Context, channelID string) error
}

func newReminderWorker(session reminderSession, store reminderStore, studies *study.Service, f commands.Formatter) *reminderWorker {
	return &reminderWorker{
		store:    store,
		studies:  studies,
		f:        f,
		session:  session,
		stopChan: make(chan struct{}),
		interval: time.Minute,
		now:      time.Now,
	}
}

func (w *reminderWorker) start() {
	if w == nil {
		return
	}
	w.ticker = time.NewTicker(w.interval)
	go w.loop()
}

func (w *reminderWorker) stop() {
	if w == nil || w.ticker == nil {
		return
	}
	close(w.stopChan)
	w.ticker.Stop()
}

func (w *reminderWorker) loop() {
	ctx := context.Background()
	for {
		select {
		case <-w.ticker.C:
			w.tick(ctx)
		case <-w.stopChan:
			return
		}
	}
}

func (w *reminderWorker) message(channelID string) (string, error) {
	st, err := w.studies.Get(channelID)
	if err != nil {
		return "", err
	}
	results, err := w.studies.Settlement(channelID)
	if err != nil {
		return "", err
	}
	return w.f.StudyStatus(st, results), nil
}

func (w *reminderWorker) tick(ctx context.Context) {
	now := w.now()
	targets, err := w.store.DueReminders(ctx, now)
	if err != nil {
		log.Printf("reminder: failed to load due reminders: %v", err)
		return
	}

	for _, t := range targets {
		msg, err := w.message(t.ChannelID)
		if errors.Is(err, study.ErrStudyNotFound) {
			if derr := w.store.DeleteReminder(ctx, t.ChannelID); derr != nil {
				log.Printf("reminder: failed to drop reminder for channel %s: %v", t.ChannelID, derr)
			}
			continue
		}
		if err != nil {
			log.Printf("reminder: failed to build message for channel %s: %v", t.ChannelID, err)
			continue
		}
		autoMsg := msg + "\n※ 자동 알림입니다"
		if err := w.sendWithRetry(ctx, t.ChannelID, autoMsg); err != nil {
			log.Printf("reminder: failed to send message to channel %s: %v", t.ChannelID, err)
			// Back off so we don't hammer Discord every minute.
			backoff := 2 * time.Minute
			if t.IntervalMinutes > 0 {
				max := time.Duration(t.IntervalMinutes) * time.Minute
				if backoff > max {
					backoff = max
				}
			}
			if derr := w.store.DelayReminder(ctx, t.ChannelID, now.Add(backoff)); derr != nil {
				log.Printf("reminder: failed to delay reminder for channel %s: %v", t.ChannelID, derr)
			}
			continue
		}
		next := now.Add(time.Duration(t.IntervalMinutes) * time.Minute)
		if err := w.store.MarkReminderSent(ctx, t.ChannelID, now, next); err != nil {
			log.Printf("reminder: failed to mark reminder sent for channel %s: %v", t.ChannelID, err)
		}
	}
}

func (w *reminderWorker) sendWithRetry(ctx context.Context, channelID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := w.session.ChannelMessageSend(channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTimeout(err) {
			return err
		}
		time.Sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)
	}
	return lastErr
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
