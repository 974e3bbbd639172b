package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type ReminderConfig struct {
	Enabled         bool
	IntervalMinutes int
	NextDueAt       *time.Time
}

type ReminderDue struct {
	ChannelID       string
	IntervalMinutes int
}

// UpsertReminder configures reminders for a study channel and optionally schedules the next due time.
func (db *DB) UpsertReminder(ctx context.Context, channelID string, enabled bool, intervalMinutes int, nextDueAt *time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO study_reminders (channel_id, enabled, interval_minutes, next_due_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel_id) DO UPDATE
		 SET enabled = EXCLUDED.enabled,
			 interval_minutes = EXCLUDED.interval_minutes,
			 next_due_at = COALESCE(EXCLUDED.next_due_at, study_reminders.next_due_at)`,
		channelID, enabled, intervalMinutes, nextDueAt,
	)
	return err
}

func (db *DB) ReminderConfig(ctx context.Context, channelID string) (*ReminderConfig, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT enabled, interval_minutes, next_due_at
		 FROM study_reminders
		 WHERE channel_id = $1`,
		channelID,
	)
	var cfg ReminderConfig
	var nextDueAt *time.Time
	if err := row.Scan(&cfg.Enabled, &cfg.IntervalMinutes, &nextDueAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	cfg.NextDueAt = nextDueAt
	return &cfg, nil
}

// DeleteReminder removes the reminder of a channel, if any.
func (db *DB) DeleteReminder(ctx context.Context, channelID string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM study_reminders WHERE channel_id = $1`, channelID)
	return err
}

// DueReminders returns enabled reminders whose next due time has passed.
func (db *DB) DueReminders(ctx context.Context, now time.Time) ([]ReminderDue, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT channel_id, interval_minutes
		 FROM study_reminders
		 WHERE enabled = TRUE
		   AND interval_minutes > 0
		   AND next_due_at IS NOT NULL
		   AND next_due_at <= $1`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []ReminderDue
	for rows.Next() {
		var r ReminderDue
		if err := rows.Scan(&r.ChannelID, &r.IntervalMinutes); err != nil {
			return nil, err
		}
		targets = append(targets, r)
	}
	return targets, rows.Err()
}

// MarkReminderSent updates reminder schedule timestamps.
func (db *DB) MarkReminderSent(ctx context.Context, channelID string, sentAt time.Time, nextDue time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE study_reminders
		 SET last_sent_at = $2, next_due_at = $3
		 WHERE channel_id = $1`,
		channelID, sentAt, nextDue,
	)
	return err
}

// DelayReminder updates next_due_at without touching last_sent_at.
func (db *DB) DelayReminder(ctx context.Context, channelID string, nextDue time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE study_reminders
		 SET next_due_at = $2
		 WHERE channel_id = $1`,
		channelID, nextDue,
	)
	return err
}
