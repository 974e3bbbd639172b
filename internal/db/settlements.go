package db

import (
	"context"
	"time"

	"github.com/susu3304/studybot/internal/settlement"
)

type StudySettlement struct {
	ID             int64                         `json:"id"`
	GuildID        int64                         `json:"guild_id"`
	ChannelID      string                        `json:"channel_id"`
	Title          string                        `json:"title"`
	TotalSessions  int                           `json:"total_sessions"`
	DepositAmount  int64                         `json:"deposit_amount"`
	PenaltyPerMiss int64                         `json:"penalty_per_miss"`
	SettledBy      string                        `json:"settled_by"`
	CreatedAt      time.Time                     `json:"created_at"`
	Rows           []settlement.AttendanceResult `json:"rows"`
}

// SaveAttendanceSettlement archives a completed study's settlement.
func (db *DB) SaveAttendanceSettlement(ctx context.Context, s StudySettlement) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO study_settlements (guild_id, channel_id, title, total_sessions, deposit_amount, penalty_per_miss, settled_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		s.GuildID, s.ChannelID, s.Title, s.TotalSessions, s.DepositAmount, s.PenaltyPerMiss, s.SettledBy,
	).Scan(&id); err != nil {
		return 0, err
	}

	for i, r := range s.Rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO study_settlement_rows (settlement_id, position, user_id, attended_sessions, missed_sessions, penalty, refund)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, i, r.Participant, r.AttendedSessions, r.MissedSessions, r.Penalty, r.Refund,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// ListAttendanceSettlements returns archived settlements for a channel, newest first.
func (db *DB) ListAttendanceSettlements(ctx context.Context, channelID string) ([]StudySettlement, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, guild_id, channel_id, title, total_sessions, deposit_amount, penalty_per_miss, settled_by, created_at
		 FROM study_settlements
		 WHERE channel_id = $1
		 ORDER BY created_at DESC, id DESC`,
		channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudySettlement
	for rows.Next() {
		var s StudySettlement
		if err := rows.Scan(&s.ID, &s.GuildID, &s.ChannelID, &s.Title, &s.TotalSessions, &s.DepositAmount, &s.PenaltyPerMiss, &s.SettledBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		res, err := db.settlementRows(ctx, out[i].ID, out[i].TotalSessions)
		if err != nil {
			return nil, err
		}
		out[i].Rows = res
	}
	return out, nil
}

func (db *DB) settlementRows(ctx context.Context, settlementID int64, totalSessions int) ([]settlement.AttendanceResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, attended_sessions, missed_sessions, penalty, refund
		 FROM study_settlement_rows
		 WHERE settlement_id = $1
		 ORDER BY position`,
		settlementID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.AttendanceResult
	for rows.Next() {
		var r settlement.AttendanceResult
		if err := rows.Scan(&r.Participant, &r.AttendedSessions, &r.MissedSessions, &r.Penalty, &r.Refund); err != nil {
			return nil, err
		}
		r.Rate = settlement.AttendanceRate(r.AttendedSessions, totalSessions)
		r.Tier = settlement.RateTier(r.Rate)
		out = append(out, r)
	}
	return out, rows.Err()
}
