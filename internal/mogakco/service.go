package mogakco

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/settlement"
)

var (
	ErrRoomAlreadyExists = errors.New("이 채널에는 이미 모각코가 진행 중입니다")
	ErrNoActiveRoom      = errors.New("이 채널에는 진행 중인 모각코가 없습니다")
	ErrNotJoined         = errors.New("모각코에 참여하지 않았습니다")
	ErrMissionNotFound   = errors.New("미션을 찾을 수 없습니다")
	ErrEmptyMission      = errors.New("미션 제목과 설명을 모두 입력해주세요")
	ErrNegativeScore     = errors.New("점수는 0 이상이어야 합니다")
)

type Service struct {
	db     *db.DB
	policy settlement.Policy
}

func NewService(database *db.DB, policy settlement.Policy) *Service {
	return &Service{db: database, policy: policy}
}

// StartRoom opens a room in the channel; the host joins it.
func (s *Service) StartRoom(ctx context.Context, channelID string, guildID int64, hostID string) (*Room, error) {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	room := Room{ChannelID: channelID, GuildID: guildID, HostID: hostID, Status: "active"}
	err = tx.QueryRow(ctx, `
		INSERT INTO mogakco_rooms (channel_id, guild_id, host_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, created_at
	`, channelID, guildID, hostID).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		// Check for unique constraint violation
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrRoomAlreadyExists
		}
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO mogakco_participants (room_id, user_id) VALUES ($1, $2)
	`, room.ID, hostID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &room, nil
}

// CloseRoom abandons the active room without ranking it.
func (s *Service) CloseRoom(ctx context.Context, channelID string) error {
	result, err := s.db.Pool().Exec(ctx, `
		UPDATE mogakco_rooms
		SET status = 'closed', closed_at = CURRENT_TIMESTAMP
		WHERE channel_id = $1 AND status = 'active'
	`, channelID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoActiveRoom
	}
	return nil
}

// GetActiveRoom retrieves the active room for the channel.
func (s *Service) GetActiveRoom(ctx context.Context, channelID string) (*Room, error) {
	var room Room
	err := s.db.Pool().QueryRow(ctx, `
		SELECT id, channel_id, guild_id, host_id, status, created_at, closed_at
		FROM mogakco_rooms
		WHERE channel_id = $1 AND status = 'active'
	`, channelID).Scan(&room.ID, &room.ChannelID, &room.GuildID, &room.HostID, &room.Status, &room.CreatedAt, &room.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveRoom
		}
		return nil, err
	}
	return &room, nil
}

// Join adds the user to the active room. Joining twice is a no-op.
func (s *Service) Join(ctx context.Context, channelID, userID string) error {
	room, err := s.GetActiveRoom(ctx, channelID)
	if err != nil {
		return err
	}
	_, err = s.db.Pool().Exec(ctx, `
		INSERT INTO mogakco_participants (room_id, user_id) VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, room.ID, userID)
	return err
}

// SetBaseScore records the score a participant earned outside missions.
func (s *Service) SetBaseScore(ctx context.Context, channelID, userID string, score int) error {
	if score < 0 {
		return ErrNegativeScore
	}
	room, err := s.GetActiveRoom(ctx, channelID)
	if err != nil {
		return err
	}
	result, err := s.db.Pool().Exec(ctx, `
		UPDATE mogakco_participants SET base_score = $3
		WHERE room_id = $1 AND user_id = $2
	`, room.ID, userID, score)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotJoined
	}
	return nil
}

// AddMission creates a mission in the active room and returns its id.
func (s *Service) AddMission(ctx context.Context, channelID, title, description, createdBy string) (string, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if title == "" || description == "" {
		return "", ErrEmptyMission
	}
	room, err := s.GetActiveRoom(ctx, channelID)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.Pool().Exec(ctx, `
		INSERT INTO mogakco_missions (id, room_id, title, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, id, room.ID, title, description, createdBy)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateProgress records a participant's progress on a mission, clamped to
// [0,100], and returns the stored value.
func (s *Service) UpdateProgress(ctx context.Context, channelID, missionID, userID string, progress int) (int, error) {
	room, err := s.GetActiveRoom(ctx, channelID)
	if err != nil {
		return 0, err
	}
	var joined bool
	if err := s.db.Pool().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM mogakco_participants WHERE room_id = $1 AND user_id = $2)
	`, room.ID, userID).Scan(&joined); err != nil {
		return 0, err
	}
	if !joined {
		return 0, ErrNotJoined
	}

	progress = settlement.ClampProgress(progress)
	result, err := s.db.Pool().Exec(ctx, `
		INSERT INTO mogakco_progress (mission_id, user_id, progress)
		SELECT id, $3, $4 FROM mogakco_missions WHERE id = $1 AND room_id = $2
		ON CONFLICT (mission_id, user_id) DO UPDATE
		SET progress = EXCLUDED.progress, updated_at = CURRENT_TIMESTAMP
	`, missionID, room.ID, userID, progress)
	if err != nil {
		return 0, err
	}
	if result.RowsAffected() == 0 {
		return 0, ErrMissionNotFound
	}
	return progress, nil
}

// Snapshot loads the active room with its participants and missions.
func (s *Service) Snapshot(ctx context.Context, channelID string) (*Snapshot, error) {
	room, err := s.GetActiveRoom(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, *room)
}

func (s *Service) load(ctx context.Context, room Room) (*Snapshot, error) {
	snap := &Snapshot{Room: room}

	rows, err := s.db.Pool().Query(ctx, `
		SELECT user_id, base_score
		FROM mogakco_participants
		WHERE room_id = $1
		ORDER BY joined_at ASC, user_id ASC
	`, room.ID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.UserID, &p.BaseScore); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Participants = append(snap.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Pool().Query(ctx, `
		SELECT id, title, description, created_by
		FROM mogakco_missions
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
	`, room.ID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for rows.Next() {
		m := Mission{Progress: make(map[string]int)}
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.CreatedBy); err != nil {
			rows.Close()
			return nil, err
		}
		index[m.ID] = len(snap.Missions)
		snap.Missions = append(snap.Missions, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Pool().Query(ctx, `
		SELECT p.mission_id, p.user_id, p.progress
		FROM mogakco_progress p
		JOIN mogakco_missions m ON m.id = p.mission_id
		WHERE m.room_id = $1
	`, room.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var missionID, userID string
		var progress int
		if err := rows.Scan(&missionID, &userID, &progress); err != nil {
			return nil, err
		}
		if i, ok := index[missionID]; ok {
			snap.Missions[i].Progress[userID] = progress
		}
	}
	return snap, rows.Err()
}

// Standings previews the ranking of the active room.
func (s *Service) Standings(ctx context.Context, channelID string) ([]settlement.Standing, error) {
	snap, err := s.Snapshot(ctx, channelID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.policy.Schedule()
	if err != nil {
		return nil, err
	}
	return snap.Settle(tiers), nil
}

// EndRoom ranks the active room, stores the result and closes the room.
func (s *Service) EndRoom(ctx context.Context, channelID string) ([]settlement.Standing, error) {
	snap, err := s.Snapshot(ctx, channelID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.policy.Schedule()
	if err != nil {
		return nil, err
	}
	standings := snap.Settle(tiers)

	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, st := range standings {
		if _, err := tx.Exec(ctx, `
			INSERT INTO mogakco_results (room_id, rank, user_id, base_score, mission_score, total_score, reward)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, snap.Room.ID, st.Rank, st.Participant, st.BaseScore, st.MissionScore, st.TotalScore, st.Reward); err != nil {
			return nil, err
		}
	}
	result, err := tx.Exec(ctx, `
		UPDATE mogakco_rooms
		SET status = 'ended', closed_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'active'
	`, snap.Room.ID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNoActiveRoom
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return standings, nil
}
