package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/studybot/internal/mogakco"
	"github.com/susu3304/studybot/internal/settlement"
)

// RoomService is the part of mogakco.Service the commands use.
type RoomService interface {
	StartRoom(ctx context.Context, channelID string, guildID int64, hostID string) (*mogakco.Room, error)
	GetActiveRoom(ctx context.Context, channelID string) (*mogakco.Room, error)
	Join(ctx context.Context, channelID, userID string) error
	SetBaseScore(ctx context.Context, channelID, userID string, score int) error
	AddMission(ctx context.Context, channelID, title, description, createdBy string) (string, error)
	UpdateProgress(ctx context.Context, channelID, missionID, userID string, progress int) (int, error)
	Standings(ctx context.Context, channelID string) ([]settlement.Standing, error)
	EndRoom(ctx context.Context, channelID string) ([]settlement.Standing, error)
	CloseRoom(ctx context.Context, channelID string) error
}

var errNotHost = errors.New("모각코 방장만 사용할 수 있는 명령입니다")

type MogakcoHandler struct {
	svc RoomService
	f   Formatter
}

func NewMogakcoHandler(svc RoomService, f Formatter) *MogakcoHandler {
	return &MogakcoHandler{svc: svc, f: f}
}

func (h *MogakcoHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	inv, ok := newInvocation(i)
	if !ok {
		respondText(s, i, "하위 명령이 지정되지 않았습니다")
		return
	}
	respondText(s, i, h.run(context.Background(), inv))
}

func (h *MogakcoHandler) run(ctx context.Context, inv invocation) string {
	msg, err := h.dispatch(ctx, inv)
	if err != nil {
		return "⚠️ " + err.Error()
	}
	return msg
}

func (h *MogakcoHandler) dispatch(ctx context.Context, inv invocation) (string, error) {
	opts := inv.sub.Options
	switch inv.sub.Name {
	case "start":
		if inv.guildID == 0 {
			return "", errors.New("서버 정보를 가져오지 못했습니다")
		}
		if _, err := h.svc.StartRoom(ctx, inv.channelID, inv.guildID, inv.userID); err != nil {
			return "", err
		}
		return "✅ 모각코를 시작했습니다!\n`/mogakco join` 으로 참여하고 `/mogakco mission` 으로 미션을 추가하세요", nil

	case "join":
		if err := h.svc.Join(ctx, inv.channelID, inv.userID); err != nil {
			return "", err
		}
		return fmt.Sprintf("<@%s> 님이 모각코에 참여했습니다", inv.userID), nil

	case "score":
		if err := h.requireHost(ctx, inv); err != nil {
			return "", err
		}
		user := getUserOption(opts, "user")
		value := getIntOption(opts, "value")
		if user == "" || value == nil {
			return "", errors.New("user와 value를 모두 입력해주세요")
		}
		if err := h.svc.SetBaseScore(ctx, inv.channelID, user, int(*value)); err != nil {
			return "", err
		}
		return fmt.Sprintf("<@%s> 님의 기본 점수를 %d점으로 설정했습니다", user, *value), nil

	case "mission":
		title, desc := getStringOption(opts, "title"), getStringOption(opts, "description")
		if title == nil || desc == nil {
			return "", mogakco.ErrEmptyMission
		}
		id, err := h.svc.AddMission(ctx, inv.channelID, *title, *desc, inv.userID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("🎯 미션 **%s** 를 추가했습니다\nID: `%s`", *title, id), nil

	case "progress":
		missionID := getStringOption(opts, "mission")
		value := getIntOption(opts, "value")
		if missionID == nil || value == nil {
			return "", errors.New("mission과 value를 모두 입력해주세요")
		}
		stored, err := h.svc.UpdateProgress(ctx, inv.channelID, *missionID, inv.userID, int(*value))
		if err != nil {
			return "", err
		}
		if stored >= settlement.MaxProgress {
			return fmt.Sprintf("🎉 <@%s> 님이 미션을 완료했습니다!", inv.userID), nil
		}
		return fmt.Sprintf("<@%s> 님의 진행률: %d%%", inv.userID, stored), nil

	case "standings":
		standings, err := h.svc.Standings(ctx, inv.channelID)
		if err != nil {
			return "", err
		}
		return h.f.Standings(standings), nil

	case "end":
		if err := h.requireHost(ctx, inv); err != nil {
			return "", err
		}
		standings, err := h.svc.EndRoom(ctx, inv.channelID)
		if err != nil {
			return "", err
		}
		return "🏁 모각코를 종료했습니다\n" + h.f.Standings(standings), nil

	case "cancel":
		if err := h.requireHost(ctx, inv); err != nil {
			return "", err
		}
		if err := h.svc.CloseRoom(ctx, inv.channelID); err != nil {
			return "", err
		}
		return "🚪 모각코를 정산 없이 닫았습니다", nil
	}
	return "", errors.New("알 수 없는 하위 명령입니다")
}

func (h *MogakcoHandler) requireHost(ctx context.Context, inv invocation) error {
	room, err := h.svc.GetActiveRoom(ctx, inv.channelID)
	if err != nil {
		return err
	}
	if room.HostID != inv.userID {
		return errNotHost
	}
	return nil
}
