package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
)

var (
	errNotOrganizer  = errors.New("스터디장만 사용할 수 있는 명령입니다")
	errArchiveFailed = errors.New("정산 기록 저장에 실패했습니다. /study complete 로 다시 시도해주세요")
)

// StudyStore archives settlements and schedules status reminders.
type StudyStore interface {
	SaveAttendanceSettlement(ctx context.Context, s db.StudySettlement) (int64, error)
	UpsertReminder(ctx context.Context, channelID string, enabled bool, intervalMinutes int, nextDueAt *time.Time) error
	ReminderConfig(ctx context.Context, channelID string) (*db.ReminderConfig, error)
	DeleteReminder(ctx context.Context, channelID string) error
}

type StudyHandler struct {
	svc   *study.Service
	store StudyStore
	f     Formatter
	now   func() time.Time
}

func NewStudyHandler(svc *study.Service, store StudyStore, f Formatter) *StudyHandler {
	return &StudyHandler{svc: svc, store: store, f: f, now: time.Now}
}

type invocation struct {
	channelID string
	guildID   int64
	userID    string
	sub       *discordgo.ApplicationCommandInteractionDataOption
}

func newInvocation(i *discordgo.InteractionCreate) (invocation, bool) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return invocation{}, false
	}
	return invocation{
		channelID: i.ChannelID,
		guildID:   ParseGuildID(i.GuildID),
		userID:    interactionUserID(i),
		sub:       data.Options[0],
	}, true
}

func (h *StudyHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	inv, ok := newInvocation(i)
	if !ok {
		respondText(s, i, "하위 명령이 지정되지 않았습니다")
		return
	}
	respondText(s, i, h.run(context.Background(), inv))
}

func (h *StudyHandler) run(ctx context.Context, inv invocation) string {
	msg, err := h.dispatch(ctx, inv)
	if err != nil {
		return "⚠️ " + err.Error()
	}
	return msg
}

func (h *StudyHandler) dispatch(ctx context.Context, inv invocation) (string, error) {
	opts := inv.sub.Options
	switch inv.sub.Name {
	case "create":
		return h.create(inv, opts)
	case "apply":
		msg := ""
		if m := getStringOption(opts, "message"); m != nil {
			msg = *m
		}
		if _, err := h.svc.Apply(inv.channelID, inv.userID, msg); err != nil {
			return "", err
		}
		return fmt.Sprintf("<@%s> 님의 참여 신청을 접수했습니다", inv.userID), nil
	case "approve", "reject":
		return h.decide(inv, getUserOption(opts, "user"), inv.sub.Name == "approve")
	case "session":
		return h.session(inv, getStringOption(opts, "date"))
	case "check":
		return h.check(inv, getUserOption(opts, "user"), getIntOption(opts, "session"))
	case "status":
		st, err := h.svc.Get(inv.channelID)
		if err != nil {
			return "", err
		}
		results, err := h.svc.Settlement(inv.channelID)
		if err != nil {
			return "", err
		}
		return h.f.StudyStatus(st, results), nil
	case "settle":
		st, err := h.svc.Get(inv.channelID)
		if err != nil {
			return "", err
		}
		results, err := h.svc.Settlement(inv.channelID)
		if err != nil {
			return "", err
		}
		return h.f.Settlement(st.Title, results), nil
	case "complete":
		return h.complete(ctx, inv)
	case "remind":
		minutes := getIntOption(opts, "minutes")
		if minutes == nil {
			return h.reminderStatus(ctx, inv)
		}
		return h.remind(ctx, inv, int(*minutes))
	}
	return "", errors.New("알 수 없는 하위 명령입니다")
}

func (h *StudyHandler) create(inv invocation, opts []*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	title := getStringOption(opts, "title")
	sessions := getIntOption(opts, "sessions")
	deposit := getIntOption(opts, "deposit")
	if title == nil || sessions == nil || deposit == nil {
		return "", errors.New("title, sessions, deposit을 모두 입력해주세요")
	}
	members := []string{inv.userID}
	if m := getStringOption(opts, "members"); m != nil {
		members = append(members, parseMentionIDs(*m)...)
	}

	st, err := h.svc.Create(inv.channelID, *title, int(*sessions), *deposit, inv.userID, members)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ **%s** 스터디를 만들었습니다 (%d회차 · 보증금 %s · 참여자 %d명)",
		st.Title, st.TotalSessions, h.f.Amount(st.DepositAmount), len(st.Participants)), nil
}

func (h *StudyHandler) organizer(inv invocation) (study.Study, error) {
	st, err := h.svc.Get(inv.channelID)
	if err != nil {
		return study.Study{}, err
	}
	if st.OrganizerID != inv.userID {
		return study.Study{}, errNotOrganizer
	}
	return st, nil
}

func (h *StudyHandler) decide(inv invocation, applicant string, approve bool) (string, error) {
	if _, err := h.organizer(inv); err != nil {
		return "", err
	}
	app, err := h.svc.ApplicationByUser(inv.channelID, applicant)
	if err != nil {
		return "", err
	}
	if !approve {
		if _, err := h.svc.Reject(inv.channelID, app.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("<@%s> 님의 신청을 거절했습니다", applicant), nil
	}
	if _, err := h.svc.Approve(inv.channelID, app.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("<@%s> 님이 스터디에 합류했습니다", applicant), nil
}

func (h *StudyHandler) session(inv invocation, dateOpt *string) (string, error) {
	if _, err := h.organizer(inv); err != nil {
		return "", err
	}
	date := h.now()
	if dateOpt != nil && strings.TrimSpace(*dateOpt) != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(*dateOpt), time.Local)
		if err != nil {
			return "", errors.New("날짜는 YYYY-MM-DD 형식으로 입력해주세요")
		}
		date = d
	}
	n, err := h.svc.AddSession(inv.channelID, date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📅 %d회차를 시작했습니다 (%s)", n, date.Format("2006-01-02")), nil
}

func (h *StudyHandler) check(inv invocation, userID string, sessionOpt *int64) (string, error) {
	st, err := h.organizer(inv)
	if err != nil {
		return "", err
	}
	session := st.CurrentSession
	if sessionOpt != nil {
		session = int(*sessionOpt)
	}
	attended, err := h.svc.ToggleAttendance(inv.channelID, userID, session)
	if err != nil {
		return "", err
	}
	if attended {
		return fmt.Sprintf("✅ <@%s> %d회차 출석", userID, session), nil
	}
	return fmt.Sprintf("↩️ <@%s> %d회차 출석 취소", userID, session), nil
}

func (h *StudyHandler) complete(ctx context.Context, inv invocation) (string, error) {
	st, err := h.organizer(inv)
	if err != nil {
		return "", err
	}
	// A completed study still in memory had its archive fail; retry it.
	var results []settlement.AttendanceResult
	if st.Status == study.StatusCompleted {
		results, err = h.svc.Settlement(inv.channelID)
	} else {
		results, err = h.svc.Complete(inv.channelID)
	}
	if err != nil {
		return "", err
	}

	_, err = h.store.SaveAttendanceSettlement(ctx, db.StudySettlement{
		GuildID:        inv.guildID,
		ChannelID:      inv.channelID,
		Title:          st.Title,
		TotalSessions:  st.TotalSessions,
		DepositAmount:  st.DepositAmount,
		PenaltyPerMiss: h.svc.Policy().PenaltyPerMiss,
		SettledBy:      inv.userID,
		Rows:           results,
	})
	if err != nil {
		log.Printf("study: failed to archive settlement for channel %s: %v", inv.channelID, err)
		return "", errArchiveFailed
	}
	if err := h.store.DeleteReminder(ctx, inv.channelID); err != nil {
		log.Printf("study: failed to delete reminder for channel %s: %v", inv.channelID, err)
	}
	if err := h.svc.Remove(inv.channelID); err != nil {
		log.Printf("study: failed to remove study for channel %s: %v", inv.channelID, err)
	}
	return "🏁 스터디를 종료했습니다\n" + h.f.Settlement(st.Title, results), nil
}

func (h *StudyHandler) reminderStatus(ctx context.Context, inv invocation) (string, error) {
	if _, err := h.svc.Get(inv.channelID); err != nil {
		return "", err
	}
	cfg, err := h.store.ReminderConfig(ctx, inv.channelID)
	if err != nil {
		return "", fmt.Errorf("알림 설정을 불러오지 못했습니다: %w", err)
	}
	if cfg == nil || !cfg.Enabled {
		return "🔕 자동 알림이 꺼져 있습니다", nil
	}
	msg := fmt.Sprintf("🔔 %d분마다 현황을 알려드립니다", cfg.IntervalMinutes)
	if cfg.NextDueAt != nil {
		msg += fmt.Sprintf(" (다음 알림 %s)", cfg.NextDueAt.Format("2006-01-02 15:04"))
	}
	return msg, nil
}

func (h *StudyHandler) remind(ctx context.Context, inv invocation, minutes int) (string, error) {
	if _, err := h.organizer(inv); err != nil {
		return "", err
	}
	if minutes <= 0 {
		if err := h.store.DeleteReminder(ctx, inv.channelID); err != nil {
			return "", fmt.Errorf("알림 설정 해제에 실패했습니다: %w", err)
		}
		return "🔕 자동 알림을 껐습니다", nil
	}
	next := h.now().Add(time.Duration(minutes) * time.Minute)
	if err := h.store.UpsertReminder(ctx, inv.channelID, true, minutes, &next); err != nil {
		return "", fmt.Errorf("알림 설정에 실패했습니다: %w", err)
	}
	return fmt.Sprintf("🔔 %d분마다 현황을 알려드립니다", minutes), nil
}
