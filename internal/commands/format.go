package commands

import (
	"fmt"
	"strings"

	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders bot messages with locale-aware number grouping.
type Formatter struct {
	p *message.Printer
}

// NewFormatter falls back to Korean when locale cannot be parsed.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Korean
	}
	return Formatter{p: message.NewPrinter(tag)}
}

func (f Formatter) Amount(v int64) string {
	return f.p.Sprintf("%d", v) + "원"
}

func tierMark(t settlement.Tier) string {
	switch t {
	case settlement.TierGood:
		return "🟢"
	case settlement.TierWarn:
		return "🟡"
	default:
		return "🔴"
	}
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d위", rank)
}

// StudyStatus is the standing message posted by /study status and reminders.
func (f Formatter) StudyStatus(st study.Study, results []settlement.AttendanceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 **%s**\n", st.Title)
	fmt.Fprintf(&b, "진행: %d/%d회차 · 보증금 %s\n", st.CurrentSession, st.TotalSessions, f.Amount(st.DepositAmount))
	if len(results) == 0 {
		b.WriteString("참여자가 없습니다\n")
		return b.String()
	}
	for _, r := range results {
		fmt.Fprintf(&b, "%s <@%s> 출석 %d회 · 출석률 %d%% · 예상 환급 %s\n",
			tierMark(r.Tier), r.Participant, r.AttendedSessions, r.Rate, f.Amount(r.Refund))
	}
	if n := len(st.Applications); n > 0 {
		fmt.Fprintf(&b, "대기 중인 신청: %d건\n", n)
	}
	return b.String()
}

// Settlement lists refunds and the pooled penalties.
func (f Formatter) Settlement(title string, results []settlement.AttendanceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 **%s 정산**\n", title)
	for _, r := range results {
		fmt.Fprintf(&b, "<@%s>: 결석 %d회 · 차감 %s · 환급 %s\n",
			r.Participant, r.MissedSessions, f.Amount(r.Penalty), f.Amount(r.Refund))
	}
	fmt.Fprintf(&b, "총 환급 %s · 총 차감 %s", f.Amount(settlement.TotalRefund(results)), f.Amount(settlement.TotalPenalty(results)))
	return b.String()
}

// Standings renders a room's ranking with rewards.
func (f Formatter) Standings(standings []settlement.Standing) string {
	if len(standings) == 0 {
		return "참여자가 없습니다"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **모각코 순위** (%d명)\n", len(standings))
	for _, st := range standings {
		fmt.Fprintf(&b, "%s <@%s> %d점 (기본 %d + 미션 %d)", medal(st.Rank), st.Participant, st.TotalScore, st.BaseScore, st.MissionScore)
		if st.Reward > 0 {
			fmt.Fprintf(&b, " · 보상 %s", f.Amount(st.Reward))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
