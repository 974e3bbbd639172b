package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "study",
			Description:  "보증금 스터디를 관리합니다",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "이 채널에 스터디를 만듭니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "스터디 이름", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "sessions", Description: "총 회차", Required: true, MinValue: floatPtr(1)},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "deposit", Description: "1인 보증금", Required: true, MinValue: floatPtr(0)},
						{Type: discordgo.ApplicationCommandOptionString, Name: "members", Description: "참여자 멘션 (공백 구분)"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "apply",
					Description: "스터디 참여를 신청합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "한마디"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "approve",
					Description: "참여 신청을 승인합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "신청자", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reject",
					Description: "참여 신청을 거절합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "신청자", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "session",
					Description: "다음 회차를 시작합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "날짜 (YYYY-MM-DD, 생략 시 오늘)"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "check",
					Description: "출석을 체크하거나 취소합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "참여자", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "session", Description: "회차 (생략 시 현재 회차)", MinValue: floatPtr(1)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "출석 현황을 봅니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settle",
					Description: "지금 끝난다면 받을 환급액을 계산합니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "complete",
					Description: "스터디를 종료하고 정산합니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remind",
					Description: "현황 자동 알림 주기를 설정합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "알림 주기(분), 0이면 끄기, 비우면 현재 설정 확인", MinValue: floatPtr(0)},
					},
				},
			},
		},
		{
			Name:         "mogakco",
			Description:  "모각코 미션 방을 관리합니다",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "이 채널에서 모각코를 시작합니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "모각코에 참여합니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "score",
					Description: "참여자의 기본 점수를 설정합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "참여자", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "value", Description: "점수", Required: true, MinValue: floatPtr(0)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "mission",
					Description: "미션을 추가합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "미션 제목", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "미션 설명", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "progress",
					Description: "미션 진행률을 기록합니다",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "mission", Description: "미션 ID", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "value", Description: "진행률 (0-100)", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "standings",
					Description: "현재 순위를 봅니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "모각코를 종료하고 보상을 정산합니다",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "순위 정산 없이 모각코를 닫습니다",
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
