package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/studybot/internal/commands"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/mogakco"
	"github.com/susu3304/studybot/internal/study"
)

type Bot struct {
	session  *discordgo.Session
	study    *commands.StudyHandler
	mogakco  *commands.MogakcoHandler
	reminder *reminderWorker
}

func New(token string, database *db.DB, studies *study.Service, rooms *mogakco.Service, locale string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	f := commands.NewFormatter(locale)
	bot := &Bot{
		session: session,
		study:   commands.NewStudyHandler(studies, database, f),
		mogakco: commands.NewMogakcoHandler(rooms, f),
	}
	bot.reminder = newReminderWorker(session, database, studies, f)

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.reminder.start()
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.reminder.stop()
	return b.session.Close()
}
