package discord

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
)

// Bot represents the Discord front end for the fertilizing rig
type Bot struct {
	Session  *discordgo.Session
	Client   *APIClient
	AppID    string
	Registry *CommandRegistry

	// PlantChannelID is the channel watched for photo uploads. Empty
	// disables attachment handling and reminders.
	PlantChannelID string
}

// Config holds the bot configuration
type Config struct {
	Token          string
	AppID          string
	APIURL         string
	APIKey         string
	PlantChannelID string
}

// New creates a new Discord bot
func New(cfg Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	s.Identify.Intents |= discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{
		Session:        s,
		Client:         NewAPIClient(cfg.APIURL, cfg.APIKey),
		AppID:          cfg.AppID,
		Registry:       NewCommandRegistry(),
		PlantChannelID: cfg.PlantChannelID,
	}, nil
}

// Start starts the bot
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)
	b.Session.AddHandler(b.messageCreate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	slog.Info("Discord bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() {
	b.Session.Close()
}

// Run runs the bot until a signal is received
func (b *Bot) Run() error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	return nil
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Bot is ready", "user", s.State.User.Username)
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if b.Registry != nil {
			b.Registry.Handle(s, i, b.Client)
		}
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

// messageCreate watches the plant channel for photo uploads and forwards
// them to the analyze endpoint.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.PlantChannelID == "" || m.ChannelID != b.PlantChannelID {
		return
	}
	if len(m.Attachments) == 0 {
		return
	}

	b.handlePhotoUpload(s, m)
}
