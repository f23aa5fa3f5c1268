package discord

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Component custom IDs for the reminder buttons
const (
	componentUploadPhoto = "reminder_upload_photo"
	componentSkipToday   = "reminder_skip_today"
)

// StartDailyReminder posts a photo reminder in the plant channel once a day
// at the given hour (local time). Returns a stop function.
func (b *Bot) StartDailyReminder(hour int) func() {
	if b.PlantChannelID == "" {
		slog.Info("Plant channel not configured, daily reminder disabled")
		return func() {}
	}

	done := make(chan struct{})

	go func() {
		for {
			next := nextReminderTime(time.Now(), hour)
			slog.Info("Next photo reminder scheduled", "at", next)

			select {
			case <-time.After(time.Until(next)):
				b.sendReminder()
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// nextReminderTime returns the next occurrence of hour after now
func nextReminderTime(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func (b *Bot) sendReminder() {
	_, err := b.Session.ChannelMessageSendComplex(b.PlantChannelID, &discordgo.MessageSend{
		Content: "🌿 Daily check-in! Post a photo of your plant and I'll look for deficiencies.",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "How to upload",
						Style:    discordgo.PrimaryButton,
						CustomID: componentUploadPhoto,
					},
					discordgo.Button{
						Label:    "Skip today",
						Style:    discordgo.SecondaryButton,
						CustomID: componentSkipToday,
					},
				},
			},
		},
	})
	if err != nil {
		slog.Error("Failed to send daily reminder", "error", err)
	}
}

// handleComponent responds to reminder button presses
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var content string
	switch i.MessageComponentData().CustomID {
	case componentUploadPhoto:
		content = "Drop an image in this channel and I'll analyze it. Clear, well-lit shots of the whole plant work best."
	case componentSkipToday:
		content = "No problem, I'll remind you again tomorrow. 🌙"
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("Failed to respond to component", "error", err)
	}
}
