package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// SubmitCommand returns the submit command definition and handler
func SubmitCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "submit",
		Description: "Submit plant measurements to stage a fertilizer dose",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "species",
				Description: "Plant species (e.g. mango)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "height",
				Description: "Plant height in cm",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "width",
				Description: "Plant width in cm",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "nutrients",
				Description: "Deficient nutrients, comma separated (e.g. N,P or nitrogen)",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)
		options := getOptions(i)

		species := options[0].StringValue()
		height := options[1].FloatValue()
		width := options[2].FloatValue()
		nutrients := splitNutrientTokens(options[3].StringValue())

		result, err := client.SubmitPlant(user.ID, species, height, width, nutrients)
		if err != nil {
			slog.Error("Failed to submit plant", "error", err, "user", user.Username)
			respondFriendlyError(s, i, err.Error())
			return
		}

		var doseLines []string
		for _, d := range result.Doses {
			doseLines = append(doseLines, fmt.Sprintf("**%s**: %.1f ml (%.1fs pump run)", d.Nutrient, d.VolumeML, d.DurationSeconds))
		}

		description := fmt.Sprintf("**Species:** %s\n**Size:** %.1f × %.1f cm\n\n%s\n\nRun `/applyfertilizer` to confirm or `/cancel` to discard.",
			species, height, width, strings.Join(doseLines, "\n"))

		sendEmbed(s, i, createEmbed("🌱 Plant Staged", description, 0x2ecc71, ""))
	}

	return cmd, handler
}

// CancelCommand returns the cancel command definition and handler
func CancelCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "cancel",
		Description: "Discard your staged plant submission",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)

		msg, err := client.CancelSubmission(user.ID)
		if err != nil {
			slog.Error("Failed to cancel submission", "error", err, "user", user.Username)
			respondFriendlyError(s, i, err.Error())
			return
		}

		sendEmbed(s, i, createEmbed("Submission Cancelled", msg, 0x95a5a6, ""))
	}

	return cmd, handler
}

// splitNutrientTokens splits a comma separated nutrient list into tokens
func splitNutrientTokens(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
