package discord

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// TankCommand returns the tank command definition and handler
func TankCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "tank",
		Description: "Show how much fertilizer is left in each tank",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		levels, err := client.TankStatus()
		if err != nil {
			slog.Error("Failed to fetch tank status", "error", err)
			respondFriendlyError(s, i, err.Error())
			return
		}

		keys := make([]string, 0, len(levels))
		for k := range levels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var lines []string
		for _, k := range keys {
			remaining := levels[k]
			marker := "🟢"
			if remaining < 100.0 {
				marker = "🔴"
			} else if remaining < 300.0 {
				marker = "🟡"
			}
			lines = append(lines, fmt.Sprintf("%s **%s**: %.1f ml", marker, domain.NutrientID(k).Name(), remaining))
		}

		sendEmbed(s, i, createEmbed("🛢️ Tank Levels", strings.Join(lines, "\n"), 0x3498db, ""))
	}

	return cmd, handler
}

// RefillCommand returns the refill command definition and handler.
// Restricted to members with the Manage Server permission.
func RefillCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	managePerm := int64(discordgo.PermissionManageServer)

	cmd := &discordgo.ApplicationCommand{
		Name:                     "refill",
		Description:              "Top up one nutrient's tank after a physical refill",
		DefaultMemberPermissions: &managePerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "nutrient",
				Description: "Which tank was refilled",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Nitrogen", Value: "N"},
					{Name: "Phosphorus", Value: "P"},
					{Name: "Potassium", Value: "K"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        "amount",
				Description: "Amount added in ml",
				Required:    true,
			},
		},
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		options := getOptions(i)
		nutrient := options[0].StringValue()
		amount := options[1].FloatValue()

		remaining, err := client.RefillTank(nutrient, amount)
		if err != nil {
			slog.Error("Failed to refill tank", "error", err, "nutrient", nutrient)
			respondFriendlyError(s, i, err.Error())
			return
		}

		description := fmt.Sprintf("Added **%.1f ml** of %s.\nTank now holds **%.1f ml**.",
			amount, domain.NutrientID(nutrient).Name(), remaining)

		sendEmbed(s, i, createEmbed("Tank Refilled", description, 0x2ecc71, FooterRigAdmin))
	}

	return cmd, handler
}
