package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// ApplyFertilizerCommand returns the applyfertilizer command definition and handler
func ApplyFertilizerCommand() (*discordgo.ApplicationCommand, CommandHandler) {
	cmd := &discordgo.ApplicationCommand{
		Name:        "applyfertilizer",
		Description: "Confirm your staged submission and run the pumps",
	}

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, client *APIClient) {
		if !deferResponse(s, i) {
			return
		}

		user := getInteractionUser(i)

		result, err := client.ApplyFertilizer(user.ID)
		if err != nil {
			slog.Error("Failed to apply fertilizer", "error", err, "user", user.Username)
			respondFriendlyError(s, i, err.Error())
			return
		}

		lines := make([]string, 0, len(result.Outcomes))
		anyApplied := false
		for _, o := range result.Outcomes {
			lines = append(lines, formatOutcome(o))
			if o.Status == domain.OutcomeApplied {
				anyApplied = true
			}
		}

		description := fmt.Sprintf("**Species:** %s\n\n%s", result.Species, strings.Join(lines, "\n"))

		color := 0x2ecc71 // green
		title := "💧 Fertilizer Applied"
		if !anyApplied {
			color = 0xe74c3c // red
			title = "Fertilizer Not Applied"
		}

		sendEmbed(s, i, createEmbed(title, description, color, ""))
	}

	return cmd, handler
}

// formatOutcome renders one nutrient's outcome as a message line
func formatOutcome(o domain.NutrientOutcome) string {
	name := o.Nutrient.Name()
	switch o.Status {
	case domain.OutcomeApplied:
		return fmt.Sprintf("✅ **%s**: %.1f ml applied (%.1f ml left in tank)", name, o.AppliedML, o.RemainingML)
	case domain.OutcomeBlocked:
		return fmt.Sprintf("⏳ **%s**: on cooldown, wait %.1fh", name, o.WaitHours)
	case domain.OutcomeInsufficient:
		return fmt.Sprintf("🪫 **%s**: %s", name, o.Detail)
	case domain.OutcomeActuationFailed:
		return fmt.Sprintf("🔧 **%s**: pump failure - %s", name, o.Detail)
	case domain.OutcomePartialApplication:
		return fmt.Sprintf("⚠️ **%s**: %s", name, o.Detail)
	case domain.OutcomePersistenceFailure:
		return fmt.Sprintf("❌ **%s**: could not save rig state, nothing changed", name)
	default:
		return fmt.Sprintf("❌ **%s**: %s", name, o.Detail)
	}
}
