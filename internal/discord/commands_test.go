package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

func TestFormatFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "cooldown with wait",
			input:    "API error: Nitrogen on cooldown: try again in 23.5h",
			expected: MsgCooldownActive + "\nWait for: **23.5h**",
		},
		{
			name:     "tank empty",
			input:    "API error: Not enough fertilizer left in the tank",
			expected: MsgTankEmpty,
		},
		{
			name:     "unknown nutrient",
			input:    "API error: Unknown nutrient. Use N, P or K (or the full element name)",
			expected: MsgUnknownNutrient,
		},
		{
			name:     "no pending submission",
			input:    "API error: No pending plant data. Submit measurements first",
			expected: MsgNoPendingSubmission,
		},
		{
			name:     "analysis failed",
			input:    "API error: Could not analyze the plant photo. Try another picture",
			expected: MsgAnalysisFailed,
		},
		{
			name:     "pump failure",
			input:    "API error: Pump failure. Check the rig before retrying",
			expected: MsgPumpFailure,
		},
		{
			name:     "unmapped error passes through",
			input:    "something odd",
			expected: "❌ something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFriendlyError(tt.input))
		})
	}
}

func TestSplitNutrientTokens(t *testing.T) {
	assert.Equal(t, []string{"N", "P"}, splitNutrientTokens("N,P"))
	assert.Equal(t, []string{"nitrogen", "K"}, splitNutrientTokens(" nitrogen , K "))
	assert.Equal(t, []string{"N"}, splitNutrientTokens("N,,"))
	assert.Empty(t, splitNutrientTokens(" , "))
}

func TestFormatOutcome(t *testing.T) {
	tests := []struct {
		name     string
		outcome  domain.NutrientOutcome
		contains string
	}{
		{
			name:     "applied",
			outcome:  domain.NutrientOutcome{Nutrient: domain.Nitrogen, Status: domain.OutcomeApplied, AppliedML: 30.0, RemainingML: 970.0},
			contains: "30.0 ml applied",
		},
		{
			name:     "blocked",
			outcome:  domain.NutrientOutcome{Nutrient: domain.Phosphorus, Status: domain.OutcomeBlocked, WaitHours: 12.3},
			contains: "wait 12.3h",
		},
		{
			name:     "insufficient",
			outcome:  domain.NutrientOutcome{Nutrient: domain.Potassium, Status: domain.OutcomeInsufficient, Detail: "insufficient tank inventory: Potassium has 4.50ml, need 30.00ml"},
			contains: "Potassium has 4.50ml",
		},
		{
			name:     "actuation failed",
			outcome:  domain.NutrientOutcome{Nutrient: domain.Nitrogen, Status: domain.OutcomeActuationFailed, Detail: "debited but not dispensed"},
			contains: "pump failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatOutcome(tt.outcome), tt.contains)
		})
	}
}

func TestNextReminderTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	// Later today
	next := nextReminderTime(base, 17)
	assert.Equal(t, time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC), next)

	// Already passed, tomorrow
	next = nextReminderTime(base, 6)
	assert.Equal(t, time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), next)

	// Exactly now rolls to tomorrow
	exact := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)
	next = nextReminderTime(exact, 17)
	assert.Equal(t, time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC), next)
}

func TestCommandsEqual(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "tank", Description: "Show tank levels"}
	b := &discordgo.ApplicationCommand{Name: "tank", Description: "Show tank levels"}
	c := &discordgo.ApplicationCommand{Name: "tank", Description: "Different"}

	assert.True(t, commandsEqual([]*discordgo.ApplicationCommand{a}, []*discordgo.ApplicationCommand{b}))
	assert.False(t, commandsEqual([]*discordgo.ApplicationCommand{a}, []*discordgo.ApplicationCommand{c}))
	assert.False(t, commandsEqual([]*discordgo.ApplicationCommand{a}, nil))

	withOpt := &discordgo.ApplicationCommand{
		Name:        "refill",
		Description: "Top up",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "nutrient", Description: "Which tank", Required: true},
		},
	}
	sameOpt := &discordgo.ApplicationCommand{
		Name:        "refill",
		Description: "Top up",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "nutrient", Description: "Which tank", Required: true},
		},
	}
	diffOpt := &discordgo.ApplicationCommand{
		Name:        "refill",
		Description: "Top up",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "nutrient", Description: "Which tank", Required: false},
		},
	}

	assert.True(t, commandsEqual([]*discordgo.ApplicationCommand{withOpt}, []*discordgo.ApplicationCommand{sameOpt}))
	assert.False(t, commandsEqual([]*discordgo.ApplicationCommand{withOpt}, []*discordgo.ApplicationCommand{diffOpt}))
}
