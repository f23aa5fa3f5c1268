package discord

// Friendly message constants for Discord responses
const (
	// Cooldowns
	MsgCooldownActive = "⏳ **Whoa there!**\nThat nutrient was applied recently. Let the plant absorb it first."

	// Tank
	MsgTankEmpty = "🪫 **Tank Low**\nNot enough fertilizer left for that dose. Ask an admin to refill."

	// Submissions
	MsgUnknownNutrient     = "❓ **Unknown Nutrient**\nUse N, P or K (or nitrogen, phosphorus, potassium)."
	MsgNoPendingSubmission = "🌱 **Nothing Staged**\nSubmit plant measurements first with /submit."

	// Vision
	MsgAnalysisFailed = "📷 **Analysis Failed**\nCouldn't read that photo. Try a clearer shot of the plant."

	// Hardware
	MsgPumpFailure = "🔧 **Pump Trouble**\nThe rig reported a pump failure. Check the hardware before retrying."

	MsgGenericError = "❌ Something went wrong."
)
