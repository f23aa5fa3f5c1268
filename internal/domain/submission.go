package domain

import "time"

// PlantSubmission holds one user's staged plant measurements awaiting
// confirmation. At most one per user; a newer submission replaces an
// older unconfirmed one.
type PlantSubmission struct {
	UserID    string       `json:"user_id"`
	Species   string       `json:"species"`
	HeightCM  float64      `json:"height_cm"`
	WidthCM   float64      `json:"width_cm"`
	Nutrients []NutrientID `json:"nutrients"`
	Doses     []Dose       `json:"doses"`
	StagedAt  time.Time    `json:"staged_at"`
}

// Estimate is the structured result of the external vision service.
// Absence or parse failure of this structure is EstimateUnavailable,
// never a silently defaulted estimate.
type Estimate struct {
	Species       string            `json:"species"`
	Deficiencies  []string          `json:"deficiencies"`
	Probabilities map[string]string `json:"probabilities"`
	Diseases      []string          `json:"diseases"`
	HeightCM      float64           `json:"height"`
	WidthCM       float64           `json:"width"`
	Auto          bool              `json:"auto"`
}
