package domain

import (
	"fmt"
	"strings"
)

// NutrientID identifies one of the supported fertilizer nutrients.
type NutrientID string

const (
	Nitrogen   NutrientID = "N"
	Phosphorus NutrientID = "P"
	Potassium  NutrientID = "K"
)

// nutrientAliases maps normalized input tokens to nutrient IDs.
// Accepts the single-letter code or the full element name.
var nutrientAliases = map[string]NutrientID{
	"n":          Nitrogen,
	"nitrogen":   Nitrogen,
	"p":          Phosphorus,
	"phosphorus": Phosphorus,
	"k":          Potassium,
	"potassium":  Potassium,
}

// Nutrients returns all supported nutrients in canonical order.
func Nutrients() []NutrientID {
	return []NutrientID{Nitrogen, Phosphorus, Potassium}
}

// ParseNutrient normalizes a free-form token into a NutrientID.
// Unrecognized tokens are rejected, never coerced.
func ParseNutrient(token string) (NutrientID, error) {
	id, ok := nutrientAliases[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNutrient, token)
	}
	return id, nil
}

// Name returns the full element name for display.
func (n NutrientID) Name() string {
	switch n {
	case Nitrogen:
		return "Nitrogen"
	case Phosphorus:
		return "Phosphorus"
	case Potassium:
		return "Potassium"
	}
	return string(n)
}
