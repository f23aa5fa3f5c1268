package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// ParseEstimate decodes the model's JSON reply into an Estimate. The
// model is prompted for strict JSON but tends to wrap it in markdown
// fences, which are stripped first.
func ParseEstimate(text string) (*domain.Estimate, error) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", domain.ErrEstimateUnavailable)
	}

	var est domain.Estimate
	if err := json.Unmarshal([]byte(cleaned), &est); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEstimateUnavailable, err)
	}

	if est.Species == "" {
		return nil, fmt.Errorf("%w: reply missing species", domain.ErrEstimateUnavailable)
	}
	if est.HeightCM <= 0 || est.WidthCM <= 0 {
		return nil, fmt.Errorf("%w: reply missing plant size", domain.ErrEstimateUnavailable)
	}

	return &est, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
