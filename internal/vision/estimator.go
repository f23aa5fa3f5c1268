package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/genai"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/metrics"
)

// Estimator turns a plant photo into a structured species/deficiency
// estimate. Absence or parse failure of the structure is
// EstimateUnavailable, never a silently defaulted estimate.
type Estimator interface {
	Estimate(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error)
}

const estimatePrompt = `You are a plant pathologist AI. Analyze the provided image to detect plant species, any visible diseases, and nutrient deficiencies.
Only focus on deficiencies in Nitrogen, Phosphorus, and Potassium (N, P, K). For each, give a probability percentage if present.
Return your analysis in strict JSON format like this:
{
  "species": "papaya",
  "deficiencies": ["Nitrogen"],
  "probabilities": {"Nitrogen": "54%"},
  "diseases": ["Fungal Leaf Spot"],
  "height": 75,
  "width": 50,
  "auto": true
}
height and width are the plant's size in centimeters.
If no deficiencies or diseases are detected, return empty lists for them.`

// defaultCacheSize bounds the estimate cache; identical re-uploads are
// common when users retry a command.
const defaultCacheSize = 128

type geminiEstimator struct {
	client *genai.Client
	model  string
	cache  *lru.Cache[string, *domain.Estimate]
}

// NewGemini creates a Gemini-backed estimator.
func NewGemini(ctx context.Context, apiKey, model string) (Estimator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	cache, err := lru.New[string, *domain.Estimate](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimate cache: %w", err)
	}

	return &geminiEstimator{client: client, model: model, cache: cache}, nil
}

func (e *geminiEstimator) Estimate(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error) {
	log := logger.FromContext(ctx)

	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrEstimateUnavailable)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	key := imageKey(image)
	if est, ok := e.cache.Get(key); ok {
		log.Debug("Estimate served from cache", "image_sha", key[:12])
		metrics.EstimateRequests.WithLabelValues("cached").Inc()
		return est, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(estimatePrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		metrics.EstimateRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrEstimateUnavailable, err)
	}

	est, err := ParseEstimate(result.Text())
	if err != nil {
		metrics.EstimateRequests.WithLabelValues("unparseable").Inc()
		return nil, err
	}

	e.cache.Add(key, est)
	metrics.EstimateRequests.WithLabelValues("ok").Inc()
	log.Info("Estimate produced", "species", est.Species, "deficiencies", est.Deficiencies, "auto", est.Auto)
	return est, nil
}

func imageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
