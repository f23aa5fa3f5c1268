package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// APIClient handles communication with the rig's core API
type APIClient struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second, // pump runs are synchronous on the apply path
		},
		APIKey: apiKey,
	}
}

// doRequest performs an HTTP request with retry logic
func (c *APIClient) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	url := fmt.Sprintf("%s%s", c.BaseURL, path)

	maxRetries := 3
	retryDelay := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter
			jitter := time.Duration(time.Now().UnixNano()%100) * time.Millisecond
			delay := retryDelay*time.Duration(1<<uint(attempt-1)) + jitter
			time.Sleep(delay)
			slog.Info("Retrying API request", "attempt", attempt, "path", path, "delay", delay)
		}

		req, err := http.NewRequest(method, url, bytes.NewBuffer(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("X-API-Key", c.APIKey)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = err
			slog.Warn("API request failed", "error", err, "attempt", attempt)
			continue
		}

		// Success or non-retryable error
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		slog.Warn("Server error, will retry", "status", resp.StatusCode, "attempt", attempt)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// apiError extracts the error message from a non-2xx response body
func apiError(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("API error: %s", errResp.Error)
	}
	return fmt.Errorf("API returned status: %d", resp.StatusCode)
}

// DosePreview mirrors the dose preview returned by the submit endpoint
type DosePreview struct {
	Nutrient        string  `json:"nutrient"`
	VolumeML        float64 `json:"volume_ml"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SubmitResult is the response of a successful plant submission
type SubmitResult struct {
	Message string        `json:"message"`
	Doses   []DosePreview `json:"doses"`
}

// SubmitPlant stages plant measurements for the user
func (c *APIClient) SubmitPlant(userID, species string, heightCM, widthCM float64, nutrients []string) (*SubmitResult, error) {
	req := map[string]interface{}{
		"user_id":   userID,
		"species":   species,
		"height_cm": heightCM,
		"width_cm":  widthCM,
		"nutrients": nutrients,
	}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/plant/submit", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// ApplyFertilizer confirms the user's staged submission
func (c *APIClient) ApplyFertilizer(userID string) (*domain.ApplyResponse, error) {
	req := map[string]string{"user_id": userID}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/plant/apply", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result domain.ApplyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// CancelSubmission discards the user's staged submission
func (c *APIClient) CancelSubmission(userID string) (string, error) {
	req := map[string]string{"user_id": userID}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/plant/cancel", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var result struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Message, nil
}

// TankStatus returns remaining volume per nutrient
func (c *APIClient) TankStatus() (map[string]float64, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/tank", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result struct {
		Levels map[string]float64 `json:"levels_ml"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Levels, nil
}

// RefillTank tops up one nutrient's tank and returns the new level
func (c *APIClient) RefillTank(nutrient string, amountML float64) (float64, error) {
	req := map[string]interface{}{
		"nutrient":  nutrient,
		"amount_ml": amountML,
	}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/tank/refill", req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apiError(resp)
	}

	var result struct {
		RemainingML float64 `json:"remaining_ml"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.RemainingML, nil
}

// AnalyzeResult is the response of the photo analyze endpoint
type AnalyzeResult struct {
	Estimate *domain.Estimate `json:"estimate"`
	Staged   bool             `json:"staged"`
	Doses    []DosePreview    `json:"doses,omitempty"`
}

// AnalyzePhoto sends a plant photo for vision analysis
func (c *APIClient) AnalyzePhoto(userID string, imageBase64, mimeType string) (*AnalyzeResult, error) {
	req := map[string]string{
		"user_id":      userID,
		"image_base64": imageBase64,
		"mime_type":    mimeType,
	}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/plant/analyze", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result AnalyzeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
