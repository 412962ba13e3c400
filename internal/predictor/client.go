// Package predictor wraps the ML sidecar that produces prediction records.
// The core engines treat the predictor as an opaque collaborator; this
// client is the single seam to it.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VL13N/FullStackNexus-sub005/internal/config"
	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// Client is the HTTP client for the prediction sidecar.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// PredictionResponse is the sidecar's envelope around a prediction record.
type PredictionResponse struct {
	Success    bool                     `json:"success"`
	Prediction *models.PredictionRecord `json:"prediction"`
	Error      string                   `json:"error,omitempty"`
}

// HealthResponse is the sidecar health payload.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

// NewClient creates a predictor client instance.
func NewClient(cfg *config.PredictorConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// HealthCheck checks if the prediction sidecar is reachable.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var response HealthResponse
	if err := c.makeRequest(ctx, "/health", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// LatestPrediction fetches the most recent prediction record. A sidecar
// error or malformed payload surfaces as a service-unavailable condition.
func (c *Client) LatestPrediction(ctx context.Context) (*models.PredictionRecord, error) {
	var response PredictionResponse
	if err := c.makeRequest(ctx, "/api/predictions/latest", &response); err != nil {
		return nil, err
	}
	if !response.Success || response.Prediction == nil {
		return nil, utils.NewServiceUnavailableError("predictor", fmt.Errorf("sidecar error: %s", response.Error))
	}
	if !response.Prediction.IsFinite() {
		return nil, utils.NewServiceUnavailableError("predictor", fmt.Errorf("non-finite prediction values"))
	}
	return response.Prediction, nil
}

func (c *Client) makeRequest(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return utils.NewServiceUnavailableError("predictor", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewServiceUnavailableError("predictor", err)
	}
	if resp.StatusCode != http.StatusOK {
		return utils.NewServiceUnavailableError("predictor",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return utils.NewServiceUnavailableError("predictor", fmt.Errorf("invalid response body: %w", err))
	}
	return nil
}
