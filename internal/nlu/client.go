// Package nlu is the boundary to the external intent classification service.
//
// The service itself is not part of the bot; this package only knows how to
// ask it for intents and entities for a piece of text.
package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

// Recognizer classifies raw message text into intents and entities.
type Recognizer interface {
	// Recognize returns the classifier's intents (best-first) and extracted
	// entities for the given text. An empty intent list is a valid result,
	// not an error.
	Recognize(ctx context.Context, text string) ([]domain.IntentResult, []domain.EntityResult, error)
}

// ClientConfig configures the HTTP classifier client.
type ClientConfig struct {
	Endpoint string // base URL of the classification service
	AppID    string
	Key      string
	Timeout  time.Duration
}

// HTTPClient talks to a LUIS-style prediction endpoint over HTTP.
type HTTPClient struct {
	cfg  ClientConfig
	http *http.Client
	log  *logging.Logger
}

// NewHTTPClient creates a classifier client.
func NewHTTPClient(cfg ClientConfig, log *logging.Logger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.Sub("nlu"),
	}
}

// predictionResponse is the wire format of the prediction endpoint.
type predictionResponse struct {
	Query   string `json:"query"`
	Intents []struct {
		Intent string  `json:"intent"`
		Score  float64 `json:"score"`
	} `json:"intents"`
	Entities []struct {
		Type   string `json:"type"`
		Entity string `json:"entity"`
	} `json:"entities"`
}

// Recognize queries the prediction endpoint for the given text.
func (c *HTTPClient) Recognize(ctx context.Context, text string) ([]domain.IntentResult, []domain.EntityResult, error) {
	u := fmt.Sprintf("%s/apps/%s/predict?q=%s",
		c.cfg.Endpoint, url.PathEscape(c.cfg.AppID), url.QueryEscape(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building prediction request: %w", err)
	}
	if c.cfg.Key != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("prediction request: unexpected status %d", resp.StatusCode)
	}

	var pred predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, nil, fmt.Errorf("decoding prediction response: %w", err)
	}

	// Order is kept as returned; the service ranks intents best-first.
	intents := make([]domain.IntentResult, 0, len(pred.Intents))
	for _, in := range pred.Intents {
		intents = append(intents, domain.IntentResult{Name: in.Intent, Score: in.Score})
	}

	entities := make([]domain.EntityResult, 0, len(pred.Entities))
	for _, en := range pred.Entities {
		entities = append(entities, domain.EntityResult{Kind: en.Type, Value: en.Entity})
	}

	c.log.Debug().
		Int("intents", len(intents)).
		Int("entities", len(entities)).
		Msg("classification completed")

	return intents, entities, nil
}
