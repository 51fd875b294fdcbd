package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cleanhive/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client отправляет события в внешний трекер. Ошибки не блокируют
// бизнес-операции: вызовы идут через outbox.
type Client struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *zerolog.Logger
}

func NewClient(cfg config.AnalyticsConfig, logger *zerolog.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

type trackRequest struct {
	MessageID  string                 `json:"message_id"`
	Event      string                 `json:"event"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (c *Client) Track(ctx context.Context, event string, properties map[string]interface{}) error {
	body, err := json.Marshal(trackRequest{
		MessageID:  uuid.NewString(),
		Event:      event,
		Properties: properties,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal analytics event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call analytics endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Noop used when no analytics token is configured.
type Noop struct{}

func (Noop) Track(ctx context.Context, event string, properties map[string]interface{}) error {
	return nil
}
