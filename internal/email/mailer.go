package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cleanhive/internal/config"

	"github.com/rs/zerolog"
)

const maxAttempts = 3

// Mailer delivers transactional mail through an HTTP provider.
// Delivery makes up to three attempts with a linearly growing pause
// between them: base after the first failure, base*2 after the second.
type Mailer struct {
	endpoint   string
	apiKey     string
	sender     string
	senderName string
	retryDelay time.Duration
	client     *http.Client
	logger     *zerolog.Logger
	sleep      func(time.Duration) // overridable in tests
}

func NewMailer(cfg config.EmailConfig, logger *zerolog.Logger) *Mailer {
	delay := time.Second
	if cfg.RetryDelay != "" {
		if d, err := time.ParseDuration(cfg.RetryDelay); err == nil {
			delay = d
		}
	}

	return &Mailer{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		sender:     cfg.SenderEmail,
		senderName: cfg.SenderName,
		retryDelay: delay,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		sleep:      time.Sleep,
	}
}

type sendRequest struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
}

// Send delivers one message. Failed attempts back off linearly and the last
// error is returned after the third attempt.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = m.trySend(ctx, to, subject, htmlBody)
		if lastErr == nil {
			if attempt > 1 {
				m.logger.Info().Int("attempt", attempt).Str("to", to).Msg("email delivered after retry")
			}
			return nil
		}

		m.logger.Warn().Err(lastErr).Int("attempt", attempt).Str("to", to).Msg("email delivery attempt failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			m.sleep(m.retryDelay * time.Duration(attempt))
		}
	}
	return fmt.Errorf("failed to send email to %s after %d attempts: %w", to, maxAttempts, lastErr)
}

func (m *Mailer) trySend(ctx context.Context, to, subject, htmlBody string) error {
	body, err := json.Marshal(sendRequest{
		From:     m.sender,
		FromName: m.senderName,
		To:       to,
		Subject:  subject,
		HTML:     htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}
