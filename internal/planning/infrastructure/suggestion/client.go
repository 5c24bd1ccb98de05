// Package suggestion asks a chat-completion service for a relaxing activity
// to close the day.
package suggestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

var (
	ErrCircuitOpen   = errors.New("suggestion service unavailable")
	ErrEmptyResponse = errors.New("suggestion response has no content")
	ErrNotConfigured = errors.New("suggestion service URL not configured")
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the circuit for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		Model:            "gpt-4o-mini",
		Timeout:          20 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}
}

// Client implements domain.Suggester.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*domain.Suggestion]
	logger     *slog.Logger
}

// NewClient builds a client. A non-empty APIKey is sent as a bearer token.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.APIKey != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*domain.Suggestion](gobreaker.Settings{
		Name:    "suggestion",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest posts the day's context and decodes one activity.
func (c *Client) Suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.Suggestion, error) {
	if c.cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	s, err := c.breaker.Execute(func() (*domain.Suggestion, error) {
		return c.call(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return s, err
}

func (c *Client) call(ctx context.Context, req domain.SuggestionRequest) (*domain.Suggestion, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("suggestion service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return parseSuggestion(payload.Choices[0].Message.Content)
}

// parseSuggestion accepts bare JSON or JSON inside a fenced code block.
func parseSuggestion(content string) (*domain.Suggestion, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	if start := strings.Index(content, "```"); start >= 0 {
		rest := content[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		content = strings.TrimSpace(rest)
	}

	var s domain.Suggestion
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion: %w", err)
	}
	if strings.TrimSpace(s.Title) == "" {
		return nil, errors.New("suggestion has no title")
	}
	if strings.TrimSpace(s.DurationText) == "" {
		s.DurationText = fmt.Sprintf("%dmin", domain.DefaultDurationMinutes)
	}
	if s.Location != nil && s.Location.Name == "" {
		s.Location = nil
	}
	return &s, nil
}
