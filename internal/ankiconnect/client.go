package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultURL     = "http://localhost:8765"
	DefaultVersion = 6
	DefaultTimeout = 10 * time.Second

	// Consecutive transport failures before the breaker opens
	defaultTripAfter = 3
)

// Config configures the AnkiConnect client
type Config struct {
	URL     string
	Version int
	Timeout time.Duration

	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout time.Duration
	TripAfter      uint32
}

// DefaultConfig returns settings for a local Anki instance
func DefaultConfig() *Config {
	return &Config{
		URL:            DefaultURL,
		Version:        DefaultVersion,
		Timeout:        DefaultTimeout,
		BreakerTimeout: 30 * time.Second,
		TripAfter:      defaultTripAfter,
	}
}

// Client talks to AnkiConnect
type Client struct {
	config     *Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// NewClient creates a client for config.URL
func NewClient(config *Config, logger *slog.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Version == 0 {
		config.Version = DefaultVersion
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.TripAfter == 0 {
		config.TripAfter = defaultTripAfter
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ankiconnect",
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// API errors mean the server is alive
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransport(err)
		},
	})

	return c
}

// URL returns the endpoint the client talks to
func (c *Client) URL() string {
	return c.config.URL
}

// invoke performs one action and decodes its result into result (if non-nil)
func (c *Client) invoke(ctx context.Context, action string, params, result any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, action, params, result)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &TransportError{Action: action, Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, action string, params, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := json.Marshal(request{Action: action, Version: c.config.Version, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("ankiconnect request", "action", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{
			Action: action,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data)),
		}
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &TransportError{Action: action, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if envelope.Error != nil {
		return &APIError{Action: action, Message: *envelope.Error}
	}

	if result == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return &APIError{Action: action, Message: fmt.Sprintf("unexpected result: %v", err)}
	}
	return nil
}
