package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"salonbook/internal/metrics"

	"github.com/rs/zerolog"
)

// Envelope is the uniform remote response: success=false or a non-2xx
// status is a failure.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client speaks the remote store's action contract: every call carries an
// action name and a flat parameter object. Reads go as GET with
// query-string encoding so they dodge the CORS preflight the original
// deployment paid for; writes go as a JSON POST body.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zerolog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Read performs a query-encoded GET for a read-type action.
func (c *Client) Read(ctx context.Context, action string, params map[string]interface{}) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("action", action)
	for key, val := range params {
		switch v := val.(type) {
		case string:
			values.Set(key, v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode param %s: %w", key, err)
			}
			values.Set(key, string(encoded))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.do(req, action)
}

// Write performs a JSON POST for a write-type action.
func (c *Client) Write(ctx context.Context, action string, params map[string]interface{}) (json.RawMessage, error) {
	body := make(map[string]interface{}, len(params)+1)
	body["action"] = action
	for key, val := range params {
		body[key] = val
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, action)
}

func (c *Client) do(req *http.Request, action string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncRemote(action, "error")
		return nil, fmt.Errorf("call %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncRemote(action, "error")
		return nil, fmt.Errorf("call %s: unexpected status %d", action, resp.StatusCode)
	}

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.IncRemote(action, "error")
		return nil, fmt.Errorf("call %s: decode response: %w", action, err)
	}

	if !envelope.Success {
		metrics.IncRemote(action, "error")
		if envelope.Error == "" {
			envelope.Error = "remote operation failed"
		}
		return nil, fmt.Errorf("call %s: %s", action, envelope.Error)
	}

	metrics.IncRemote(action, "ok")
	c.logger.Debug().Str("action", action).Dur("dur", time.Since(start)).Msg("remote call")
	return envelope.Data, nil
}
