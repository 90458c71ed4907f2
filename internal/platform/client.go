// Package platform talks to the hosted commerce platform: the Storefront
// GraphQL API for catalog reads and the Admin REST API for product writes.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
)

const (
	maxErrorBody    = 4 << 10
	maxResponseBody = 8 << 20
)

// ErrNotConfigured is returned when the credentials for an API are missing.
var ErrNotConfigured = errors.New("commerce platform is not configured")

// APIError is a non-2xx response or a GraphQL error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("platform: %s", e.Message)
	}
	return fmt.Sprintf("platform: status %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL         string
	domain          string
	apiVersion      string
	storefrontToken string
	adminToken      string
	httpClient      *http.Client
	logger          *zap.Logger
	metrics         *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different origin than https://<domain>.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a client from the platform settings.
func NewClient(cfg config.PlatformConfig, opts ...Option) *Client {
	c := &Client{
		domain:          cfg.Domain,
		apiVersion:      cfg.APIVersion,
		storefrontToken: cfg.StorefrontToken,
		adminToken:      cfg.AdminToken,
	}
	if cfg.Domain != "" {
		c.baseURL = "https://" + cfg.Domain
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// StorefrontConfigured reports whether catalog reads can be attempted.
func (c *Client) StorefrontConfigured() bool {
	return c.baseURL != "" && c.storefrontToken != ""
}

// AdminConfigured reports whether product writes can be attempted.
func (c *Client) AdminConfigured() bool {
	return c.baseURL != "" && c.adminToken != ""
}

func (c *Client) doRequest(ctx context.Context, service, url string, headers map[string]string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(service, "error")
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		c.metrics.RecordUpstream(service, "error")
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(respBody) > maxResponseBody {
		c.metrics.RecordUpstream(service, "error")
		return fmt.Errorf("response body exceeds %d bytes", maxResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordUpstream(service, "error")
		c.logger.Warn("platform request failed",
			zap.String("service", service),
			zap.Int("status", resp.StatusCode))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		c.metrics.RecordUpstream(service, "error")
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	c.metrics.RecordUpstream(service, "ok")
	return nil
}

// errorMessage extracts the "errors" member the platform puts in failed
// responses, falling back to the raw (truncated) body.
func errorMessage(body []byte) string {
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		var s string
		if json.Unmarshal(envelope.Errors, &s) == nil {
			return s
		}
		return string(envelope.Errors)
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}
