// internal/nutrition/client.go

// Package nutrition turns free-text meal descriptions into structured
// nutrient records using a CalorieNinjas-compatible lookup API.
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"food-tracker/internal/logging"
)

const (
	DefaultBaseURL = "https://api.calorieninjas.com/v1/nutrition"
	DefaultTimeout = 10 * time.Second

	apiKeyHeader = "X-Api-Key"
)

// Config carries the process-wide lookup settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	logger     logging.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport. hc is copied; the copy's Timeout is
// replaced by the configured one and hc itself is left alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.httpClient = &copied
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// RawItem mirrors one provider item. Every field is optional; defaults are
// applied by ExtractItems.
type RawItem struct {
	Name                *string  `json:"name"`
	Calories            *float64 `json:"calories"`
	ServingSizeG        *float64 `json:"serving_size_g"`
	ProteinG            *float64 `json:"protein_g"`
	CarbohydratesTotalG *float64 `json:"carbohydrates_total_g"`
	FatTotalG           *float64 `json:"fat_total_g"`
	SugarG              *float64 `json:"sugar_g"`
	FiberG              *float64 `json:"fiber_g"`
	SodiumMg            *float64 `json:"sodium_mg"`
	PotassiumMg         *float64 `json:"potassium_mg"`
	CholesterolMg       *float64 `json:"cholesterol_mg"`
	FatSaturatedG       *float64 `json:"fat_saturated_g"`
}

// Response is the outcome of one lookup. A failed lookup still yields a
// Response with Success false, so it can be fed to FormatForPersistence.
type Response struct {
	Success bool            `json:"success"`
	Items   []RawItem       `json:"items,omitempty"`
	Raw     json.RawMessage `json:"raw_response,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ParseFoodQuery issues a single GET for query. It never retries. Every
// failure comes back as a *LookupError together with a failed Response.
func (c *Client) ParseFoodQuery(ctx context.Context, query string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.fail(ctx, &LookupError{Kind: KindTransport, Message: err.Error(), Err: err})
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return c.fail(ctx, &LookupError{Kind: KindTransport, Message: err.Error(), Err: err})
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, classify(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, classify(err))
	}

	if resp.StatusCode != http.StatusOK {
		return c.fail(ctx, &LookupError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		})
	}

	var payload struct {
		Items []RawItem `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.fail(ctx, &LookupError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Err:     err,
		})
	}

	c.logger.Debug(ctx, "nutrition lookup succeeded", "items", len(payload.Items))
	return &Response{
		Success: true,
		Items:   payload.Items,
		Raw:     json.RawMessage(body),
	}, nil
}

func (c *Client) fail(ctx context.Context, lerr *LookupError) (*Response, error) {
	c.logger.Error(ctx, "nutrition lookup failed",
		"kind", lerr.Kind.String(), "status", lerr.StatusCode, "error", lerr.Message)
	return &Response{
		Success: false,
		Error:   lerr.summary(),
		Message: lerr.Message,
	}, lerr
}

func classify(err error) *LookupError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &LookupError{Kind: KindTimeout, Message: timeoutMessage, Err: err}
	}
	return &LookupError{Kind: KindTransport, Message: err.Error(), Err: err}
}
