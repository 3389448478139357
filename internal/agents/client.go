package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/primus/internal/config"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/secrets"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultOpenAIModel      = "gpt-4"
	anthropicVersion        = "2023-06-01"
	defaultMaxTokens        = 2048
	defaultTimeout          = 60 * time.Second
	defaultMaxRetries       = 3
	defaultBaseBackoff      = 1 * time.Second
	maxErrorBody            = 4096
)

// Rate limiter defaults: 50 requests per minute for both APIs.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from API")

// Request is one prompt sent to a provider.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	// MaxTokens defaults to 2048 when zero.
	MaxTokens int
}

// Client sends a prompt to an LLM and returns the reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config configures a provider client.
type Config struct {
	Provider string
	APIKey   config.Secret
	Model    string
	BaseURL  string
	Timeout  time.Duration

	// MaxRetries counts retries after the first attempt. Negative disables retries.
	MaxRetries  int
	BaseBackoff time.Duration
	RateLimit   rate.Limit
	Burst       int

	HTTPClient *http.Client
	Scrubber   secrets.Scrubber
	Logger     *logging.Logger
}

// provider knows one vendor's wire format.
type provider interface {
	name() string
	endpoint(baseURL string) string
	headers(h http.Header, apiKey string)
	body(model string, req Request) any
	text(body []byte) (string, error)
	errorMessage(body []byte) string
}

// httpClient is the shared Client implementation for every provider.
type httpClient struct {
	provider    provider
	model       string
	apiKey      config.Secret
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	scrubber    secrets.Scrubber
	logger      *logging.Logger
}

// NewClient creates a client for cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	if !cfg.APIKey.IsSet() {
		return nil, config.ErrNotConfigured
	}

	var p provider
	model, baseURL := cfg.Model, cfg.BaseURL
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderAnthropic:
		p = anthropicProvider{}
		if model == "" {
			model = defaultAnthropicModel
		}
		if baseURL == "" {
			baseURL = defaultAnthropicBaseURL
		}
	case config.ProviderOpenAI, "":
		p = openAIProvider{}
		if model == "" {
			model = defaultOpenAIModel
		}
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	limit, burst := cfg.RateLimit, cfg.Burst
	if limit == 0 {
		limit = rate.Limit(defaultRateLimit)
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}

	scrubber := cfg.Scrubber
	if scrubber == nil {
		scrubber = secrets.Noop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &httpClient{
		provider:    p,
		model:       model,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        client,
		limiter:     rate.NewLimiter(limit, burst),
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		scrubber:    scrubber,
		logger:      logger.Named("agents").With(zap.String("provider", p.name()), zap.String("model", model)),
	}, nil
}

// FromSettings builds a client from loaded settings, using the key of the
// configured provider and falling back to whichever key is present.
func FromSettings(s *config.Settings, scrubber secrets.Scrubber, logger *logging.Logger) (Client, error) {
	if !s.IsConfigured() {
		return nil, config.ErrNotConfigured
	}
	provider, key := s.ActiveAPIKey()

	model := s.LLM.DefaultModel
	if provider == config.ProviderAnthropic && !strings.HasPrefix(model, "claude") {
		model = ""
	}
	if provider == config.ProviderOpenAI && strings.HasPrefix(model, "claude") {
		model = ""
	}

	return NewClient(Config{
		Provider: provider,
		APIKey:   key,
		Model:    model,
		BaseURL:  s.LLM.BaseURL,
		Timeout:  s.RequestTimeout(),
		Scrubber: scrubber,
		Logger:   logger,
	})
}

// Complete sends req and returns the reply text.
//
// Prompts are scrubbed of secrets first. Rate limits (429), server errors
// (5xx) and transport failures are retried with exponential backoff; other
// API errors fail immediately. Every attempt, retries included, takes a
// rate limiter token.
func (c *httpClient) Complete(ctx context.Context, req Request) (string, error) {
	req.Prompt = c.scrub(ctx, "prompt", req.Prompt)
	req.System = c.scrub(ctx, "system", req.System)
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	payload, err := json.Marshal(c.provider.body(c.model, req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(fmt.Errorf("rate limiter error: %w", err))
		}
		text, err := c.do(ctx, payload)
		if err == nil {
			return text, nil
		}
		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return "", backoff.Permanent(err)
		}
		c.logger.Debug(ctx, "retrying completion", zap.Int("attempt", attempt), zap.Error(err))
		return "", err
	}

	start := time.Now()
	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
	)
	if err != nil {
		c.logger.Warn(ctx, "completion failed", zap.Int("attempts", attempt), zap.Error(err))
		return "", err
	}

	c.logger.Debug(ctx, "completion finished",
		zap.Int("attempts", attempt),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (c *httpClient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseBackoff
	b.MaxInterval = c.baseBackoff * 16
	return b
}

func (c *httpClient) scrub(ctx context.Context, part, text string) string {
	if text == "" || !c.scrubber.Enabled() {
		return text
	}
	result := c.scrubber.Scrub(text)
	if result.HasFindings() {
		c.logger.Info(ctx, "secrets redacted from "+part,
			zap.String("summary", result.Summary()),
			zap.Int("findings", len(result.Findings)))
	}
	return result.Scrubbed
}

// do performs a single HTTP round trip.
func (c *httpClient) do(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.endpoint(c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.provider.headers(httpReq.Header, c.apiKey.Value())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &retryableError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &retryableError{err: fmt.Errorf("rate limited (429)")}
	case resp.StatusCode >= 500:
		return "", &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, truncate(body))}
	case resp.StatusCode != http.StatusOK:
		if msg := c.provider.errorMessage(body); msg != "" {
			return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: truncate(body)}
	}

	text, err := c.provider.text(body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// APIError is a non-retryable error reported by the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// retryableError marks errors worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}
