package apisports

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/livescore/internal/domain/rawdata"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
	"github.com/riskibarqy/livescore/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	apiKeyHeader    = "x-apisports-key"
	maxResponseSize = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`(?i)(key|token)=[^&\s"']+`)
var errTransient = crerr.New("api-sports transient failure")

// RequestObserver receives one call per upstream attempt outcome.
type RequestObserver interface {
	ObserveUpstreamRequest(provider, endpoint, outcome string, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	Provider       string
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	Observer       RequestObserver
	CircuitBreaker resilience.CircuitBreakerConfig
	Now            func() time.Time
}

// Client is the shared transport for one API-Sports product (football,
// basketball). It owns the API key, the circuit breaker and raw payload
// capture; product clients only add paths and schemas.
type Client struct {
	httpClient   *http.Client
	provider     string
	baseURL      string
	apiKey       string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	observer     RequestObserver
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
	now          func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = 500 * time.Millisecond
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:   httpClient,
		provider:     strings.TrimSpace(cfg.Provider),
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		timeout:      timeout,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger.With("provider", cfg.Provider),
		observer:     cfg.Observer,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		now:          now,
	}
}

// Breaker exposes the circuit breaker for state reporting; nil when disabled.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

func (c *Client) Provider() string {
	return c.provider
}

// getEnvelope issues GET path?query, checks the API-Sports envelope and
// decodes its response array into target. The raw body is returned for
// archiving.
func getEnvelope[T any](ctx context.Context, c *Client, path string, query url.Values, target *[]T) ([]byte, error) {
	raw, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: decode payload: %v", usecase.ErrUpstreamFetch, c.provider, err)
	}
	if msg := env.errorMessage(); msg != "" {
		return nil, fmt.Errorf("%w: %s: provider errors: %s", usecase.ErrUpstreamFetch, c.provider, c.sanitize(msg))
	}

	*target = env.Response
	return raw, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: APISPORTS_API_KEY is not set", usecase.ErrConfiguration)
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-sports circuit breaker rejected request", "state", c.breaker.State(), "path", path)
			c.observe(path, "circuit_open", 0)
			return nil, fmt.Errorf("%w: %w: %s is temporarily unavailable", usecase.ErrDependencyUnavailable, usecase.ErrUpstreamFetch, c.provider)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	// Callers share one request; it is bounded by the client timeout, not by
	// whichever caller started it.
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(context.WithoutCancel(ctx), path, fullURL)
		if c.breaker != nil {
			switch {
			case reqErr == nil:
				c.breaker.RecordSuccess()
			case isCircuitFailure(reqErr):
				c.breaker.RecordFailure()
			case !stderrors.Is(reqErr, context.Canceled):
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response payload type %T", usecase.ErrUpstreamFetch, out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, path, fullURL string) ([]byte, error) {
	var lastErr error
retry:
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, retryable, err := c.doOnce(ctx, path, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = fmt.Errorf("%w: %w", usecase.ErrUpstreamFetch, ctx.Err())
			break retry
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "api-sports request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, path, fullURL string) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: build request: %v", usecase.ErrUpstreamFetch, err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	started := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := "network_error"
		var netErr net.Error
		if stderrors.Is(reqCtx.Err(), context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
			outcome = "timeout"
		}
		c.observe(path, outcome, c.now().Sub(started))
		return nil, true, fmt.Errorf("%w: %w: send request: %s", usecase.ErrUpstreamFetch, errTransient, c.sanitize(err.Error()))
	}
	defer resp.Body.Close()

	raw, readErr := readBody(resp.Body)
	elapsed := c.now().Sub(started)
	if readErr != nil {
		c.observe(path, "read_error", elapsed)
		return nil, true, fmt.Errorf("%w: %w: read response body: %v", usecase.ErrUpstreamFetch, errTransient, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(path, fmt.Sprintf("status_%dxx", resp.StatusCode/100), elapsed)
		if isRetryableStatus(resp.StatusCode) {
			return nil, true, fmt.Errorf("%w: %w: provider status=%d body=%s", usecase.ErrUpstreamFetch, errTransient, resp.StatusCode, c.sanitize(abbreviateBody(raw)))
		}
		return nil, false, fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrUpstreamFetch, resp.StatusCode, c.sanitize(abbreviateBody(raw)))
	}

	c.observe(path, "ok", elapsed)
	return raw, false, nil
}

// readBody copies at most maxResponseSize bytes through a pooled buffer.
func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseSize)); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func (c *Client) observe(path, outcome string, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstreamRequest(c.provider, path, outcome, elapsed)
}

func (c *Client) payload(entityType, path string, query url.Values, sport string, leagueID int64, raw []byte) rawdata.Payload {
	entityKey := strings.TrimPrefix(path, "/")
	if encoded := query.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	return rawdata.NewPayload(c.provider, entityType, entityKey, sport, leagueID, raw, c.now())
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if c.apiKey != "" {
		value = strings.ReplaceAll(value, c.apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "${1}=REDACTED")
}

// isCircuitFailure reports provider-side failures. A caller cancelling is not
// one.
func isCircuitFailure(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	return stderrors.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiKeyParamRegex.ReplaceAllString(rawURL, "${1}=REDACTED")
	}
	query := parsed.Query()
	for _, key := range []string{"key", "token", "api_token"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
