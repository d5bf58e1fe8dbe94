package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/kapu/repfinder-go/internal/util"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

// Requester fetches documents from origin services. service is a short label
// ("postcodes", "riksdagen") used for errors, logs and metrics.
type Requester interface {
	Get(ctx context.Context, service, rawURL string) ([]byte, error)
	GetJSON(ctx context.Context, service, rawURL string, out any) error
}

// Client is a retrying HTTP GET client with one circuit breaker per service.
// 5xx, 429 and transport errors are retried with exponential backoff; other
// 4xx responses fail immediately with the origin status preserved.
type Client struct {
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
	jitter      time.Duration

	breakersMu sync.Mutex
	breakers   map[string]*util.CircuitBreaker
}

type Option func(*Client)

// WithRetry overrides the retry schedule from constants.RetryConfig.
func WithRetry(maxAttempts int, baseDelay, jitter time.Duration) Option {
	return func(c *Client) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
		c.jitter = jitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(httpClient *http.Client, logger *zap.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		httpClient:  httpClient,
		logger:      logger,
		userAgent:   constants.APIConfig.UserAgent,
		maxAttempts: constants.RetryConfig.MaxAttempts,
		baseDelay:   constants.RetryConfig.BaseDelay,
		jitter:      constants.RetryConfig.Jitter,
		breakers:    make(map[string]*util.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetJSON(ctx context.Context, service, rawURL string, out any) error {
	body, err := c.Get(ctx, service, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.ObserveUpstream(service, "decode_error")
		return errors.NewUpstreamError(fmt.Sprintf("%s returned malformed JSON", service), service, 0, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, service, rawURL string) ([]byte, error) {
	breaker := c.breaker(service)
	if !breaker.CanExecute() {
		c.metrics.ObserveUpstream(service, "circuit_open")
		return nil, errors.NewUpstreamError(fmt.Sprintf("%s circuit breaker open", service), service, 0, nil)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.computeDelay(attempt - 1)
			c.logger.Warn("Upstream request failed, retrying",
				zap.String("service", service),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, errors.NewUpstreamError(fmt.Sprintf("%s request cancelled", service), service, 0, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, status, err := c.do(ctx, rawURL)
		if err != nil {
			lastErr = errors.NewUpstreamError(fmt.Sprintf("%s request failed", service), service, 0, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch {
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = errors.NewUpstreamError(fmt.Sprintf("%s returned status %d", service, status), service, status, nil)
			continue
		case status >= 400:
			// Client errors are the origin's answer, not an outage.
			breaker.RecordSuccess()
			c.metrics.ObserveUpstream(service, "client_error")
			return nil, errors.NewUpstreamError(fmt.Sprintf("%s returned status %d", service, status), service, status, nil)
		}

		breaker.RecordSuccess()
		c.metrics.ObserveUpstream(service, "ok")
		return body, nil
	}

	breaker.RecordFailure(0)
	c.metrics.ObserveUpstream(service, "error")
	c.logger.Error("Upstream request exhausted retries",
		zap.String("service", service),
		zap.String("url", redact(rawURL)),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/xml, text/html;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) breaker(service string) *util.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	cb, ok := c.breakers[service]
	if !ok {
		cb = util.NewCircuitBreaker(
			service,
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			0,
			nil,
			c.logger,
		)
		c.breakers[service] = cb
	}
	return cb
}

func (c *Client) computeDelay(attempt int) time.Duration {
	base := c.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if c.jitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Float64()*float64(c.jitter))
}

// redact strips query parameters that carry API keys before logging.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, key := range []string{"api_key", "key"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
