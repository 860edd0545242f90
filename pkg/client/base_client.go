package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Failure kinds surfaced by every upstream client. Callers match them with
// errors.Is.
var (
	ErrTransport = errors.New("upstream unreachable")
	ErrStatus    = errors.New("unexpected upstream status")
	ErrDecode    = errors.New("malformed upstream response")
	ErrNoResults = errors.New("upstream returned no results")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type BaseClient struct {
	name           string
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
}

type ClientConfig struct {
	Timeout        time.Duration
	Threshold      int
	BreakerTimeout time.Duration
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 3
	}

	// Circuit breaker settings
	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(threshold) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		name:           name,
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
	}
}

// Get issues a single GET through the circuit breaker and returns the body
// of a 2xx response. The query is kept out of the logs since it carries the
// API key.
func (c *BaseClient) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	body, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doGet(ctx, endpoint, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return nil, err
	}

	return body.([]byte), nil
}

func (c *BaseClient) doGet(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	start := time.Now()

	target := endpoint
	if len(query) > 0 {
		target = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		err = redactURL(err, endpoint)
		c.logger.Warn("HTTP request failed",
			zap.String("client", c.name),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Unexpected HTTP status",
			zap.String("client", c.name),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	c.logger.Debug("Request successful",
		zap.String("client", c.name),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(body)),
		zap.Duration("duration", time.Since(start)))

	return body, nil
}

// redactURL swaps the request URL in a transport error for endpoint, which
// carries no query and so no API key.
func redactURL(err error, endpoint string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: endpoint, Err: uerr.Err}
	}
	return err
}
