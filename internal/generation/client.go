package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/logging"
)

const (
	DefaultTimeout = 120 * time.Second

	maxBodyBytes  = 4 << 20
	errExcerptLen = 100
	logExcerptLen = 500
)

type Request struct {
	Subject  string `json:"subject"`
	Goal     string `json:"goal"`
	Deadline int    `json:"deadline"`
	UserID   string `json:"userId"`
}

// ServiceError is a non-2xx answer from the generation endpoint.
type ServiceError struct {
	Status  int
	Excerpt string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service returned status %d: %s", e.Status, e.Excerpt)
}

func (e *ServiceError) Unwrap() error { return apperr.ErrGenerationService }

// Client sends exactly one request per Generate call; it never retries.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// Generate is bounded by the client timeout only: the caller going away does
// not cancel the upstream call.
func (c *Client) Generate(ctx context.Context, req Request) (*Document, error) {
	l := logging.FromContext(ctx).With("component", "generation", "user_id", req.UserID)

	if c.endpoint == "" {
		return nil, fmt.Errorf("generation endpoint is not set: %w", apperr.ErrConfiguration)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode generation request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", errors.Join(apperr.ErrConfiguration, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	l.Info("generation_response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"body", excerpt(raw, logExcerptLen),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Status: resp.StatusCode, Excerpt: excerpt(raw, errExcerptLen)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperr.ErrGenerationEmpty
	}

	doc, err := Normalize(raw)
	if err != nil {
		l.Error("generation_normalize_failed", "reason", err.Error(), "body", excerpt(raw, 300))
		return nil, fmt.Errorf("%w: %w", apperr.ErrGenerationMalformed, err)
	}
	return doc, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", apperr.ErrGenerationTimeout, c.timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", apperr.ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%w: %w", apperr.ErrGenerationUnavailable, err)
}

func excerpt(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut])
}
