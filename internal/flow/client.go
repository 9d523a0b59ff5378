package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brisdel/langflow-api/internal/config"
	"github.com/brisdel/langflow-api/internal/metrics"
)

// maxErrorBodyBytes bounds how much of a non-200 body is read for
// diagnostics. Success bodies are read in full; envelopes routinely carry
// logs and artifacts well past this size.
const maxErrorBodyBytes = 64 * 1024

// oversizedSignal marks the upstream "input too large for the model" failure,
// which arrives as a generic error status with a detail string.
const oversizedSignal = "maximum context length"

// Client invokes the hosted Langflow run endpoint. It holds no per-request
// state and is safe for concurrent use.
type Client struct {
	runURL     string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

func NewClient(cfg config.FlowConfig, log *zap.Logger) *Client {
	return &Client{
		runURL:     cfg.RunURL(),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: http.DefaultClient,
		timeout:    cfg.TimeoutDuration(),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelayDuration(),
		log:        log,
	}
}

func (c *Client) Name() string {
	return "langflow"
}

// Run issues the upstream POST, retrying on HTTP 504 and client-side timeouts
// up to maxRetries extra attempts with a fixed delay between attempts. Every
// outcome is classified into a *RelayError; a 200 body that parses as JSON is
// the only success.
func (c *Client) Run(ctx context.Context, payload Payload) (any, error) {
	if c.token == "" {
		return nil, NewTokenNotConfiguredError()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("cannot encode payload: %v", err))
	}

	totalAttempts := c.maxRetries + 1
	for attempt := 1; attempt <= totalAttempts; attempt++ {
		raw, relayErr := c.attempt(ctx, body, attempt)
		if relayErr == nil {
			return raw, nil
		}
		if !relayErr.Retryable {
			return nil, relayErr
		}
		if attempt == totalAttempts {
			return nil, NewUpstreamTimeoutError(totalAttempts)
		}
		if err := c.waitRetryDelay(ctx); err != nil {
			return nil, NewUpstreamUnavailableError(err)
		}
	}

	return nil, NewUpstreamTimeoutError(totalAttempts)
}

func (c *Client) attempt(ctx context.Context, body []byte, attempt int) (any, *RelayError) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.runURL, bytes.NewReader(body))
	if err != nil {
		return nil, NewUpstreamUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(started)

	if err != nil {
		outcome := "error"
		relayErr := NewUpstreamUnavailableError(err)
		if isTimeout(err) && ctx.Err() == nil {
			outcome = "timeout"
			relayErr = &RelayError{
				Code:      CodeUpstreamTimeout,
				Status:    http.StatusGatewayTimeout,
				Message:   "upstream attempt timed out",
				Retryable: true,
			}
		}
		c.logAttempt(attempt, elapsed, 0, outcome, err)
		metrics.UpstreamAttempts.WithLabelValues(outcome).Inc()
		metrics.UpstreamAttemptDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
		return nil, relayErr
	}

	var respBody []byte
	var readErr error
	if resp.StatusCode == http.StatusOK {
		respBody, readErr = io.ReadAll(resp.Body)
	} else {
		respBody, readErr = io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	}
	_ = resp.Body.Close()

	outcome := outcomeForStatus(resp.StatusCode)
	c.logAttempt(attempt, elapsed, resp.StatusCode, outcome, nil)
	metrics.UpstreamAttempts.WithLabelValues(outcome).Inc()
	metrics.UpstreamAttemptDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, &RelayError{
			Code:      CodeUpstreamTimeout,
			Status:    http.StatusGatewayTimeout,
			Message:   "upstream returned 504",
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return nil, classifyErrorStatus(resp.StatusCode, respBody)
	case readErr != nil:
		return nil, NewUpstreamMalformedError(readErr)
	}

	var raw any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, NewUpstreamMalformedError(err)
	}
	return raw, nil
}

// classifyErrorStatus inspects a non-200 body. A JSON detail field mentioning
// the model's context length is surfaced as the dedicated oversized-query
// failure regardless of the original status code; everything else passes
// through with the upstream status.
func classifyErrorStatus(statusCode int, body []byte) *RelayError {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if detail, ok := parsed["detail"]; ok {
			text := strings.ToLower(fmt.Sprintf("%v", detail))
			if strings.Contains(text, oversizedSignal) {
				return NewQueryTooLargeError()
			}
		}
	}
	return NewUpstreamStatusError(statusCode, strings.TrimSpace(string(body)))
}

func (c *Client) waitRetryDelay(ctx context.Context) error {
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// logAttempt records one upstream attempt. The Authorization value is never
// logged in full; only a short redacted form appears.
func (c *Client) logAttempt(attempt int, elapsed time.Duration, statusCode int, outcome string, err error) {
	fields := []zap.Field{
		zap.Int("attempt", attempt),
		zap.Int64("elapsed_ms", elapsed.Milliseconds()),
		zap.String("outcome", outcome),
		zap.String("authorization", RedactToken(c.token)),
	}
	if statusCode > 0 {
		fields = append(fields, zap.Int("status", statusCode))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.Warn("upstream attempt failed", fields...)
		return
	}
	c.log.Info("upstream attempt", fields...)
}

// RedactToken returns a diagnostic-safe form of the credential: a four-rune
// prefix at most, never the full secret.
func RedactToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return "<unset>"
	}
	runes := []rune(token)
	if len(runes) <= 4 {
		return "Bearer ****"
	}
	return "Bearer " + string(runes[:4]) + "****"
}

func outcomeForStatus(statusCode int) string {
	switch {
	case statusCode == http.StatusOK:
		return "success"
	case statusCode == http.StatusGatewayTimeout:
		return "timeout"
	default:
		return "error"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
