package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// getWithRetry issues a body-less GET and returns the first response that is
// not worth repeating. A fresh request is built for every attempt.
func (c *Client) getWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}

	var lastErr error
	var wait time.Duration
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, wait); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("spotify adapter: request canceled: %w", ctxErr)
			}
			lastErr = err
			wait = c.backoff(attempt, 0)
			c.log.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying request after error")
			continue
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}

		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		wait = c.backoff(attempt, parseRetryAfter(resp))
		_ = resp.Body.Close()
		c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying request after status")
	}

	if lastErr == nil {
		lastErr = errors.New("no attempt made")
	}
	return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", attempts, lastErr)
}

// retryable reports whether repeating the same GET can change the answer.
func retryable(status int) bool {
	switch {
	case status == http.StatusForbidden, status == http.StatusNotFound:
		// no analysis exists for the track
		return false
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// backoff doubles the base delay per attempt unless the server named one.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	base := c.baseBackoff
	if base <= 0 {
		base = defaultBackoff
	}
	return base << attempt
}

// parseRetryAfter reads Retry-After as delay-seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
