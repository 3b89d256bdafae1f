// Package fpl provides the client for the upstream sports-statistics API.
//
// The client is the only component that talks to the external service. Every
// call is rate limited, retried with capped exponential backoff, and failures
// come back as integration-kind envelopes so the job layer can apply its own
// retry policy on top without double-classifying.
package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/errs"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxAttempts is the per-request attempt ceiling inside the client. The job
// layer has its own, coarser retry budget; this only smooths transient blips.
const maxAttempts = 3

// Client wraps the upstream HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewClient creates an upstream API client from config.
//
// The rate limiter is shared by all callers of this client, so the configured
// requests-per-second cap holds across concurrent sync workers.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.Upstream.BaseURL,
		http: &http.Client{
			Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.Upstream.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// Bootstrap fetches the combined static payload (events, teams, players).
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var out Bootstrap
	if err := c.getJSON(ctx, "/bootstrap-static/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fixtures fetches all fixtures for one event.
func (c *Client) Fixtures(ctx context.Context, eventID int) ([]FixturePayload, error) {
	var out []FixturePayload
	if err := c.getJSON(ctx, fmt.Sprintf("/fixtures/?event=%d", eventID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Live fetches the live player statistics for one event.
func (c *Client) Live(ctx context.Context, eventID int) (*Live, error) {
	var out Live
	if err := c.getJSON(ctx, fmt.Sprintf("/event/%d/live/", eventID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Picks fetches one entry's squad selection for one event.
func (c *Client) Picks(ctx context.Context, entryID, eventID int) (*EntryPicks, error) {
	var out EntryPicks
	if err := c.getJSON(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, eventID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches one entry's season-to-date event history.
func (c *Client) History(ctx context.Context, entryID int) (*EntryHistory, error) {
	var out EntryHistory
	if err := c.getJSON(ctx, fmt.Sprintf("/entry/%d/history/", entryID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON performs a rate-limited GET with bounded retry and decodes the
// response body into out.
//
// Retry rules:
//   - network errors and 5xx/429 responses are retried with exponential
//     backoff plus jitter, up to maxAttempts
//   - other non-200 statuses fail immediately (retrying a 404 won't help)
//   - context cancellation aborts the wait between attempts
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			c.logger.Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying upstream request")

			select {
			case <-ctx.Done():
				return errs.Wrap(errs.LayerService, errs.KindIntegration, "upstream request cancelled", ctx.Err()).
					WithDetail("url", url)
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return errs.Wrap(errs.LayerService, errs.KindIntegration, "upstream rate limit wait cancelled", err).
				WithDetail("url", url)
		}

		done, err := c.doOnce(ctx, url, out)
		if done {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// doOnce executes a single request. The first return value reports whether
// the outcome is final (success or a non-retryable failure).
func (c *Client) doOnce(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return true, errs.Wrap(errs.LayerService, errs.KindIntegration, "failed to build upstream request", err).
			WithDetail("url", url)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, errs.Wrap(errs.LayerService, errs.KindIntegration, "upstream request failed", err).
			WithDetail("url", url)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, errs.Wrap(errs.LayerService, errs.KindIntegration, "failed to read upstream response", err).
				WithDetail("url", url)
		}
		if err := json.Unmarshal(body, out); err != nil {
			// A malformed body is not transient; retrying would fetch the
			// same bytes again.
			return true, errs.Wrap(errs.LayerService, errs.KindDeserialization, "failed to decode upstream response", err).
				WithDetail("url", url)
		}
		return true, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, errs.New(errs.LayerService, errs.KindIntegration,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode)).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)

	default:
		return true, errs.New(errs.LayerService, errs.KindIntegration,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode)).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}
}

// backoffDelay computes the wait before the given attempt: 500ms * 2^(n-1)
// with up to 20% jitter, capped at 10s.
func backoffDelay(attempt int) time.Duration {
	base := 500 * time.Millisecond
	delay := base << (attempt - 1)
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 5))
	return delay + jitter
}
