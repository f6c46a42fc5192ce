// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package tilecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/tile"
)

// maxErrorBodySize caps how much of an error response is kept.
const maxErrorBodySize = 512

// maxTileSize caps a tile response body.
const maxTileSize = 8 << 20

// ErrTileTooLarge is returned for a tile body over maxTileSize.
var ErrTileTooLarge = errors.New("tile body too large")

// StatusError is an unexpected HTTP status from the tile server.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tile server returned %d for %s: %s", e.Code, e.URL, e.Body)
}

// fetchResult is one tile response.
type fetchResult struct {
	NotModified bool
	Body        []byte
	ETag        string
}

// client requests tiles from the tile server.
type client struct {
	http           *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[*fetchResult]
	baseURL        string
	apiKey         string
	userAgent      string
	maxRetries     int
	retryBaseDelay time.Duration
}

func newClient(opts *Options) *client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &client{
		http:           hc,
		limiter:        rate.NewLimiter(limit, burst),
		breaker:        newBreaker(opts.BreakerFailures, opts.BreakerTimeout),
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		userAgent:      opts.UserAgent,
		maxRetries:     opts.RetryAttempts,
		retryBaseDelay: opts.RetryDelay,
	}
}

// tileURL builds "{base}/{z}/{x}/{y}.png?apikey={key}".
func (c *client) tileURL(t tile.Tile) string {
	u := fmt.Sprintf("%s/%d/%d/%d.png", c.baseURL, t.Z, t.X, t.Y)
	if c.apiKey != "" {
		u += "?apikey=" + url.QueryEscape(c.apiKey)
	}
	return u
}

// fetch downloads t through the circuit breaker. A non-empty etag makes the
// request conditional.
func (c *client) fetch(ctx context.Context, t tile.Tile, etag string) (*fetchResult, error) {
	start := time.Now()
	res, err := c.breaker.Execute(func() (*fetchResult, error) {
		return c.doRequestWithRetry(ctx, c.tileURL(t), etag)
	})
	recordBreakerResult(err)

	switch {
	case err != nil:
		metrics.RecordTileDownload("error", 0, time.Since(start))
	case res.NotModified:
		metrics.RecordTileDownload("not_modified", 0, time.Since(start))
	default:
		metrics.RecordTileDownload("ok", int64(len(res.Body)), time.Since(start))
	}
	return res, err
}

// doRequestWithRetry performs the GET, retrying 429 and 5xx responses with
// exponential backoff (base, 2×base, 4×base, ...). Retry-After, in seconds or
// as an HTTP date, replaces the computed delay.
func (c *client) doRequestWithRetry(ctx context.Context, reqURL, etag string) (*fetchResult, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, retryAfter, err := c.doRequest(ctx, reqURL, etag)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter > 0 {
			delay = retryAfter
		}
		metrics.RecordTileRetry()
		logging.Debug().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("Retrying tile request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.maxRetries > 0 && retryable(lastErr) {
		return nil, fmt.Errorf("tile request failed after %d retries: %w", c.maxRetries, lastErr)
	}
	return nil, lastErr
}

// doRequest performs a single GET and classifies the response.
func (c *client) doRequest(ctx context.Context, reqURL, etag string) (*fetchResult, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxTileSize+1))
		if err != nil {
			return nil, 0, fmt.Errorf("read tile body: %w", err)
		}
		if len(body) > maxTileSize {
			return nil, 0, fmt.Errorf("%w: over %d bytes from %s", ErrTileTooLarge, maxTileSize, redactKey(reqURL))
		}
		return &fetchResult{Body: body, ETag: resp.Header.Get("ETag")}, 0, nil
	case http.StatusNotModified:
		return &fetchResult{NotModified: true, ETag: etag}, 0, nil
	default:
		se := &StatusError{
			Code: resp.StatusCode,
			URL:  redactKey(reqURL),
			Body: string(readBodyForError(resp.Body)),
		}
		return nil, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), se
	}
}

// retryable reports whether err is a 429 or 5xx status.
func retryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
}

// parseRetryAfter reads a Retry-After value as seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// readBodyForError reads a bounded prefix of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

// redactKey hides the apikey query value in logged URLs.
func redactKey(u string) string {
	if i := strings.Index(u, "apikey="); i >= 0 {
		return u[:i] + "apikey=REDACTED"
	}
	return u
}
