/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package fetcher retrieves the raw store-pickup payload from the vendor endpoint.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch/errors"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Config controls how the vendor endpoint is called.
type Config struct {
	BaseURL   string
	Cookie    string
	UserAgent string

	// Timeout applies to each attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries   int
	InitialDelay time.Duration
	// MaxDelay caps the doubling backoff; zero means uncapped.
	MaxDelay time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		UserAgent:    defaultUserAgent,
		Timeout:      15 * time.Second,
		MaxRetries:   3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Request selects what to ask the vendor for.
type Request struct {
	// Location is a ZIP code; empty keeps whatever the base URL carries.
	Location string
	Parts    []string
}

// Fetcher performs GET requests with retry on transient vendor failures.
type Fetcher struct {
	client *resty.Client
	cfg    Config
	log    *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New builds a Fetcher. The cookie jar is kept for the lifetime of the Fetcher so cookies set by the
// vendor are replayed on later attempts and passes.
func New(cfg Config, log *zap.Logger) (*Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewValidationError("apple_url", "vendor URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.NewValidationError("apple_url", err.Error())
	}
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetCookieJar(jar).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Referer":         "https://www.apple.com/shop/buy-iphone",
		})
	if cfg.Cookie != "" {
		client.SetHeader("Cookie", cfg.Cookie)
	}

	return &Fetcher{client: client, cfg: cfg, log: log, sleep: sleepCtx}, nil
}

// BuildURL returns the URL requested for req.
// A base URL that already carries a query is used as is, apart from the location override.
func (f *Fetcher) BuildURL(req Request) (string, error) {
	u, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return "", errors.NewValidationError("apple_url", err.Error())
	}
	if u.RawQuery != "" && req.Location == "" && len(req.Parts) == 0 {
		return f.cfg.BaseURL, nil
	}
	q := u.Query()

	if u.RawQuery == "" || len(req.Parts) > 0 {
		q.Set("pl", "true")
		q.Set("mts.0", "regular")
		q.Set("mts.1", "compact")
		if len(req.Parts) > 0 {
			for key := range q {
				if strings.HasPrefix(key, "parts.") {
					q.Del(key)
				}
			}
		}
		for i, part := range req.Parts {
			q.Set("parts."+strconv.Itoa(i), part)
		}
	}
	if req.Location != "" {
		q.Set("location", req.Location)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch returns the raw JSON body for req.
// Status 503 and 541, and network errors, are retried with a doubling delay. Any other non-200
// status, or running out of retries on a status, returns an *errors.HTTPStatusError. Running out of
// retries on network errors returns an error matching errors.ErrTransient.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	target, err := f.BuildURL(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempts++

		res, err := f.client.R().SetContext(ctx).Get(target)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request to %s failed: %w", target, err)
			f.log.Warn("vendor request failed",
				zap.String("location", req.Location), zap.Int("attempt", attempts), zap.Error(err))
		case res.StatusCode() == http.StatusOK:
			f.log.Debug("vendor request succeeded",
				zap.String("location", req.Location),
				zap.Int("attempt", attempts),
				zap.Duration("took", res.Time()))
			return res.Body(), nil
		case errors.IsTransientStatus(res.StatusCode()):
			lastErr = errors.NewHTTPStatusError(target, res.StatusCode(), attempts)
			f.log.Warn("vendor returned transient status",
				zap.String("location", req.Location), zap.Int("status", res.StatusCode()), zap.Int("attempt", attempts))
		default:
			return nil, errors.NewHTTPStatusError(target, res.StatusCode(), attempts)
		}

		if attempt < f.cfg.MaxRetries {
			if err := f.sleep(ctx, f.backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	f.log.Error("giving up on vendor request",
		zap.String("location", req.Location), zap.Int("attempts", attempts), zap.Error(lastErr))
	if se, ok := lastErr.(*errors.HTTPStatusError); ok {
		return nil, se
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", errors.ErrTransient, attempts, lastErr)
}

// backoff is InitialDelay doubled once per previous attempt, capped at MaxDelay.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := f.cfg.InitialDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if f.cfg.MaxDelay > 0 && d >= f.cfg.MaxDelay {
			return f.cfg.MaxDelay
		}
	}
	if f.cfg.MaxDelay > 0 && d > f.cfg.MaxDelay {
		return f.cfg.MaxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
