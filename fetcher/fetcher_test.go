/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/stockwatch/errors"
)

// newTestFetcher records requested sleeps instead of sleeping.
func newTestFetcher(t *testing.T, cfg Config) (*Fetcher, *[]time.Duration) {
	t.Helper()
	f, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	var slept []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return f, &slept
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		req  Request
		want url.Values
		raw  string
	}{
		{
			name: "parameters added to bare endpoint",
			base: "https://www.apple.com/shop/fulfillment-messages",
			req:  Request{Location: "10001", Parts: []string{"MU663LL/A", "MU693LL/A"}},
			want: url.Values{
				"pl":       {"true"},
				"mts.0":    {"regular"},
				"mts.1":    {"compact"},
				"location": {"10001"},
				"parts.0":  {"MU663LL/A"},
				"parts.1":  {"MU693LL/A"},
			},
		},
		{
			name: "prebuilt query gets location override",
			base: "https://www.apple.com/shop/fulfillment-messages?pl=true&parts.0=MU663LL/A&location=94103",
			req:  Request{Location: "10001"},
			want: url.Values{
				"pl":       {"true"},
				"parts.0":  {"MU663LL/A"},
				"location": {"10001"},
			},
		},
		{
			name: "configured parts replace prebuilt parts",
			base: "https://www.apple.com/shop/fulfillment-messages?pl=true&parts.0=MU663LL/A&parts.1=MU693LL/A&parts.2=MU6A3LL/A",
			req:  Request{Parts: []string{"MTUW3LL/A"}},
			want: url.Values{
				"pl":      {"true"},
				"mts.0":   {"regular"},
				"mts.1":   {"compact"},
				"parts.0": {"MTUW3LL/A"},
			},
		},
		{
			name: "prebuilt query used verbatim",
			base: "https://www.apple.com/shop/fulfillment-messages?pl=true&parts.0=MU663LL%2FA&location=94103",
			raw:  "https://www.apple.com/shop/fulfillment-messages?pl=true&parts.0=MU663LL%2FA&location=94103",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(t, Config{BaseURL: tt.base})
			got, err := f.BuildURL(tt.req)
			require.NoError(t, err)
			if tt.raw != "" {
				require.Equal(t, tt.raw, got)
				return
			}
			u, err := url.Parse(got)
			require.NoError(t, err)
			require.Equal(t, tt.want, u.Query())
		})
	}
}

func TestFetchSuccessSendsCookieAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "10001", r.URL.Query().Get("location"))
		require.Contains(t, r.Header.Get("Cookie"), "session=abc")
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body":{}}`))
	}))
	defer srv.Close()

	f, slept := newTestFetcher(t, Config{BaseURL: srv.URL, Cookie: "session=abc"})
	body, err := f.Fetch(context.Background(), Request{Location: "10001"})
	require.NoError(t, err)
	require.JSONEq(t, `{"body":{}}`, string(body))
	require.Empty(t, *slept)
}

func TestFetchRetriesTransientWithDoublingDelay(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(541)
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	f, slept := newTestFetcher(t, Config{BaseURL: srv.URL, MaxRetries: 3, InitialDelay: time.Second})
	body, err := f.Fetch(context.Background(), Request{})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f, slept := newTestFetcher(t, Config{
		BaseURL:      srv.URL,
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     3 * time.Second,
	})
	_, err := f.Fetch(context.Background(), Request{})
	require.Error(t, err)
	require.True(t, errors.IsTransient(err))

	var statusErr *errors.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 4, statusErr.Attempts)
	require.EqualValues(t, 4, calls.Load())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *slept)
}

func TestFetchNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	f, slept := newTestFetcher(t, Config{BaseURL: base, MaxRetries: 1, InitialDelay: time.Second})
	_, err := f.Fetch(context.Background(), Request{})
	require.Error(t, err)
	require.True(t, errors.IsTransient(err))
	require.Contains(t, err.Error(), "after 2 attempts")
	require.Equal(t, []time.Duration{time.Second}, *slept)
}

func TestFetchDoesNotRetryPermanentStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f, slept := newTestFetcher(t, Config{BaseURL: srv.URL, MaxRetries: 3, InitialDelay: time.Second})
	_, err := f.Fetch(context.Background(), Request{})
	require.Error(t, err)
	require.False(t, errors.IsTransient(err))
	require.EqualValues(t, 1, calls.Load())
	require.Empty(t, *slept)
}

func TestFetchHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f, err := New(Config{BaseURL: srv.URL, MaxRetries: 5, InitialDelay: time.Hour}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx, Request{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Config{}, nil)
	require.True(t, errors.IsValidationError(err))
}
