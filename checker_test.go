/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/stockwatch/config"
	"github.com/suparena/stockwatch/datastore/mock"
	"github.com/suparena/stockwatch/errors"
	"github.com/suparena/stockwatch/fetcher"
	"github.com/suparena/stockwatch/notifier"
	"github.com/suparena/stockwatch/pickup"
	"github.com/suparena/stockwatch/storagemodels"
)

const (
	proMax256 = "iPhone 15 Pro Max 256GB Natural Titanium"
	proMax512 = "iPhone 15 Pro Max 512GB Blue Titanium"
)

type fakeStore struct {
	name  string
	zip   string
	parts map[string][2]string // part -> {title, availability}
}

// payload renders a fulfillment-messages response for stores.
func payload(stores ...fakeStore) []byte {
	var list []map[string]any
	for _, s := range stores {
		parts := map[string]any{}
		for part, v := range s.parts {
			parts[part] = map[string]any{
				"pickupDisplay": v[1],
				"messageTypes": map[string]any{
					"compact": map[string]any{"storePickupProductTitle": v[0]},
				},
			}
		}
		list = append(list, map[string]any{
			"storeName":             s.name,
			"storeNumber":           "R" + s.zip,
			"storeDistanceWithUnit": "1.0 mi",
			"storelatitude":         40.5,
			"storelongitude":        -73.5,
			"address":               map[string]any{"postalCode": s.zip},
			"partsAvailability":     parts,
		})
	}
	b, _ := json.Marshal(map[string]any{
		"body": map[string]any{"content": map[string]any{"pickupMessage": map[string]any{"stores": list}}},
	})
	return b
}

// scriptedFetcher answers by location.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	calls     []string
}

func (f *scriptedFetcher) Fetch(_ context.Context, req fetcher.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.Location)
	if err := f.errs[req.Location]; err != nil {
		return nil, err
	}
	body, ok := f.responses[req.Location]
	if !ok {
		return nil, fmt.Errorf("no response scripted for %q", req.Location)
	}
	return body, nil
}

type outbound struct {
	recipient string
	text      string
}

type captureSender struct {
	mu   sync.Mutex
	msgs []outbound
}

func (s *captureSender) Send(_ context.Context, recipient, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, outbound{recipient, text})
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

type harness struct {
	fetcher *scriptedFetcher
	store   *mock.DataStore[storagemodels.AvailabilityRecord]
	sender  *captureSender
	checker *Checker
	slept   []time.Duration
}

func newHarness(t *testing.T, opts Options, ncfg notifier.Config) *harness {
	t.Helper()
	h := &harness{
		fetcher: &scriptedFetcher{responses: map[string][]byte{}, errs: map[string]error{}},
		store:   mock.NewAvailabilityStore(),
		sender:  &captureSender{},
	}
	if ncfg.Recipients == nil {
		ncfg.Recipients = []string{"111", "222"}
	}
	log := zaptest.NewLogger(t)
	n := notifier.New(h.sender, ncfg, log)
	h.checker = NewChecker(h.fetcher, pickup.Extractor{}, h.store, n, opts, log)
	h.checker.now = func() time.Time { return time.Date(2024, 9, 20, 8, 0, 0, 0, time.UTC) }
	h.checker.sleep = func(_ context.Context, d time.Duration) error {
		h.slept = append(h.slept, d)
		return nil
	}
	return h
}

func TestDiffFlagsExactlyChangedPairs(t *testing.T) {
	ctx := context.Background()
	store := mock.NewAvailabilityStore()
	store.SetData(map[string]storagemodels.AvailabilityRecord{
		storagemodels.RecordKey(proMax256, "SoHo"):         {Model: proMax256, StoreName: "SoHo", Availability: "available"},
		storagemodels.RecordKey(proMax256, "Fifth Avenue"): {Model: proMax256, StoreName: "Fifth Avenue", Availability: "unavailable"},
		storagemodels.RecordKey(proMax512, "SoHo"):         {Model: proMax512, StoreName: "SoHo", Availability: "ineligible"},
	})

	entries := []pickup.StoreEntry{
		{Model: proMax256, StoreName: "SoHo", Availability: "available"},
		{Model: proMax256, StoreName: "Fifth Avenue", Availability: "available"},
		{Model: proMax512, StoreName: "SoHo", Availability: "unavailable"},
		{Model: proMax512, StoreName: "Fifth Avenue", Availability: "unavailable"},
	}

	now := time.Date(2024, 9, 20, 8, 0, 0, 0, time.UTC)
	changes, err := Diff(ctx, store, entries, now)
	require.NoError(t, err)

	type pair struct{ Key, Previous, Current string }
	var got []pair
	for _, c := range changes {
		got = append(got, pair{c.Key(), c.Previous, c.Availability})
	}
	want := []pair{
		{proMax256 + "@Fifth Avenue", "unavailable", "available"},
		{proMax512 + "@SoHo", "ineligible", "unavailable"},
		{proMax512 + "@Fifth Avenue", "", "unavailable"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Diff() mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 3, store.Puts())
	rec, err := store.GetOne(ctx, proMax512+"@Fifth Avenue")
	require.NoError(t, err)
	require.Equal(t, "unavailable", rec.Availability)
	updated, err := rec.LastUpdated()
	require.NoError(t, err)
	require.True(t, updated.Equal(now))

	unchanged, err := store.GetOne(ctx, proMax256+"@SoHo")
	require.NoError(t, err)
	require.Empty(t, unchanged.UpdatedAt, "unchanged records are not rewritten")
}

func TestDiffPropagatesStoreErrors(t *testing.T) {
	store := mock.NewAvailabilityStore().WithGetError(fmt.Errorf("throttled"))
	_, err := Diff(context.Background(), store, []pickup.StoreEntry{{Model: "m", StoreName: "s"}}, time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "throttled")
}

func TestRunIdenticalDataTwiceNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{Locations: []string{"10001"}}, notifier.Config{})
	h.fetcher.responses["10001"] = payload(fakeStore{
		name: "Fifth Avenue", zip: "10153",
		parts: map[string][2]string{"MU663LL/A": {proMax256, "available"}},
	})

	first, err := h.checker.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 200, first.Status)
	require.Equal(t, SuccessBody, first.Body)
	require.Equal(t, 1, first.Changes)
	require.Equal(t, 2, first.MessagesSent)
	require.NotEmpty(t, first.RunID)

	second, err := h.checker.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, second.Changes)
	require.Equal(t, 0, second.MessagesSent)
	require.Equal(t, 2, h.sender.count(), "second run must not notify")
	require.NotEqual(t, first.RunID, second.RunID)

	require.Contains(t, h.sender.msgs[0].text, "✅ **AVAILABLE**")
	require.Contains(t, h.sender.msgs[0].text, "🏰 Fifth Avenue (10153)")
}

func TestRunDeduplicatesAcrossLocations(t *testing.T) {
	h := newHarness(t, Options{Locations: []string{"10001", "10012"}}, notifier.Config{Recipients: []string{"111"}})
	shared := fakeStore{name: "SoHo", zip: "10012", parts: map[string][2]string{"P1": {proMax256, "unavailable"}}}
	h.fetcher.responses["10001"] = payload(shared)
	h.fetcher.responses["10012"] = payload(shared, fakeStore{
		name: "Williamsburg", zip: "11249", parts: map[string][2]string{"P1": {proMax256, "available"}},
	})

	res, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Entries)
	require.Equal(t, 2, res.Changes)
	require.Equal(t, 2, h.store.Count())
	require.Equal(t, []string{"10001", "10012"}, h.fetcher.calls)
}

func TestRunMalformedPayloadFails(t *testing.T) {
	h := newHarness(t, Options{Locations: []string{"10001"}}, notifier.Config{})
	h.fetcher.responses["10001"] = []byte(`{"body":{"content":{}}}`)

	res, err := h.checker.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.IsMalformedPayload(err))
	require.Zero(t, res.Status)
	require.Zero(t, h.sender.count())
}

func TestRunTransientFetchFailureNotifiesAndContinues(t *testing.T) {
	h := newHarness(t, Options{Locations: []string{"10001", "94103"}}, notifier.Config{
		Recipients:   []string{"111"},
		NotifyErrors: true,
	})
	h.fetcher.errs["10001"] = errors.NewHTTPStatusError("https://vendor.test", 541, 4)
	h.fetcher.responses["94103"] = payload(fakeStore{
		name: "Union Square", zip: "94108", parts: map[string][2]string{"P1": {proMax512, "available"}},
	})

	res, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 200, res.Status)
	require.Equal(t, 1, res.FetchFailures)
	require.Equal(t, 1, res.Changes)
	require.Equal(t, 2, res.MessagesSent)

	require.Contains(t, h.sender.msgs[0].text, "10001")
	require.Contains(t, h.sender.msgs[0].text, "541")
	require.Contains(t, h.sender.msgs[1].text, "Union Square")
}

func TestRunMultiplePassesSleepBetween(t *testing.T) {
	h := newHarness(t, Options{Passes: 2, PassInterval: 45 * time.Second}, notifier.Config{})
	h.fetcher.responses[""] = payload(fakeStore{
		name: "SoHo", zip: "10012", parts: map[string][2]string{"P1": {proMax256, "unavailable"}},
	})

	res, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Passes)
	require.Equal(t, 2, res.Entries)
	require.Equal(t, 1, res.Changes)
	require.Equal(t, []time.Duration{45 * time.Second}, h.slept)
	require.Len(t, h.fetcher.calls, 2)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	h := newHarness(t, Options{Passes: 3, PassInterval: time.Hour}, notifier.Config{})
	h.checker.sleep = sleepCtx
	h.fetcher.responses[""] = payload()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.checker.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfigRejectsMissingSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory

	_, _, err := NewFromConfig(context.Background(), cfg, nil)
	require.True(t, errors.IsValidationError(err))

	cfg.Vendor.URL = "https://www.apple.com/shop/fulfillment-messages"
	cfg.Telegram.BotToken = "123:abc"
	_, _, err = NewFromConfig(context.Background(), cfg, nil)
	require.True(t, errors.IsValidationError(err), "recipients are required")

	cfg.Telegram.Recipients = []string{"111"}
	checker, closer, err := NewFromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, checker)
	require.NoError(t, closer.Close())
}

func TestRunResultJSON(t *testing.T) {
	b, err := json.Marshal(RunResult{Status: 200, Body: SuccessBody})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), `{"status":200,"body":"stockwatch executed successfully"`))
}
