/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stockwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/stockwatch/datastore"
	"github.com/suparena/stockwatch/errors"
	"github.com/suparena/stockwatch/fetcher"
	"github.com/suparena/stockwatch/notifier"
	"github.com/suparena/stockwatch/pickup"
	"github.com/suparena/stockwatch/storagemodels"
)

// SuccessBody is the body of a completed run's result.
const SuccessBody = "stockwatch executed successfully"

// Fetcher returns the raw vendor payload for one location.
type Fetcher interface {
	Fetch(ctx context.Context, req fetcher.Request) ([]byte, error)
}

// Notifier delivers changes and failure notices.
type Notifier interface {
	Notify(ctx context.Context, changes []pickup.Change, seen []pickup.StoreEntry) (notifier.Report, error)
	NotifyError(ctx context.Context, location string, cause error) (notifier.Report, error)
}

// Options controls a run.
type Options struct {
	// Locations are ZIP codes; a single "" uses the vendor URL unchanged.
	Locations    []string
	Parts        []string
	Passes       int
	PassInterval time.Duration
}

// RunResult summarizes a run. Status and Body mirror the Lambda response.
type RunResult struct {
	Status        int    `json:"status"`
	Body          string `json:"body"`
	RunID         string `json:"runId"`
	Passes        int    `json:"passes"`
	Entries       int    `json:"entries"`
	Changes       int    `json:"changes"`
	MessagesSent  int    `json:"messagesSent"`
	SendFailures  int    `json:"sendFailures"`
	FetchFailures int    `json:"fetchFailures"`
}

// Checker runs fetch → parse → diff → persist → notify passes.
// A Checker is not safe for concurrent runs.
type Checker struct {
	fetcher   Fetcher
	extractor pickup.Extractor
	store     datastore.DataStore[storagemodels.AvailabilityRecord]
	notifier  Notifier
	opts      Options
	log       *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewChecker creates a Checker. Passes below one run once and no locations means the vendor URL as is.
func NewChecker(
	f Fetcher,
	x pickup.Extractor,
	store datastore.DataStore[storagemodels.AvailabilityRecord],
	n Notifier,
	opts Options,
	log *zap.Logger,
) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Passes < 1 {
		opts.Passes = 1
	}
	if len(opts.Locations) == 0 {
		opts.Locations = []string{""}
	}
	return &Checker{
		fetcher:   f,
		extractor: x,
		store:     store,
		notifier:  n,
		opts:      opts,
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Run performs the configured passes. Fetch failures are logged, reported and skipped;
// malformed payloads and state store failures abort the run.
func (c *Checker) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()}
	log := c.log.With(zap.String("run_id", result.RunID))
	start := c.now()

	for pass := 1; pass <= c.opts.Passes; pass++ {
		if pass > 1 {
			log.Debug("waiting before next pass", zap.Duration("interval", c.opts.PassInterval))
			if err := c.sleep(ctx, c.opts.PassInterval); err != nil {
				return result, err
			}
		}

		if err := c.runPass(ctx, log.With(zap.Int("pass", pass)), &result); err != nil {
			log.Error("check run failed", zap.Int("pass", pass), zap.Error(err))
			return result, err
		}
		result.Passes++
	}

	result.Status = 200
	result.Body = SuccessBody
	log.Info("check run complete",
		zap.Int("passes", result.Passes),
		zap.Int("entries", result.Entries),
		zap.Int("changes", result.Changes),
		zap.Int("messages_sent", result.MessagesSent),
		zap.Int("fetch_failures", result.FetchFailures),
		zap.Duration("took", c.now().Sub(start)))
	return result, nil
}

func (c *Checker) runPass(ctx context.Context, log *zap.Logger, result *RunResult) error {
	var seen []pickup.StoreEntry
	keys := make(map[string]struct{})

	for _, location := range c.opts.Locations {
		body, err := c.fetcher.Fetch(ctx, fetcher.Request{Location: location, Parts: c.opts.Parts})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result.FetchFailures++
			log.Error("fetch failed, skipping location",
				zap.String("location", location),
				zap.Bool("transient", errors.IsTransient(err)),
				zap.Error(err))
			report, nerr := c.notifier.NotifyError(ctx, location, err)
			if nerr != nil {
				return nerr
			}
			result.MessagesSent += report.Sent
			result.SendFailures += len(report.Failures)
			continue
		}

		entries, err := c.extractor.Extract(body)
		if err != nil {
			return fmt.Errorf("location %q: %w", location, err)
		}
		for _, e := range entries {
			if _, dup := keys[e.Key()]; dup {
				continue
			}
			keys[e.Key()] = struct{}{}
			seen = append(seen, e)
			log.Info(notifier.ConsoleLine(e))
		}
	}
	result.Entries += len(seen)

	changes, err := Diff(ctx, c.store, seen, c.now())
	if err != nil {
		return err
	}
	result.Changes += len(changes)
	if len(changes) == 0 {
		log.Debug("no availability changes")
		return nil
	}

	report, err := c.notifier.Notify(ctx, changes, seen)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	result.MessagesSent += report.Sent
	result.SendFailures += len(report.Failures)
	return nil
}

// Diff compares entries with the recorded availability, writes the entries whose availability
// differs (or that have no record) and returns them as changes, in entry order.
// Entries must already be unique by key.
func Diff(
	ctx context.Context,
	store datastore.DataStore[storagemodels.AvailabilityRecord],
	entries []pickup.StoreEntry,
	now time.Time,
) ([]pickup.Change, error) {
	var changes []pickup.Change
	for _, e := range entries {
		prev, err := store.GetOne(ctx, e.Key())
		if err != nil && !errors.IsNotFound(err) {
			return changes, fmt.Errorf("failed to read state for %s: %w", e.Key(), err)
		}

		previous := ""
		if prev != nil {
			if prev.Availability == e.Availability {
				continue
			}
			previous = prev.Availability
		}

		rec := e.Record()
		rec.Touch(now)
		if err := store.Put(ctx, rec); err != nil {
			return changes, fmt.Errorf("failed to write state for %s: %w", e.Key(), err)
		}
		changes = append(changes, pickup.Change{StoreEntry: e, Previous: previous})
	}
	return changes, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
