/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package notifier formats availability changes and delivers them to chat recipients.
package notifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/suparena/stockwatch/pickup"
)

// Sender delivers one text message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Config controls batching and delivery.
type Config struct {
	Recipients       []string
	MaxMessageLength int
	// RatePerSecond and Burst shape the outbound token bucket; RatePerSecond <= 0 disables it.
	RatePerSecond   float64
	Burst           int
	SnapshotEnabled bool
	NotifyErrors    bool
}

// SendFailure records a message that could not be delivered.
type SendFailure struct {
	Recipient string
	Chunk     int
	Err       error
}

func (f SendFailure) Error() string {
	return fmt.Sprintf("send chunk %d to %s: %v", f.Chunk, f.Recipient, f.Err)
}

// Report summarizes one broadcast.
type Report struct {
	Chunks   int
	Sent     int
	Failures []SendFailure
}

// Err joins the delivery failures, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return stderrors.Join(errs...)
}

// Notifier batches messages and broadcasts them to every recipient.
type Notifier struct {
	sender  Sender
	cfg     Config
	limiter *rate.Limiter
	log     *zap.Logger
}

// New creates a Notifier on top of sender.
func New(sender Sender, cfg Config, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = DefaultMaxMessageLength
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Notifier{
		sender:  sender,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     log,
	}
}

// Compose builds the outbound chunks for changes. The snapshot of available entries is appended
// when enabled. No changes means no chunks.
func (n *Notifier) Compose(changes []pickup.Change, seen []pickup.StoreEntry) []string {
	if len(changes) == 0 {
		return nil
	}
	messages := make([]string, 0, len(changes)+1)
	for _, c := range changes {
		messages = append(messages, FormatChange(c))
	}
	if n.cfg.SnapshotEnabled {
		messages = append(messages, snapshotMessages(SnapshotTable(seen), n.cfg.MaxMessageLength)...)
	}
	return Pack(messages, n.cfg.MaxMessageLength)
}

// Notify sends the composed chunks for changes to every recipient.
// Delivery failures are collected in the report; the returned error is only set when ctx ends.
func (n *Notifier) Notify(ctx context.Context, changes []pickup.Change, seen []pickup.StoreEntry) (Report, error) {
	return n.broadcast(ctx, n.Compose(changes, seen))
}

// NotifyError sends a best-effort failure notice when error notifications are enabled.
func (n *Notifier) NotifyError(ctx context.Context, location string, cause error) (Report, error) {
	if !n.cfg.NotifyErrors || cause == nil {
		return Report{}, nil
	}
	return n.broadcast(ctx, SplitText(FormatError(location, cause), n.cfg.MaxMessageLength))
}

func (n *Notifier) broadcast(ctx context.Context, chunks []string) (Report, error) {
	report := Report{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	for i, chunk := range chunks {
		for _, recipient := range n.cfg.Recipients {
			recipient = strings.TrimSpace(recipient)
			if recipient == "" {
				continue
			}
			if err := n.limiter.Wait(ctx); err != nil {
				return report, fmt.Errorf("rate limiter: %w", err)
			}
			if err := n.sender.Send(ctx, recipient, chunk); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				n.log.Warn("failed to deliver message",
					zap.String("recipient", recipient), zap.Int("chunk", i), zap.Error(err))
				report.Failures = append(report.Failures, SendFailure{Recipient: recipient, Chunk: i, Err: err})
				continue
			}
			report.Sent++
		}
	}

	n.log.Info("notifications sent",
		zap.Int("chunks", report.Chunks),
		zap.Int("sent", report.Sent),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}
