/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"
)

// ScanResult represents a single record in a scan with metadata
type ScanResult[T any] struct {
	Item  T        // The unmarshaled record
	Error error    // Item-specific error, if any
	Meta  ScanMeta // Metadata about this record
}

// ScanMeta contains metadata about a scanned record
type ScanMeta struct {
	Index      int64     // Record index in scan (0-based)
	PageNumber int       // Backend page number (1-based)
	Timestamp  time.Time // When the record was retrieved
}

// ScanOptions configures scan behavior
type ScanOptions struct {
	BufferSize      int                // Channel buffer size (default: 100)
	MaxRetries      int                // Retry attempts for transient errors (default: 3)
	RetryBackoff    time.Duration      // Backoff between retries (default: 1s)
	PageSize        int32              // Records per page (default: 100)
	ProgressHandler func(ScanProgress) // Optional progress callback
}

// ScanProgress tracks scan progress
type ScanProgress struct {
	ItemsProcessed int64     // Total records processed
	PagesProcessed int       // Total pages processed
	Errors         []error   // Accumulated non-fatal errors
	StartTime      time.Time // When scanning started
	CurrentRate    float64   // Records per second
}

// ScanOption is a functional option for configuring scans
type ScanOption func(*ScanOptions)

// DefaultScanOptions returns default scan options
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
}

// ApplyScanOptions returns the defaults with opts applied in order.
func ApplyScanOptions(opts ...ScanOption) ScanOptions {
	options := DefaultScanOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) ScanOption {
	return func(opts *ScanOptions) {
		opts.BufferSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) ScanOption {
	return func(opts *ScanOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) ScanOption {
	return func(opts *ScanOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithPageSize sets the page size
func WithPageSize(size int32) ScanOption {
	return func(opts *ScanOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(ScanProgress)) ScanOption {
	return func(opts *ScanOptions) {
		opts.ProgressHandler = handler
	}
}
