/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite keeps availability records in a local SQLite file.
// It is the state backend for runs without DynamoDB.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/suparena/stockwatch/errors"
	"github.com/suparena/stockwatch/storagemodels"
)

//go:embed schema.sql
var schema string

const columns = `id, model, store_name, availability, store_number, city, postal_code,
	distance, part_number, color, storage, updated_at`

// Store implements datastore.DataStore[storagemodels.AvailabilityRecord].
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Options configures the SQLite connection.
type Options struct {
	Path        string
	BusyTimeout time.Duration
}

// Open opens (and creates if needed) the database at opts.Path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errors.NewValidationError("sqlite_path", "sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and avoids writer contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if opts.BusyTimeout > 0 {
		_, _ = db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds()))
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	log.Debug("sqlite state store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (storagemodels.AvailabilityRecord, error) {
	var r storagemodels.AvailabilityRecord
	var storeNumber, city, postal, distance, part, color, storage, updated sql.NullString
	err := row.Scan(&r.ID, &r.Model, &r.StoreName, &r.Availability,
		&storeNumber, &city, &postal, &distance, &part, &color, &storage, &updated)
	if err != nil {
		return r, err
	}
	r.StoreNumber = storeNumber.String
	r.City = city.String
	r.PostalCode = postal.String
	r.Distance = distance.String
	r.PartNumber = part.String
	r.Color = color.String
	r.Storage = storage.String
	r.UpdatedAt = updated.String
	return r, nil
}

// GetOne returns the record stored under key, or errors.NotFoundError.
func (s *Store) GetOne(ctx context.Context, key string) (*storagemodels.AvailabilityRecord, error) {
	if key == "" {
		return nil, errors.NewValidationError("key", "key is required")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM availability WHERE id = ?`, key)
	r, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("AvailabilityRecord", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return &r, nil
}

// Put inserts or replaces the record under its composite key.
func (s *Store) Put(ctx context.Context, r storagemodels.AvailabilityRecord) error {
	if r.Model == "" || r.StoreName == "" {
		return errors.NewValidationError("key", "model and store name are required")
	}
	r.ID = r.Key()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability(`+columns+`)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   model=excluded.model, store_name=excluded.store_name, availability=excluded.availability,
		   store_number=excluded.store_number, city=excluded.city, postal_code=excluded.postal_code,
		   distance=excluded.distance, part_number=excluded.part_number, color=excluded.color,
		   storage=excluded.storage, updated_at=excluded.updated_at`,
		r.ID, r.Model, r.StoreName, r.Availability,
		nullStr(r.StoreNumber), nullStr(r.City), nullStr(r.PostalCode), nullStr(r.Distance),
		nullStr(r.PartNumber), nullStr(r.Color), nullStr(r.Storage), nullStr(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Delete removes the record under key. A missing record is errors.NotFoundError.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM availability WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("AvailabilityRecord", key)
	}
	return nil
}

// Scan streams all records ordered by key.
func (s *Store) Scan(ctx context.Context, opts ...storagemodels.ScanOption) <-chan storagemodels.ScanResult[storagemodels.AvailabilityRecord] {
	options := storagemodels.ApplyScanOptions(opts...)
	out := make(chan storagemodels.ScanResult[storagemodels.AvailabilityRecord], options.BufferSize)

	go func() {
		defer close(out)
		start := time.Now()

		send := func(res storagemodels.ScanResult[storagemodels.AvailabilityRecord]) bool {
			select {
			case <-ctx.Done():
				return false
			case out <- res:
				return true
			}
		}

		// rows are drained before sending so a slow consumer never pins the only connection
		records, err := s.readAll(ctx)
		if err != nil {
			send(storagemodels.ScanResult[storagemodels.AvailabilityRecord]{Error: fmt.Errorf("scan failed: %w", err)})
			return
		}

		var index int64
		for _, r := range records {
			res := storagemodels.ScanResult[storagemodels.AvailabilityRecord]{
				Item: r,
				Meta: storagemodels.ScanMeta{
					Index:      index,
					PageNumber: int(index/int64(max(options.PageSize, 1))) + 1,
					Timestamp:  time.Now(),
				},
			}
			index++
			if !send(res) {
				return
			}
		}

		if options.ProgressHandler != nil {
			p := storagemodels.ScanProgress{
				ItemsProcessed: index,
				PagesProcessed: int(index/int64(max(options.PageSize, 1))) + 1,
				StartTime:      start,
			}
			if elapsed := time.Since(start).Seconds(); elapsed > 0 {
				p.CurrentRate = float64(index) / elapsed
			}
			options.ProgressHandler(p)
		}
	}()

	return out
}

func (s *Store) readAll(ctx context.Context) ([]storagemodels.AvailabilityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM availability ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storagemodels.AvailabilityRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
