/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stockwatch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/stockwatch/config"
	"github.com/suparena/stockwatch/datastore"
	"github.com/suparena/stockwatch/datastore/ddb"
	"github.com/suparena/stockwatch/datastore/mock"
	"github.com/suparena/stockwatch/datastore/sqlite"
	"github.com/suparena/stockwatch/storagemodels"
)

// StateStore is a closable availability datastore.
type StateStore interface {
	datastore.DataStore[storagemodels.AvailabilityRecord]
	io.Closer
}

// TableInitializer is implemented by backends that can create their own table.
type TableInitializer interface {
	EnsureTable(ctx context.Context, maxWait time.Duration) (bool, error)
}

// Opener creates a state store from configuration.
type Opener func(ctx context.Context, cfg *config.Config, log *zap.Logger) (StateStore, error)

// Backends maps backend names to openers. It is safe for concurrent use.
type Backends struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewBackends returns a registry with the dynamodb, sqlite and memory backends.
func NewBackends() *Backends {
	b := &Backends{openers: make(map[string]Opener)}
	_ = b.Register(config.BackendDynamoDB, openDynamoDB)
	_ = b.Register(config.BackendSQLite, openSQLite)
	_ = b.Register(config.BackendMemory, openMemory)
	return b
}

// DefaultBackends is used by OpenStateStore.
var DefaultBackends = NewBackends()

// Register adds an opener under name.
func (b *Backends) Register(name string, open Opener) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.openers[name]; exists {
		return fmt.Errorf("backend %q already registered", name)
	}
	b.openers[name] = open
	return nil
}

// Open creates the store for cfg.Store.Backend.
func (b *Backends) Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (StateStore, error) {
	b.mu.RLock()
	open, exists := b.openers[cfg.Store.Backend]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q not registered", cfg.Store.Backend)
	}
	return open(ctx, cfg, log)
}

// List returns the registered backend names, sorted.
func (b *Backends) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.openers))
	for name := range b.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenStateStore opens the configured backend from DefaultBackends.
func OpenStateStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (StateStore, error) {
	return DefaultBackends.Open(ctx, cfg, log)
}

func openDynamoDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (StateStore, error) {
	store, err := ddb.Open[storagemodels.AvailabilityRecord](ctx, cfg.DynamoDBOptions(), cfg.Store.TableName, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, log *zap.Logger) (StateStore, error) {
	store, err := sqlite.Open(ctx, cfg.SQLiteOptions(), log)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openMemory(context.Context, *config.Config, *zap.Logger) (StateStore, error) {
	return mock.NewAvailabilityStore(), nil
}
