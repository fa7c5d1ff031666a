/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/stockwatch/storagemodels"
)

type DataStore[T any] interface {
	// GetOne returns errors.NotFoundError when no record exists for key.
	GetOne(ctx context.Context, key string) (*T, error)

	Put(ctx context.Context, entity T) error

	Delete(ctx context.Context, key string) error

	Scan(ctx context.Context, opts ...storagemodels.ScanOption) <-chan storagemodels.ScanResult[T]
}

// Collect drains a scan into a slice. It stops at the first item error.
func Collect[T any](ctx context.Context, ds DataStore[T], opts ...storagemodels.ScanOption) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []T
	for res := range ds.Scan(ctx, opts...) {
		if res.Error != nil {
			return out, res.Error
		}
		out = append(out, res.Item)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
