/*
Package datastore defines the core interface for stockwatch's state store.

The main interface is DataStore[T], which provides the operations the checker needs for any record type T:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    Delete(ctx context.Context, key string) error
	    Scan(ctx context.Context, opts ...storagemodels.ScanOption) <-chan storagemodels.ScanResult[T]
	}

Implementations:
  - ddb: DynamoDB implementation, one item per key in a hash-key-only table
  - sqlite: SQLite implementation for local runs
  - mock: In-memory mock implementation for testing and dry runs

Writes are last-write-wins per key; there is a single writer per table.
*/
package datastore
