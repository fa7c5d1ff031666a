/*
Package storagemodels defines the data structures shared by the state store backends.

Key Types:

AvailabilityRecord:
The last observed availability of one model at one store. The record key is the
composite "<model>@<store name>":

	rec := AvailabilityRecord{
	    Model:        "iPhone 15 Pro Max 1TB Natural Titanium",
	    StoreName:    "Fifth Avenue",
	    Availability: "available",
	}
	rec.Key() // "iPhone 15 Pro Max 1TB Natural Titanium@Fifth Avenue"

ScanResult:
Results from scanning a backend, with metadata:

	type ScanResult[T any] struct {
	    Item  T        // The typed record
	    Error error    // Item-specific error, if any
	    Meta  ScanMeta // Metadata about this item
	}

ScanOptions:
Configuration for scan behavior:

	opts := []ScanOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}

These types provide a consistent interface across the DynamoDB, SQLite and mock backends.
*/
package storagemodels
