/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Records are stored in a single table keyed by the attributes of the type's registered
index map. Templates may reference record fields as macros; for availability records
the hash key is

	"ID": "{model}@{store_name}"

Put expands the macros from the record itself. GetOne and Delete take the already
expanded key string. A missing record is reported as errors.NotFoundError.

Scan pages through the table with retry on throttling:

	for res := range store.Scan(ctx,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	) {
	    if res.Error != nil {
	        return res.Error
	    }
	    fmt.Println(res.Item.ID)
	}

EnsureTable creates the table on first use, which is how a local DynamoDB endpoint is
bootstrapped.
*/
package ddb
