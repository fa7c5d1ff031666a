/*
Package registry manages index mapping for stockwatch's state store.

An index map associates a Go type with the key attributes a backend derives from it.
Templates use macros that name marshaled attributes:

	registry.RegisterIndexMap[AvailabilityRecord](map[string]string{
	    "ID": "{model}@{store_name}",
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
