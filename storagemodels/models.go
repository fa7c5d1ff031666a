/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/stockwatch/registry"
)

// KeySeparator joins the model and store name into a record key.
const KeySeparator = "@"

// AvailabilityRecord is the persisted last-known availability for one (model, store) pair.
// Only Availability takes part in change detection; the rest is denormalized metadata.
type AvailabilityRecord struct {
	// ID is the composite "<model>@<store name>" key. Derived on Put when empty.
	ID string `dynamodbav:"ID" json:"id"`

	Model        string `dynamodbav:"model" json:"model"`
	StoreName    string `dynamodbav:"store_name" json:"storeName"`
	Availability string `dynamodbav:"availability" json:"availability"`

	StoreNumber string `dynamodbav:"store_number,omitempty" json:"storeNumber,omitempty"`
	City        string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	PostalCode  string `dynamodbav:"postal_code,omitempty" json:"postalCode,omitempty"`
	Distance    string `dynamodbav:"distance,omitempty" json:"distance,omitempty"`
	PartNumber  string `dynamodbav:"part_number,omitempty" json:"partNumber,omitempty"`
	Color       string `dynamodbav:"color,omitempty" json:"color,omitempty"`
	Storage     string `dynamodbav:"storage,omitempty" json:"storage,omitempty"`

	// UpdatedAt is an RFC3339 date-time.
	// Format: date-time
	UpdatedAt string `dynamodbav:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func init() {
	// Macros name the marshaled attributes, not the Go fields.
	registry.RegisterIndexMap[AvailabilityRecord](map[string]string{
		"ID": "{model}" + KeySeparator + "{store_name}",
	})
}

// RecordKey builds the composite key for a model at a store.
func RecordKey(model, storeName string) string {
	return model + KeySeparator + storeName
}

// Key returns the record's composite key.
func (r AvailabilityRecord) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return RecordKey(r.Model, r.StoreName)
}

// Touch stamps the record with t.
func (r *AvailabilityRecord) Touch(t time.Time) {
	r.UpdatedAt = strfmt.DateTime(t.UTC()).String()
}

// LastUpdated parses UpdatedAt. A record that was never stamped returns the zero time.
func (r AvailabilityRecord) LastUpdated() (time.Time, error) {
	if r.UpdatedAt == "" {
		return time.Time{}, nil
	}
	dt, err := strfmt.ParseDateTime(r.UpdatedAt)
	if err != nil {
		return time.Time{}, err
	}
	return time.Time(dt), nil
}

// IsAvailable reports whether the vendor marked the item as available for pickup.
func (r AvailabilityRecord) IsAvailable() bool {
	return r.Availability == AvailabilityAvailable
}

// AvailabilityAvailable is the vendor's pickup status for in-stock items.
const AvailabilityAvailable = "available"
