/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package pickup turns a store-pickup payload into flat per-store, per-model entries.
package pickup

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/suparena/stockwatch/errors"
	"github.com/suparena/stockwatch/storagemodels"
)

// DefaultShopURL is the base for buy links.
const DefaultShopURL = "https://www.apple.com/shop"

// StoreEntry is one model at one store as reported by a single fetch.
type StoreEntry struct {
	StoreName   string
	StoreNumber string
	City        string
	PostalCode  string
	Distance    string
	Latitude    string
	Longitude   string

	PartNumber   string
	Model        string
	Availability string
	Quote        string

	// Derived from the model title.
	Storage string
	Color   string
	Screen  string
	BuyURL  string
	MapsURL string
}

// Key is the composite state key for the entry.
func (e StoreEntry) Key() string {
	return storagemodels.RecordKey(e.Model, e.StoreName)
}

// IsAvailable reports whether the store can hand the item out.
func (e StoreEntry) IsAvailable() bool {
	return e.Availability == storagemodels.AvailabilityAvailable
}

// Record converts the entry to its persisted form.
func (e StoreEntry) Record() storagemodels.AvailabilityRecord {
	return storagemodels.AvailabilityRecord{
		ID:           e.Key(),
		Model:        e.Model,
		StoreName:    e.StoreName,
		Availability: e.Availability,
		StoreNumber:  e.StoreNumber,
		City:         e.City,
		PostalCode:   e.PostalCode,
		Distance:     e.Distance,
		PartNumber:   e.PartNumber,
		Color:        e.Color,
		Storage:      e.Storage,
	}
}

// Extractor decodes vendor payloads.
type Extractor struct {
	// ShopURL is the base for buy links; DefaultShopURL when empty.
	ShopURL string
	// Log receives warnings about skipped stores and parts. Nil discards them.
	Log *zap.Logger
}

// Extract returns one entry per store per part, stores in payload order and parts sorted by part number.
// Undecodable JSON or a payload without body.content.pickupMessage is an *errors.MalformedPayloadError.
// Stores without a name and parts without a product title are skipped with a warning.
func (x Extractor) Extract(payload []byte) ([]StoreEntry, error) {
	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, errors.NewMalformedPayloadError("$", err)
	}
	switch {
	case resp.Body == nil:
		return nil, errors.NewMalformedPayloadError("body", nil)
	case resp.Body.Content == nil:
		return nil, errors.NewMalformedPayloadError("body.content", nil)
	case resp.Body.Content.PickupMessage == nil:
		return nil, errors.NewMalformedPayloadError("body.content.pickupMessage", nil)
	}

	shop := x.ShopURL
	if shop == "" {
		shop = DefaultShopURL
	}

	log := x.Log
	if log == nil {
		log = zap.NewNop()
	}

	var entries []StoreEntry
	for i, st := range resp.Body.Content.PickupMessage.Stores {
		if st.StoreName == "" {
			log.Warn("skipping store without a name",
				zap.Int("index", i), zap.String("store_number", st.StoreNumber))
			continue
		}

		parts := make([]string, 0, len(st.PartsAvailability))
		for part := range st.PartsAvailability {
			parts = append(parts, part)
		}
		sort.Strings(parts)

		for _, part := range parts {
			details := st.PartsAvailability[part]
			title := strings.TrimSpace(details.MessageTypes.Compact.StorePickupProductTitle)
			if title == "" {
				log.Warn("skipping part without a product title",
					zap.String("store", st.StoreName), zap.String("part", part))
				continue
			}

			quote := details.PickupSearchQuote
			if quote == "" {
				quote = details.MessageTypes.Compact.StorePickupQuote
			}

			d := Derive(title, shop)
			entries = append(entries, StoreEntry{
				StoreName:    st.StoreName,
				StoreNumber:  st.StoreNumber,
				City:         st.City,
				PostalCode:   st.Address.PostalCode,
				Distance:     st.StoreDistanceWithUnit,
				Latitude:     st.Latitude.String(),
				Longitude:    st.Longitude.String(),
				PartNumber:   part,
				Model:        title,
				Availability: details.PickupDisplay,
				Quote:        quote,
				Storage:      d.Storage,
				Color:        d.Color,
				Screen:       d.Screen,
				BuyURL:       d.BuyURL,
				MapsURL:      MapsURL(st.Latitude.String(), st.Longitude.String()),
			})
		}
	}
	return entries, nil
}

// MapsURL links to the store's coordinates. Missing coordinates give an empty link.
func MapsURL(lat, lng string) string {
	if lat == "" || lng == "" {
		return ""
	}
	return fmt.Sprintf("https://maps.google.com/?q=%s,%s", lat, lng)
}

// Change is an entry whose availability differs from the recorded one.
// Previous is empty when the pair had no record.
type Change struct {
	StoreEntry
	Previous string
}
