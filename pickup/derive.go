/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pickup

import (
	"fmt"
	"strings"
)

// Derived holds the fields read off a product title.
type Derived struct {
	Family  string // e.g. "iphone-15-pro"
	Storage string // e.g. "256gb"
	Color   string // e.g. "natural-titanium"
	Screen  string // "6.7-inch" or "6.1-inch"
	BuyURL  string
}

const (
	familyTokens = 3
	storageToken = 4
	colorToken   = 5
)

// Derive splits a title such as "iPhone 15 Pro Max 256GB Natural Titanium" on whitespace and reads
// storage from the fifth token and color from the sixth onwards. The positions are fixed, so titles
// laid out differently yield odd values; titles too short to split leave the fields empty.
func Derive(title, shopURL string) Derived {
	tokens := strings.Fields(title)
	var d Derived
	if len(tokens) <= colorToken {
		return d
	}

	d.Family = strings.ToLower(strings.Join(tokens[:familyTokens], "-"))
	d.Storage = strings.ToLower(tokens[storageToken])
	d.Color = strings.ToLower(strings.Join(tokens[colorToken:], "-"))
	d.Screen = "6.1-inch"
	if strings.Contains(title, "Pro Max") {
		d.Screen = "6.7-inch"
	}
	d.BuyURL = fmt.Sprintf("%s/buy-iphone/%s/%s-display-%s-%s-unlocked",
		strings.TrimSuffix(shopURL, "/"), d.Family, d.Screen, d.Storage, d.Color)
	return d
}
