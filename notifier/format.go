/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notifier

import (
	"fmt"
	"strings"

	"github.com/suparena/stockwatch/pickup"
	"github.com/suparena/stockwatch/storagemodels"
)

const (
	iconAvailable   = "✅"
	iconUnavailable = "🚫"
)

// Icon returns the marker and upper-cased label for an availability string.
func Icon(availability string) (icon, label string) {
	if availability == storagemodels.AvailabilityAvailable {
		return iconAvailable, "AVAILABLE"
	}
	return iconUnavailable, strings.ToUpper(availability)
}

// FormatChange renders one change as a chat message.
func FormatChange(c pickup.Change) string {
	icon, label := Icon(c.Availability)
	return fmt.Sprintf("📱 %s\n🏰 %s (%s)\n📍 %s\n🗺️ %s\n\n%s **%s**\n\n🛒 %s",
		c.Model, c.StoreName, c.PostalCode, c.Distance, c.MapsURL, icon, label, c.BuyURL)
}

// ConsoleLine is the one-line summary logged for every entry seen.
func ConsoleLine(e pickup.StoreEntry) string {
	icon, _ := Icon(e.Availability)
	return fmt.Sprintf("%s %s @ %s is %s", icon, e.Model, e.PostalCode, e.Availability)
}

// FormatError renders a failure notice.
func FormatError(location string, err error) string {
	if location == "" {
		return fmt.Sprintf("⚠️ stockwatch check failed\n\n%v", err)
	}
	return fmt.Sprintf("⚠️ stockwatch check failed for %s\n\n%v", location, err)
}
