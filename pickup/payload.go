/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pickup

import "encoding/json"

// The subset of the fulfillment-messages response that is read.

type response struct {
	Body *body `json:"body"`
}

type body struct {
	Content *content `json:"content"`
}

type content struct {
	PickupMessage *pickupMessage `json:"pickupMessage"`
}

type pickupMessage struct {
	Stores []store `json:"stores"`
}

type store struct {
	StoreName             string                      `json:"storeName"`
	StoreNumber           string                      `json:"storeNumber"`
	City                  string                      `json:"city"`
	StoreDistanceWithUnit string                      `json:"storeDistanceWithUnit"`
	Latitude              json.Number                 `json:"storelatitude"`
	Longitude             json.Number                 `json:"storelongitude"`
	Address               address                     `json:"address"`
	PartsAvailability     map[string]partAvailability `json:"partsAvailability"`
}

type address struct {
	PostalCode string `json:"postalCode"`
}

type partAvailability struct {
	PickupDisplay     string       `json:"pickupDisplay"`
	PickupSearchQuote string       `json:"pickupSearchQuote"`
	MessageTypes      messageTypes `json:"messageTypes"`
}

type messageTypes struct {
	Compact compactMessage `json:"compact"`
}

type compactMessage struct {
	StorePickupProductTitle string `json:"storePickupProductTitle"`
	StorePickupQuote        string `json:"storePickupQuote"`
}
