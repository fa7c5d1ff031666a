/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"encoding/json"
	"strings"
)

// StringList accepts either a JSON array of strings or a single comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = splitList(strings.TrimSpace(one))
	return nil
}

// Event is the invocation payload of the Lambda entry point.
type Event struct {
	AppleURL   string     `json:"apple_url"`
	BotToken   string     `json:"bot_token"`
	Recipients StringList `json:"recipients"`
	ZipCodes   StringList `json:"zip_codes"`
	Parts      StringList `json:"parts"`
}

// ApplyEvent overrides the configuration with the non-empty fields of e.
func (c *Config) ApplyEvent(e Event) {
	if e.AppleURL != "" {
		c.Vendor.URL = e.AppleURL
	}
	if e.BotToken != "" {
		c.Telegram.BotToken = e.BotToken
	}
	if len(e.Recipients) > 0 {
		c.Telegram.Recipients = e.Recipients
	}
	if len(e.ZipCodes) > 0 {
		c.Vendor.ZipCodes = e.ZipCodes
	}
	if len(e.Parts) > 0 {
		c.Vendor.Parts = e.Parts
	}
}

// Received lists which payload fields were set, for logging without leaking values.
func (e Event) Received() []string {
	var got []string
	if e.AppleURL != "" {
		got = append(got, "apple_url")
	}
	if e.BotToken != "" {
		got = append(got, "bot_token")
	}
	if len(e.Recipients) > 0 {
		got = append(got, "recipients")
	}
	if len(e.ZipCodes) > 0 {
		got = append(got, "zip_codes")
	}
	if len(e.Parts) > 0 {
		got = append(got, "parts")
	}
	return got
}
