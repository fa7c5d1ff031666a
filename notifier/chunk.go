/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notifier

import (
	"strings"
	"unicode/utf16"
)

// DefaultMaxMessageLength stays under Telegram's 4096 code unit limit.
const DefaultMaxMessageLength = 4000

const messageSeparator = "\n\n"

// SplitText breaks s into pieces of at most limit UTF-16 code units, preferring to cut after a newline.
// Telegram measures message length in UTF-16 code units, so emoji outside the BMP count twice.
func SplitText(s string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxMessageLength
	}
	if TextLen(s) <= limit {
		return []string{s}
	}

	rs := []rune(s)
	var out []string
	start := 0
	for start < len(rs) {
		end, units := start, 0
		for end < len(rs) {
			w := runeUnits(rs[end])
			if units+w > limit {
				break
			}
			units += w
			end++
		}
		if end == start {
			// a surrogate pair with limit 1
			end++
		}

		if end < len(rs) {
			u := units
			for i := end - 1; i > start; i-- {
				u -= runeUnits(rs[i])
				// skip cuts that would leave a tiny chunk
				if rs[i] == '\n' && u >= limit/3 {
					end = i + 1
					break
				}
			}
		}

		out = append(out, string(rs[start:end]))
		start = end
	}
	return out
}

// TextLen is the length of s in UTF-16 code units.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Pack joins messages greedily into chunks separated by a blank line.
// A message that does not fit in an empty chunk is split on its own.
// No chunk is longer than limit UTF-16 code units.
func Pack(messages []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxMessageLength
	}
	sepLen := TextLen(messageSeparator)

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, msg := range messages {
		n := TextLen(msg)
		if n == 0 {
			continue
		}
		if n > limit {
			flush()
			chunks = append(chunks, SplitText(msg, limit)...)
			continue
		}
		if curLen > 0 && curLen+sepLen+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(messageSeparator)
			curLen += sepLen
		}
		cur.WriteString(msg)
		curLen += n
	}
	flush()
	return chunks
}
