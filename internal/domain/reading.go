package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Reading is a non-snowfall metric as the API reported it: a JSON number or
// string, stored with the same JSON type. A nil Reading is absent.
type Reading json.RawMessage

// TextReading returns a reading holding a string value.
func TextReading(s string) Reading {
	return Reading(strconv.Quote(s))
}

// NumberReading returns a reading holding a numeric value.
func NumberReading(v float64) Reading {
	return Reading(strconv.FormatFloat(v, 'f', -1, 64))
}

// newReading keeps a raw scalar from a product detail. Strings are trimmed;
// null, blank strings, objects and arrays are absent.
func newReading(raw json.RawMessage) Reading {
	text, ok := rawText(raw)
	if !ok {
		return nil
	}
	if bytes.TrimSpace(raw)[0] == '"' {
		return TextReading(text)
	}
	return Reading(text)
}

// IsAbsent reports whether no value was reported.
func (r Reading) IsAbsent() bool {
	return len(r) == 0
}

// Text returns the value as text: "20" for both 20 and "20", "" when absent.
func (r Reading) Text() string {
	text, _ := rawText(json.RawMessage(r))
	return text
}

// MarshalJSON encodes the reported value, or null when absent.
func (r Reading) MarshalJSON() ([]byte, error) {
	if r.IsAbsent() {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON accepts null or any JSON scalar.
func (r *Reading) UnmarshalJSON(data []byte) error {
	*r = newReading(data)
	return nil
}
