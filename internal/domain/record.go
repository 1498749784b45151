// Package domain models the open-schema JSON objects exchanged with the
// upstream APIs. Upstream payloads carry fields we do not know about; Record
// keeps them intact so they pass through to the overlay response unchanged.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one JSON object from an upstream: a profile, a channel-status
// document, or a leaderboard row.
type Record map[string]any

// FromAny converts a decoded JSON value into a Record.
func FromAny(v any) (Record, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Record(m), ok
}

// Clone returns a shallow copy. Enrichment always writes to a copy; the
// decoded upstream objects are never mutated in place.
func (r Record) Clone() Record {
	out := make(Record, len(r)+8)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Str returns the value under key as a string, or "" when the key is absent
// or holds a non-string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Number returns the value under key normalized to a float64. JSON numbers
// decode as float64, but upstream sources have been seen sending numeric
// strings too.
func (r Record) Number(key string) (float64, bool) {
	return ToNumber(r[key])
}

// First returns the first non-empty value among keys, in priority order.
// A value is empty when the key is absent, nil, or an empty string.
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// At returns the Record nested under key, if any.
func (r Record) At(key string) (Record, bool) {
	return FromAny(r[key])
}

// Bool returns the boolean under key; absent or non-boolean means false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// ToNumber normalizes a decoded JSON value to a float64.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Normalize folds a value to a trimmed, lowercased string for identity
// comparison. nil becomes "".
func Normalize(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Field precedence used when assembling the overlay payload: the first key
// with a non-empty value wins.
var (
	RankKeys = []string{
		"display_rank",
		"leaderboard_ranking_live",
		"leaderboard_position",
		"leaderboard_ranking",
		"rank",
		"position",
	}

	ScanKeys = []string{
		"rfids_scanned",
		"rfids",
		"rfid_count",
	}

	UsernameKeys = []string{
		"username",
		"name",
		"kick_slug",
	}
)
