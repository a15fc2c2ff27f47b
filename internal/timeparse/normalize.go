// Package timeparse is the single place where raw timestamp strings from the
// store are turned into instants. Manifest rows carry a mix of machine
// timestamps and operator-typed local-format strings, and every view must
// decode them identically, so all call sites go through Normalize.
package timeparse

import (
	"strings"
	"time"
)

// Layout is the canonical local rendering of an instant: day first, then
// month. Pinning day-before-month here matters; a generic parse silently
// swaps day and month for values like 03/04/2024.
const Layout = "02/01/2006 15:04"

// Placeholder is rendered for missing instants and accepted back as one.
const Placeholder = "-"

// localLayouts are tried first, most specific first.
var localLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// genericLayouts are the best-effort fallback for machine-readable values.
var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize parses a raw timestamp into an instant. Sentinel inputs (empty
// string, placeholder dashes) and unparseable values map to nil, never to an
// error; callers must treat nil as "unknown", not "zero duration".
func Normalize(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "--" {
		return nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}

	return nil
}

// Format renders an instant in the canonical local layout, or the
// placeholder for a missing one. Format(Normalize(s)) is stable for any
// valid DD/MM/YYYY HH:MM input.
func Format(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.Format(Layout)
}

// FormatFull renders an instant including seconds, for audit timestamps.
func FormatFull(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.Format("02/01/2006 15:04:05")
}
