// Package dates normalizes the date spellings found in task metadata.
//
// Task files written by different tool versions carry dates in several
// shapes. The canonical on-disk form is "YYYY-MM-DD", optionally followed
// by " HH:mm" when a time of day was recorded. Normalize converts the known
// legacy spellings into that form and passes everything else through
// unchanged, because an unparseable date must never break a read.
package dates

import (
	"strings"
	"time"
)

// Canonical layouts. The space-separated form is canonical; the T-separated
// form is accepted on read and rewritten.
const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02 15:04"

	layoutDateTimeT = "2006-01-02T15:04"
)

// legacyLayouts are two-digit-year, day-first forms produced by early
// versions. The century is assumed to be 20YY.
var legacyLayouts = []string{"02-01-06", "02/01/06", "02.01.06"} //nolint:gochecknoglobals // package-level constant

// Normalize converts raw into the canonical date form.
//
// It recognizes "YYYY-MM-DD", "YYYY-MM-DD HH:mm", "YYYY-MM-DDTHH:mm" and the
// legacy day-first forms "DD-MM-YY", "DD/MM/YY", "DD.MM.YY". The HH:mm
// component is preserved exactly when the input supplied one and is never
// fabricated when absent. Unrecognized input is returned unchanged with
// ok=false; Normalize never fails.
func Normalize(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return raw, false
	}

	if _, err := time.Parse(LayoutDate, value); err == nil {
		return value, true
	}

	if parsed, err := time.Parse(LayoutDateTime, value); err == nil {
		return parsed.Format(LayoutDateTime), true
	}

	if parsed, err := time.Parse(layoutDateTimeT, value); err == nil {
		return parsed.Format(LayoutDateTime), true
	}

	for _, layout := range legacyLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		// time.Parse maps two-digit years 00-68 to 20YY already, but be
		// explicit about the 20YY assumption for the full range.
		year := parsed.Year()
		if year < 2000 {
			parsed = parsed.AddDate(100, 0, 0)
		}

		return parsed.Format(LayoutDate), true
	}

	return raw, false
}

// Parse interprets a canonical date string. hasClock reports whether the
// value carried a time-of-day component. ok is false for anything Normalize
// would not recognize.
func Parse(value string) (t time.Time, hasClock, ok bool) {
	normalized, recognized := Normalize(value)
	if !recognized {
		return time.Time{}, false, false
	}

	if parsed, err := time.Parse(LayoutDateTime, normalized); err == nil {
		return parsed, true, true
	}

	parsed, err := time.Parse(LayoutDate, normalized)
	if err != nil {
		return time.Time{}, false, false
	}

	return parsed, false, true
}

// Now formats the current time in the canonical date+time form.
func Now() string {
	return time.Now().Format(LayoutDateTime)
}

// Today formats the current date in the canonical date-only form.
func Today() string {
	return time.Now().Format(LayoutDate)
}
