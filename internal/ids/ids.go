// Package ids mints human-readable task identifiers.
//
// IDs have the form "<PREFIX>-<N>" with optional hierarchical sub-IDs
// "<PREFIX>-<N>.<M>". Allocation is pure over a snapshot of the identifiers
// already in use: there is no shared counter, so the caller decides the
// snapshot scope and any locking.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPrefix is used when the configuration does not name one.
const DefaultPrefix = "TASK"

// NextID returns the next free identifier for prefix given the identifiers
// that already exist. The numeric component is max+1 across all existing
// IDs whose prefix matches case-insensitively; gaps are never backfilled.
// When zeroPadded is set, the number is padded to the widest zero-padded
// width observed among the existing IDs (minimum two digits).
func NextID(existing []string, prefix string, zeroPadded bool) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	maxSeen := 0
	padWidth := 2

	for _, id := range existing {
		number, raw, ok := splitID(id, prefix)
		if !ok {
			continue
		}

		if number > maxSeen {
			maxSeen = number
		}

		if len(raw) > 1 && raw[0] == '0' && len(raw) > padWidth {
			padWidth = len(raw)
		}
	}

	next := maxSeen + 1
	if zeroPadded {
		return fmt.Sprintf("%s-%0*d", prefix, padWidth, next)
	}

	return fmt.Sprintf("%s-%d", prefix, next)
}

// NextSubtaskID returns the next free dot-suffixed child of parentID, e.g.
// "TASK-7" with children "TASK-7.1", "TASK-7.3" yields "TASK-7.4". The first
// child is ".1". Matching on the parent is case-insensitive like NextID.
func NextSubtaskID(existing []string, parentID string) string {
	maxChild := 0
	lowerParent := strings.ToLower(parentID) + "."

	for _, id := range existing {
		if len(id) <= len(lowerParent) {
			continue
		}

		if !strings.EqualFold(id[:len(lowerParent)], lowerParent) {
			continue
		}

		suffix := id[len(lowerParent):]

		// Only direct children count; "TASK-7.1.2" is a grandchild.
		number, err := strconv.Atoi(suffix)
		if err != nil || number <= 0 {
			continue
		}

		if number > maxChild {
			maxChild = number
		}
	}

	return fmt.Sprintf("%s.%d", parentID, maxChild+1)
}

// Numeric extracts the top-level numeric component of id for prefix, for
// numeric sorting. ok is false when id does not carry the prefix or a
// number.
func Numeric(id, prefix string) (int, bool) {
	number, _, ok := splitID(id, prefix)

	return number, ok
}

// splitID returns the numeric component of a "<prefix>-<N>" or
// "<prefix>-<N>.<M>" identifier. Sub-ID suffixes are ignored for top-level
// allocation.
func splitID(id, prefix string) (int, string, bool) {
	if len(id) < len(prefix)+2 {
		return 0, "", false
	}

	if !strings.EqualFold(id[:len(prefix)], prefix) || id[len(prefix)] != '-' {
		return 0, "", false
	}

	raw := id[len(prefix)+1:]
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		raw = raw[:dot]
	}

	number, err := strconv.Atoi(raw)
	if err != nil || number < 0 {
		return 0, "", false
	}

	return number, raw, true
}
