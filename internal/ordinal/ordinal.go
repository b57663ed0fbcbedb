// Package ordinal maintains the manual ordering key among sibling tasks.
//
// Ordinals are gap-based: siblings are spaced Step apart so that a drag
// between two neighbors only rewrites the moved record (midpoint insertion),
// never the whole sibling set. Ordinals are only comparable within one
// status bucket; cross-bucket comparison is undefined.
package ordinal

import (
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/ids"
)

// Step is the default spacing between freshly assigned ordinals. Wide enough
// that many midpoint insertions fit before a conflict repair is needed.
const Step = 1000

// Sibling pairs a record identifier with its ordinal within one status
// bucket. HasOrdinal is false when the source file carries no ordinal field.
type Sibling struct {
	ID         string
	Ordinal    float64
	HasOrdinal bool
}

// Drop computes the ordinal for movingID when dropped at targetIndex within
// siblings, which must be in current display order and must not contain the
// moving record itself. Only the moved record's ordinal changes.
func Drop(movingID string, targetIndex int, siblings []Sibling) float64 {
	_ = movingID // identity is the caller's bookkeeping; the math is positional

	if targetIndex < 0 {
		targetIndex = 0
	}

	if targetIndex > len(siblings) {
		targetIndex = len(siblings)
	}

	if len(siblings) == 0 {
		return 0
	}

	prev, hasPrev := neighborBefore(siblings, targetIndex)
	next, hasNext := neighborAfter(siblings, targetIndex)

	switch {
	case hasPrev && hasNext:
		return (prev + next) / 2
	case hasNext:
		return next - Step
	case hasPrev:
		return prev + Step
	default:
		return 0
	}
}

func neighborBefore(siblings []Sibling, index int) (float64, bool) {
	for i := index - 1; i >= 0; i-- {
		if siblings[i].HasOrdinal {
			return siblings[i].Ordinal, true
		}
	}

	return 0, false
}

func neighborAfter(siblings []Sibling, index int) (float64, bool) {
	for i := index; i < len(siblings); i++ {
		if siblings[i].HasOrdinal {
			return siblings[i].Ordinal, true
		}
	}

	return 0, false
}

// Change records a repaired ordinal for one sibling.
type Change struct {
	ID      string
	Ordinal float64
}

// ResolveConflicts repairs duplicate, non-monotonic, or missing ordinals.
//
// siblings must be in current display order. In the default mode the
// sequence is walked once and every ordinal that is not strictly greater
// than its predecessor is bumped to predecessor+Step; missing ordinals are
// conflicts and are filled the same way. With forceSequential every sibling
// is reassigned index*Step, discarding prior values. The returned changes
// cover only records whose ordinal actually changed, so writes stay bounded.
func ResolveConflicts(siblings []Sibling, forceSequential bool) []Change {
	var changes []Change

	if forceSequential {
		for i, sibling := range siblings {
			want := float64(i * Step)
			if !sibling.HasOrdinal || sibling.Ordinal != want {
				changes = append(changes, Change{ID: sibling.ID, Ordinal: want})
			}
		}

		return changes
	}

	havePrev := false
	prev := 0.0

	for _, sibling := range siblings {
		current := sibling.Ordinal
		conflicted := !sibling.HasOrdinal

		if havePrev && current <= prev {
			conflicted = true
		}

		if conflicted {
			if havePrev {
				current = prev + Step
			} else {
				current = 0
			}

			changes = append(changes, Change{ID: sibling.ID, Ordinal: current})
		}

		prev = current
		havePrev = true
	}

	return changes
}

// Less orders two siblings by ordinal ascending. Records without an ordinal
// sort after all records that have one; among themselves they keep their
// encounter order, which the caller guarantees by using a stable sort.
func Less(a, b Sibling) bool {
	if a.HasOrdinal != b.HasOrdinal {
		return a.HasOrdinal
	}

	if !a.HasOrdinal {
		return false
	}

	return a.Ordinal < b.Ordinal
}

// TieBreak compares two records for non-ordinal sorts: case-insensitive
// title first, then numeric identifier. Appended to any primary sort field
// this yields a total, deterministic order for any field combination.
// Records whose ID carries no numeric component for prefix compare by raw
// ID string instead.
func TieBreak(titleA, idA, titleB, idB, prefix string) int {
	ta := strings.ToLower(titleA)
	tb := strings.ToLower(titleB)

	if ta != tb {
		return strings.Compare(ta, tb)
	}

	numA, okA := ids.Numeric(idA, prefix)
	numB, okB := ids.Numeric(idB, prefix)

	if okA && okB {
		switch {
		case numA < numB:
			return -1
		case numA > numB:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(idA, idB)
}
