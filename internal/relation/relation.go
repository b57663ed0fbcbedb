// Package relation computes dependency and parent/child links over a
// caller-supplied set of task records.
//
// The resolver is a pure function of (focal identifier, context set,
// terminal-status set). It holds no state and never touches storage, so the
// same code resolves links for the local working set and for read-only
// snapshots of another branch — cross-context resolution is just a matter
// of which set the caller handed in.
package relation

import (
	"strings"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

// Record is one entry of a context set. Origin names the snapshot the
// record came from (empty for the local set); parent lookups prefer records
// from the focal record's own origin so a cross-branch record never
// resolves its parent into a foreign snapshot.
type Record struct {
	Task   task.Task
	Origin string
}

// Set is an identifier-indexed context set. Build one with NewSet; the
// zero value is an empty set.
type Set struct {
	records []Record
	byID    map[string][]int
}

// NewSet indexes records by identifier. Duplicate identifiers across
// origins are expected (the same task seen on two branches); within one
// origin they should not happen but are tolerated, first one wins on
// origin-scoped lookup.
func NewSet(records []Record) *Set {
	set := &Set{
		records: records,
		byID:    make(map[string][]int, len(records)),
	}

	for i, record := range records {
		key := foldID(record.Task.ID)
		set.byID[key] = append(set.byID[key], i)
	}

	return set
}

// Lookup finds a record by identifier, preferring the given origin and
// falling back to any origin.
func (s *Set) Lookup(id, origin string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}

	indices := s.byID[foldID(id)]
	if len(indices) == 0 {
		return Record{}, false
	}

	for _, idx := range indices {
		if s.records[idx].Origin == origin {
			return s.records[idx], true
		}
	}

	return s.records[indices[0]], true
}

func foldID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// TerminalSet is the configured set of "done-like" statuses. A dependency
// whose record is in a terminal status does not block.
type TerminalSet map[string]struct{}

// NewTerminalSet folds status names case-insensitively.
func NewTerminalSet(statuses []string) TerminalSet {
	set := make(TerminalSet, len(statuses))
	for _, status := range statuses {
		set[strings.ToLower(strings.TrimSpace(status))] = struct{}{}
	}

	return set
}

// Contains reports whether status is terminal.
func (ts TerminalSet) Contains(status string) bool {
	_, ok := ts[strings.ToLower(strings.TrimSpace(status))]

	return ok
}

// Link is one resolved dependency edge. Missing means no record with that
// identifier exists in the context set; Resolved is nil in that case.
// A link with a resolved but non-terminal record still blocks — the two
// cases are distinguished so callers can render them differently.
type Link struct {
	ID       string
	Missing  bool
	Resolved *task.Task
}

// Blocks reports whether this edge blocks the focal record given the
// terminal-status set.
func (l Link) Blocks(terminal TerminalSet) bool {
	if l.Missing {
		return true
	}

	return !terminal.Contains(l.Resolved.Status)
}

// Relations is the full resolution result for one focal record.
type Relations struct {
	BlockedBy []Link
	IsBlocked bool
	Blocks    []task.Task
	Parent    *task.Task
	Children  []task.Task
}

// Resolve computes the bidirectional links of the focal record within set.
// The focal record itself must be part of the set; when it is not, the
// result is empty.
func Resolve(focalID string, set *Set, terminal TerminalSet) Relations {
	var out Relations

	focal, ok := set.Lookup(focalID, "")
	if !ok {
		return out
	}

	return ResolveRecord(focal, set, terminal)
}

// ResolveRecord is Resolve for a record already in hand, preserving its
// origin for same-snapshot lookups.
func ResolveRecord(focal Record, set *Set, terminal TerminalSet) Relations {
	var out Relations

	// blockedBy: one link per dependency, in declaration order.
	for _, depID := range focal.Task.Dependencies {
		resolved, found := set.Lookup(depID, focal.Origin)

		link := Link{ID: depID, Missing: !found}
		if found {
			resolvedTask := resolved.Task
			link.Resolved = &resolvedTask
		}

		out.BlockedBy = append(out.BlockedBy, link)

		if link.Blocks(terminal) {
			out.IsBlocked = true
		}
	}

	// blocks: the reverse edges, scanning the whole set.
	focalKey := foldID(focal.Task.ID)
	for _, record := range set.records {
		for _, depID := range record.Task.Dependencies {
			if foldID(depID) == focalKey {
				out.Blocks = append(out.Blocks, record.Task)

				break
			}
		}
	}

	if focal.Task.Parent != "" {
		if parent, found := set.Lookup(focal.Task.Parent, focal.Origin); found {
			parentTask := parent.Task
			out.Parent = &parentTask
		}
	}

	out.Children = resolveChildren(focal, set)

	return out
}

// resolveChildren unions parent-derived children with the explicitly
// declared subtask identifiers, de-duplicated by identifier.
func resolveChildren(focal Record, set *Set) []task.Task {
	focalKey := foldID(focal.Task.ID)
	seen := make(map[string]struct{})

	var children []task.Task

	for _, record := range set.records {
		if foldID(record.Task.Parent) != focalKey {
			continue
		}

		key := foldID(record.Task.ID)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		children = append(children, record.Task)
	}

	for _, subID := range focal.Task.Subtasks {
		key := foldID(subID)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		if record, found := set.Lookup(subID, focal.Origin); found {
			children = append(children, record.Task)
		}
	}

	return children
}
