package cli

import (
	"fmt"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/ordinal"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

// cmdMove repositions a task on the board: a status change, a drop at a
// position within its column, or both. Only the moved task is rewritten;
// neighbors keep their ordinals.
func (a *app) cmdMove(args []string) error {
	flagSet := flag.NewFlagSet("move", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	status := flagSet.StringP("status", "s", "", "Target status column")
	position := flagSet.IntP("position", "n", -1, "Target position within the column, 0-based")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	id := flagSet.Arg(0)

	entry, err := a.st.Get(id)
	if err != nil {
		return err
	}

	targetStatus := entry.Task.Status
	if *status != "" {
		if !a.cfg.ValidStatus(*status) {
			return fmt.Errorf("%w: %q (valid: %s)", errInvalidStatus, *status, strings.Join(a.cfg.Statuses, ", "))
		}

		targetStatus = *status
	}

	if *status == "" && *position < 0 {
		return fmt.Errorf("move %s: need --status, --position or both", id)
	}

	var patch task.Patch

	if targetStatus != entry.Task.Status {
		patch.Status = &targetStatus
	}

	if *position >= 0 {
		siblings, sibErr := a.columnSiblings(targetStatus, entry.Task.Parent, id)
		if sibErr != nil {
			return sibErr
		}

		dropped := ordinal.Drop(id, *position, siblings)
		patch.Ordinal = &dropped
	}

	updated, err := a.st.Update(id, patch)
	if err != nil {
		return err
	}

	a.refreshIndex(updated)
	a.io.Println(updated.Task.ID)

	return nil
}

// cmdRepair restores the ordering invariant within every status column:
// strictly increasing ordinals in display order, nothing missing. By
// default only offending records are rewritten; --force-sequential
// renumbers whole columns to clean Step multiples.
func (a *app) cmdRepair(args []string) error {
	flagSet := flag.NewFlagSet("repair", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	force := flagSet.Bool("force-sequential", false, "Renumber every column from scratch")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	entries, err := a.st.LoadScope(store.ScopeActive)
	if err != nil {
		return err
	}

	repaired := 0

	for _, st := range a.cfg.Statuses {
		for _, parent := range parentGroups(entries, st) {
			siblings := siblingsOf(entries, st, parent, a.cfg.IDPrefix)

			for _, change := range ordinal.ResolveConflicts(siblings, *force) {
				ord := change.Ordinal

				updated, updateErr := a.st.Update(change.ID, task.Patch{Ordinal: &ord})
				if updateErr != nil {
					return updateErr
				}

				a.refreshIndex(updated)

				repaired++
			}
		}
	}

	a.io.Printf("repaired %d task(s)\n", repaired)

	return nil
}

// columnSiblings collects the display-ordered siblings of one status
// column and parent group, excluding the moving record itself.
func (a *app) columnSiblings(status, parent, excludeID string) ([]ordinal.Sibling, error) {
	entries, err := a.st.LoadScope(store.ScopeActive)
	if err != nil {
		return nil, err
	}

	siblings := siblingsOf(entries, status, parent, a.cfg.IDPrefix)

	out := siblings[:0]

	for _, s := range siblings {
		if !strings.EqualFold(s.ID, excludeID) {
			out = append(out, s)
		}
	}

	return out, nil
}

// siblingsOf filters entries to one status column and parent group and
// sorts them into display order.
func siblingsOf(entries []store.Entry, status, parent, prefix string) []ordinal.Sibling {
	type sibTask struct {
		sib   ordinal.Sibling
		title string
	}

	var group []sibTask

	for _, entry := range entries {
		if entry.Task.Status != status || !strings.EqualFold(entry.Task.Parent, parent) {
			continue
		}

		sib := ordinal.Sibling{ID: entry.Task.ID}
		if v, ok := entry.Task.OrdinalValue(); ok {
			sib.Ordinal = v
			sib.HasOrdinal = true
		}

		group = append(group, sibTask{sib: sib, title: entry.Task.Title})
	}

	sort.SliceStable(group, func(i, j int) bool {
		if ordinal.Less(group[i].sib, group[j].sib) {
			return true
		}

		if ordinal.Less(group[j].sib, group[i].sib) {
			return false
		}

		return ordinal.TieBreak(group[i].title, group[i].sib.ID, group[j].title, group[j].sib.ID, prefix) < 0
	})

	out := make([]ordinal.Sibling, len(group))
	for i, g := range group {
		out[i] = g.sib
	}

	return out
}

// parentGroups returns the distinct parent IDs present in one status
// column, the empty string (top level) included when it occurs.
func parentGroups(entries []store.Entry, status string) []string {
	seen := map[string]bool{}

	var out []string

	for _, entry := range entries {
		if entry.Task.Status != status {
			continue
		}

		key := strings.ToLower(entry.Task.Parent)
		if !seen[key] {
			seen[key] = true
			out = append(out, entry.Task.Parent)
		}
	}

	sort.Strings(out)

	return out
}
