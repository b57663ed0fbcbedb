package cli

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

func (a *app) cmdEdit(args []string) error {
	flagSet := flag.NewFlagSet("edit", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	title := flagSet.StringP("title", "t", "", "New title")
	status := flagSet.StringP("status", "s", "", "New status")
	priority := flagSet.StringP("priority", "p", "", "New priority")
	labels := flagSet.StringArrayP("label", "l", nil, "Replace labels (repeatable)")
	assignees := flagSet.StringArrayP("assignee", "a", nil, "Replace assignees (repeatable)")
	milestone := flagSet.String("milestone", "", "New milestone")
	parent := flagSet.String("parent", "", "New parent task ID")
	deps := flagSet.StringArray("dep", nil, "Replace dependencies (repeatable)")
	description := flagSet.StringP("description", "d", "", "Replace description text")
	ordinal := flagSet.Float64("ordinal", 0, "Explicit board position")
	clearOrdinal := flagSet.Bool("clear-ordinal", false, "Remove the explicit board position")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	id := flagSet.Arg(0)

	var patch task.Patch

	changed := false

	if flagSet.Changed("title") {
		patch.Title = title
		changed = true
	}

	if flagSet.Changed("status") {
		if !a.cfg.ValidStatus(*status) {
			return fmt.Errorf("%w: %q (valid: %s)", errInvalidStatus, *status, strings.Join(a.cfg.Statuses, ", "))
		}

		patch.Status = status
		changed = true
	}

	if flagSet.Changed("priority") {
		if *priority != "" && !a.cfg.ValidPriority(*priority) {
			return fmt.Errorf("%w: %q (valid: %s)", errInvalidPriority, *priority, strings.Join(a.cfg.Priorities, ", "))
		}

		patch.Priority = priority
		changed = true
	}

	if flagSet.Changed("label") {
		patch.Labels = labels
		changed = true
	}

	if flagSet.Changed("assignee") {
		patch.Assignees = assignees
		changed = true
	}

	if flagSet.Changed("milestone") {
		patch.Milestone = milestone
		changed = true
	}

	if flagSet.Changed("parent") {
		patch.Parent = parent
		changed = true
	}

	if flagSet.Changed("dep") {
		patch.Dependencies = deps
		changed = true
	}

	if flagSet.Changed("description") {
		patch.Description = description
		changed = true
	}

	if flagSet.Changed("ordinal") {
		patch.Ordinal = ordinal
		changed = true
	}

	if *clearOrdinal {
		patch.ClearOrdinal = true
		changed = true
	}

	if !changed {
		return fmt.Errorf("edit %s: no changes given", id)
	}

	entry, err := a.st.Update(id, patch)
	if err != nil {
		return err
	}

	a.refreshIndex(entry)
	a.io.Println(entry.Task.ID)

	return nil
}
