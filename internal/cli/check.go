package cli

import (
	"errors"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

var errItemNumberRequired = errors.New("checklist item number is required")

// cmdToggle backs both check and uncheck. The file stores the actual
// state, so toggling is idempotent per target state: a check on an already
// checked item is a no-op, not an error.
func (a *app) cmdToggle(args []string, wantChecked bool) error {
	flagSet := flag.NewFlagSet("check", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	dod := flagSet.Bool("dod", false, "Target the Definition of Done instead of Acceptance Criteria")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	if flagSet.NArg() < 2 {
		return errItemNumberRequired
	}

	id := flagSet.Arg(0)

	number, err := strconv.Atoi(flagSet.Arg(1))
	if err != nil || number <= 0 {
		return fmt.Errorf("%w: got %q", errItemNumberRequired, flagSet.Arg(1))
	}

	kind := task.GroupAcceptanceCriteria
	if *dod {
		kind = task.GroupDefinitionOfDone
	}

	entry, err := a.st.Get(id)
	if err != nil {
		return err
	}

	current, found := checklistItemState(entry.Task.Checklist(kind), number)
	if found && current == wantChecked {
		return nil
	}

	entry, err = a.st.ToggleChecklistItem(id, kind, number)
	if err != nil {
		return err
	}

	a.refreshIndex(entry)

	return nil
}

func checklistItemState(items []task.ChecklistItem, number int) (checked, found bool) {
	for _, item := range items {
		if item.Number == number {
			return item.Checked, true
		}
	}

	return false, false
}
