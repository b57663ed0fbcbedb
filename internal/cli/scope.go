package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
)

// cmdScope backs archive, demote and promote; all three are the same file
// move into a different storage area.
func (a *app) cmdScope(args []string, to store.Scope) error {
	flagSet := flag.NewFlagSet("move-scope", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	id := flagSet.Arg(0)

	entry, err := a.st.MoveScope(id, to)
	if err != nil {
		return err
	}

	a.refreshIndex(entry)
	a.io.Println(entry.Task.ID)

	return nil
}

func (a *app) cmdRm(args []string) error {
	flagSet := flag.NewFlagSet("rm", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	id := flagSet.Arg(0)

	err = a.st.DeleteTask(id)
	if err != nil {
		return err
	}

	a.removeFromIndex(id)

	return nil
}
