package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/relation"
)

// cmdDeps prints the dependency picture of one task: what still blocks it
// and what it blocks in turn. Exit is non-zero (via a warning) when the
// task cannot start yet, so scripts can gate on readiness.
func (a *app) cmdDeps(args []string) error {
	flagSet := flag.NewFlagSet("deps", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errIDRequired
	}

	id := flagSet.Arg(0)

	if _, getErr := a.st.Get(id); getErr != nil {
		return getErr
	}

	_, records, err := a.loadAll()
	if err != nil {
		return err
	}

	set := relation.NewSet(records)
	terminal := relation.NewTerminalSet(a.cfg.DoneStatuses)
	rels := relation.Resolve(id, set, terminal)

	if rels.IsBlocked {
		a.io.Warn("task is blocked", "resolve or complete its dependencies first")
	}

	for _, link := range rels.BlockedBy {
		switch {
		case link.Missing:
			a.io.Printf("blocked-by %s (missing)\n", link.ID)
		case link.Blocks(terminal):
			a.io.Printf("blocked-by %s (%s)\n", link.Resolved.ID, link.Resolved.Status)
		default:
			a.io.Printf("blocked-by %s (done)\n", link.Resolved.ID)
		}
	}

	for _, blocked := range rels.Blocks {
		a.io.Printf("blocks %s (%s)\n", blocked.ID, blocked.Status)
	}

	if len(rels.BlockedBy) == 0 && len(rels.Blocks) == 0 {
		a.io.Println("no dependencies")
	}

	return nil
}
