package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
)

func (a *app) cmdLs(args []string) error {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	status := flagSet.StringP("status", "s", "", "Show only one status column")
	scopeName := flagSet.String("scope", "tasks", "Storage area: tasks, drafts or archive")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	scope, err := parseScope(*scopeName)
	if err != nil {
		return err
	}

	ctx := context.Background()

	entries, _, err := a.loadAll()
	if err != nil {
		return err
	}

	ix, err := a.rebuildIndex(ctx, entries)
	if err != nil {
		return err
	}

	defer func() { _ = ix.Close() }()

	statuses := a.cfg.Statuses
	if *status != "" {
		statuses = []string{*status}
	}

	if scope != store.ScopeActive {
		// Drafts and archive are not boards; one flat listing.
		rows, listErr := ix.All(ctx, scope)
		if listErr != nil {
			return listErr
		}

		for _, row := range rows {
			a.io.Printf("%-12s %-14s %s\n", row.ID, row.Status, row.Title)
		}

		return nil
	}

	for _, st := range statuses {
		rows, listErr := ix.ByStatus(ctx, scope, st)
		if listErr != nil {
			return listErr
		}

		a.io.Printf("%s (%d)\n", st, len(rows))

		for _, row := range rows {
			suffix := ""
			if row.Priority != "" {
				suffix = "  [" + row.Priority + "]"
			}

			a.io.Printf("  %-12s %s%s\n", row.ID, row.Title, suffix)
		}
	}

	return nil
}

func parseScope(name string) (store.Scope, error) {
	switch name {
	case "tasks", "active":
		return store.ScopeActive, nil
	case "drafts":
		return store.ScopeDraft, nil
	case "archive", "archived":
		return store.ScopeArchived, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want tasks, drafts or archive)", name)
	}
}
