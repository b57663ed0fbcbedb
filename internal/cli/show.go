package cli

import (
	"errors"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/relation"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

var errIDRequired = errors.New("task ID is required")

func (a *app) cmdShow(args []string) error {
	flagSet := flag.NewFlagSet("show", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

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

	for _, w := range entry.Info.Warnings {
		a.io.Warn("task file has issues", w)
	}

	t := entry.Task

	a.io.Printf("%s  %s\n", t.ID, t.Title)
	a.io.Printf("status: %s", t.Status)

	if t.Priority != "" {
		a.io.Printf("  priority: %s", t.Priority)
	}

	if t.Milestone != "" {
		a.io.Printf("  milestone: %s", t.Milestone)
	}

	a.io.Println()

	if len(t.Labels) > 0 {
		a.io.Println("labels:", strings.Join(t.Labels, ", "))
	}

	if len(t.Assignees) > 0 {
		a.io.Println("assignees:", strings.Join(t.Assignees, ", "))
	}

	if t.Created != "" {
		a.io.Printf("created: %s", t.Created)

		if t.Updated != "" {
			a.io.Printf("  updated: %s", t.Updated)
		}

		a.io.Println()
	}

	if t.Description != "" {
		a.io.Println()
		a.io.Println(t.Description)
	}

	printChecklist(a.io, "Acceptance Criteria", t.AcceptanceCriteria)
	printChecklist(a.io, "Definition of Done", t.DefinitionOfDone)

	for _, section := range t.Sections {
		a.io.Println()
		a.io.Println("## " + section.Name)
		a.io.Println(section.Content)
	}

	return a.printRelations(id)
}

func printChecklist(o *IO, heading string, items []task.ChecklistItem) {
	if len(items) == 0 {
		return
	}

	o.Println()
	o.Println(heading + ":")

	for _, item := range items {
		mark := " "
		if item.Checked {
			mark = "x"
		}

		o.Printf("  [%s] #%d %s\n", mark, item.Number, item.Text)
	}
}

func (a *app) printRelations(id string) error {
	_, records, err := a.loadAll()
	if err != nil {
		return err
	}

	set := relation.NewSet(records)
	terminal := relation.NewTerminalSet(a.cfg.DoneStatuses)
	rels := relation.Resolve(id, set, terminal)

	if len(rels.BlockedBy) > 0 {
		a.io.Println()
		a.io.Println("blocked by:")

		for _, link := range rels.BlockedBy {
			switch {
			case link.Missing:
				a.io.Printf("  %s (missing)\n", link.ID)
			case link.Blocks(terminal):
				a.io.Printf("  %s (%s) %s\n", link.Resolved.ID, link.Resolved.Status, link.Resolved.Title)
			default:
				a.io.Printf("  %s (done) %s\n", link.Resolved.ID, link.Resolved.Title)
			}
		}
	}

	if len(rels.Blocks) > 0 {
		a.io.Println()
		a.io.Println("blocks:")

		for _, blocked := range rels.Blocks {
			a.io.Printf("  %s %s\n", blocked.ID, blocked.Title)
		}
	}

	if rels.Parent != nil {
		a.io.Println()
		a.io.Printf("parent: %s %s\n", rels.Parent.ID, rels.Parent.Title)
	}

	if len(rels.Children) > 0 {
		a.io.Println()
		a.io.Println("subtasks:")

		for _, child := range rels.Children {
			a.io.Printf("  %s (%s) %s\n", child.ID, child.Status, child.Title)
		}
	}

	return nil
}
