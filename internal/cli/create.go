package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

var (
	errTitleRequired   = errors.New("title is required")
	errInvalidStatus   = errors.New("invalid status")
	errInvalidPriority = errors.New("invalid priority")
)

func (a *app) cmdCreate(args []string) error {
	flagSet := flag.NewFlagSet("create", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	description := flagSet.StringP("description", "d", "", "Description text")
	status := flagSet.StringP("status", "s", "", "Status (default: first configured status)")
	priority := flagSet.StringP("priority", "p", "", "Priority")
	labels := flagSet.StringArrayP("label", "l", nil, "Label (repeatable)")
	assignees := flagSet.StringArrayP("assignee", "a", nil, "Assignee (repeatable)")
	milestone := flagSet.String("milestone", "", "Milestone")
	parent := flagSet.String("parent", "", "Parent task ID (creates a subtask)")
	deps := flagSet.StringArray("dep", nil, "Dependency task ID (repeatable)")
	criteria := flagSet.StringArray("ac", nil, "Acceptance criterion (repeatable)")
	draft := flagSet.Bool("draft", false, "Create in drafts instead of active tasks")
	interactive := flagSet.BoolP("interactive", "i", false, "Prompt for fields on the terminal")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	title := strings.Join(flagSet.Args(), " ")

	if *interactive {
		title, *status, *priority, err = a.promptCreate(title)
		if err != nil {
			return err
		}
	}

	if strings.TrimSpace(title) == "" {
		return errTitleRequired
	}

	if *status != "" && !a.cfg.ValidStatus(*status) {
		return fmt.Errorf("%w: %q (valid: %s)", errInvalidStatus, *status, strings.Join(a.cfg.Statuses, ", "))
	}

	if *priority != "" && !a.cfg.ValidPriority(*priority) {
		return fmt.Errorf("%w: %q (valid: %s)", errInvalidPriority, *priority, strings.Join(a.cfg.Priorities, ", "))
	}

	seed := task.Task{
		Title:        strings.TrimSpace(title),
		Status:       *status,
		Priority:     *priority,
		Labels:       *labels,
		Assignees:    *assignees,
		Milestone:    *milestone,
		Parent:       *parent,
		Dependencies: *deps,
		Description:  *description,
	}

	for i, text := range *criteria {
		seed.AcceptanceCriteria = append(seed.AcceptanceCriteria, task.ChecklistItem{
			Number: i + 1,
			Text:   text,
		})
	}

	scope := store.ScopeActive
	if *draft {
		scope = store.ScopeDraft
	}

	entry, err := a.st.Create(scope, seed)
	if err != nil {
		return err
	}

	a.refreshIndex(entry)
	a.io.Println(entry.Task.ID)

	return nil
}

// promptCreate gathers missing fields on the terminal. Empty answers keep
// the defaults; Ctrl-C aborts the create.
func (a *app) promptCreate(title string) (string, string, string, error) {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	var err error

	if title == "" {
		title, err = line.Prompt("title> ")
		if err != nil {
			return "", "", "", fmt.Errorf("create aborted: %w", err)
		}
	}

	line.SetCompleter(func(partial string) []string {
		return prefixMatches(a.cfg.Statuses, partial)
	})

	status, err := line.Prompt(fmt.Sprintf("status [%s]> ", a.cfg.DefaultStatus()))
	if err != nil {
		return "", "", "", fmt.Errorf("create aborted: %w", err)
	}

	line.SetCompleter(func(partial string) []string {
		return prefixMatches(a.cfg.Priorities, partial)
	})

	priority, err := line.Prompt("priority []> ")
	if err != nil {
		return "", "", "", fmt.Errorf("create aborted: %w", err)
	}

	return title, strings.TrimSpace(status), strings.TrimSpace(priority), nil
}

func prefixMatches(candidates []string, partial string) []string {
	var out []string

	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(partial)) {
			out = append(out, c)
		}
	}

	return out
}
