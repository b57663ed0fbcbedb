// Package cli implements the backlog command line. Commands are thin: they
// parse flags, call into the store/index/relation packages and print. All
// state lives in the task files.
package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/config"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/relation"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
)

// indexFileName is the derived cache database inside the backlog root. It
// is disposable; rm it and the next command rebuilds it.
const indexFileName = ".index.db"

type app struct {
	io   *IO
	st   *store.Store
	cfg  config.Config
	srcs config.Sources
	root string
}

// Run is the main entry point. Returns the process exit code. The reader
// is unused: the only interactive path (create --interactive) talks to the
// terminal through liner directly.
func Run(_ io.Reader, out, errOut io.Writer, args []string) int {
	ioCtx := NewIO(out, errOut)

	if len(args) < 2 {
		printUsage(ioCtx)

		return 0
	}

	globals := flag.NewFlagSet("backlog", flag.ContinueOnError)
	globals.SetOutput(errOut)
	globals.SetInterspersed(false)

	workDir := globals.String("dir", "", "Project directory (default: current directory)")
	configPath := globals.String("config", "", "Explicit config file path")

	err := globals.Parse(args[1:])
	if err != nil {
		return 1
	}

	rest := globals.Args()
	if len(rest) == 0 {
		printUsage(ioCtx)

		return 0
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage(ioCtx)

		return 0
	}

	if *workDir == "" {
		*workDir, err = os.Getwd()
		if err != nil {
			ioCtx.Errorln("error: cannot get working directory:", err)

			return 1
		}
	}

	cfg, srcs, err := config.Load(*workDir, *configPath)
	if err != nil {
		ioCtx.Errorln("error:", err)

		return 1
	}

	root := cfg.TasksDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(*workDir, root)
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	st, err := store.Open(root, cfg, logger)
	if err != nil {
		ioCtx.Errorln("error:", err)

		return 1
	}

	a := &app{io: ioCtx, st: st, cfg: cfg, srcs: srcs, root: root}

	var cmdErr error

	switch cmd {
	case "create":
		cmdErr = a.cmdCreate(cmdArgs)
	case "ls":
		cmdErr = a.cmdLs(cmdArgs)
	case "show":
		cmdErr = a.cmdShow(cmdArgs)
	case "edit":
		cmdErr = a.cmdEdit(cmdArgs)
	case "check":
		cmdErr = a.cmdToggle(cmdArgs, true)
	case "uncheck":
		cmdErr = a.cmdToggle(cmdArgs, false)
	case "move":
		cmdErr = a.cmdMove(cmdArgs)
	case "repair":
		cmdErr = a.cmdRepair(cmdArgs)
	case "archive":
		cmdErr = a.cmdScope(cmdArgs, store.ScopeArchived)
	case "demote":
		cmdErr = a.cmdScope(cmdArgs, store.ScopeDraft)
	case "promote":
		cmdErr = a.cmdScope(cmdArgs, store.ScopeActive)
	case "rm":
		cmdErr = a.cmdRm(cmdArgs)
	case "deps":
		cmdErr = a.cmdDeps(cmdArgs)
	case "config":
		cmdErr = a.cmdConfig(cmdArgs)
	default:
		ioCtx.Errorln("error: unknown command:", cmd)
		printUsage(ioCtx)

		return 1
	}

	if cmdErr != nil {
		ioCtx.Errorln("error:", cmdErr)

		return 1
	}

	return ioCtx.Finish()
}

func printUsage(o *IO) {
	o.Println(`Usage: backlog [--dir <path>] [--config <file>] <command> [args]

Commands:
  create [title]          Create a task, prints its ID
  ls                      List tasks by status
  show <id>               Show one task with its relationships
  edit <id>               Change task fields
  check <id> <n>          Mark checklist item n done
  uncheck <id> <n>        Mark checklist item n not done
  move <id>               Reposition or change status of a task
  repair                  Repair conflicting sibling positions
  archive <id>            Move a task to the archive
  demote <id>             Move a task to drafts
  promote <id>            Move a draft to active tasks
  rm <id>                 Delete a task file permanently
  deps <id>               Show what blocks a task and what it blocks
  config                  Print the effective configuration`)
}

// loadAll reads every task across all scopes, origin-tagged for
// relationship resolution.
func (a *app) loadAll() ([]store.Entry, []relation.Record, error) {
	var (
		entries []store.Entry
		records []relation.Record
	)

	for _, scope := range []store.Scope{store.ScopeActive, store.ScopeDraft, store.ScopeArchived} {
		scoped, err := a.st.LoadScope(scope)
		if err != nil {
			return nil, nil, err
		}

		for _, entry := range scoped {
			entries = append(entries, entry)
			records = append(records, relation.Record{Task: entry.Task, Origin: string(scope)})
		}
	}

	return entries, records, nil
}

func (a *app) indexPath() string {
	return filepath.Join(a.root, indexFileName)
}
