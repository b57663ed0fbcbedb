package cli

import (
	"strings"

	flag "github.com/spf13/pflag"
)

// cmdConfig prints the effective configuration and where it came from,
// for debugging layered config files.
func (a *app) cmdConfig(args []string) error {
	flagSet := flag.NewFlagSet("config", flag.ContinueOnError)
	flagSet.SetOutput(a.io.errOut)

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	a.io.Println("id_prefix:", a.cfg.IDPrefix)
	a.io.Println("zero_padded_ids:", a.cfg.ZeroPaddedIDs)
	a.io.Println("statuses:", strings.Join(a.cfg.Statuses, ", "))
	a.io.Println("done_statuses:", strings.Join(a.cfg.DoneStatuses, ", "))
	a.io.Println("priorities:", strings.Join(a.cfg.Priorities, ", "))
	a.io.Println("tasks_dir:", a.cfg.TasksDir)
	a.io.Println("root:", a.root)

	if a.srcs.Global != "" {
		a.io.Println("global config:", a.srcs.Global)
	}

	if a.srcs.Project != "" {
		a.io.Println("project config:", a.srcs.Project)
	}

	return nil
}
