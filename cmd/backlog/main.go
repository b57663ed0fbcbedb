// Package main provides backlog, a markdown task manager whose state lives
// entirely in plain task files.
package main

import (
	"os"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
