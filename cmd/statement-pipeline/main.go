// Package main provides the entry point for the statement-pipeline CLI
// application.
package main

import (
	"os"

	"finlens/statement-pipeline/cmd/categories"
	"finlens/statement-pipeline/cmd/process"
	"finlens/statement-pipeline/cmd/root"
)

func main() {
	root.Init()
	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(categories.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
