// Package root contains the root command for the application
package root

import (
	"finlens/statement-pipeline/internal/config"
	"finlens/statement-pipeline/internal/container"
	"finlens/statement-pipeline/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// App is the wired dependency container, built in PersistentPreRun
	App *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-pipeline",
		Short: "Ingest bank statements and emit categorized transactions.",
		Long: `statement-pipeline ingests raw bank statement exports (CSV or PDF) and
produces categorized transactions in a fixed five-column schema. Structure
and meaning are inferred with an LLM backend when one is reachable; a
deterministic rule-based fallback takes over otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			Log.Info("Use --help to see available commands")
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}

			App = container.NewContainer(cfg)
			Log = App.Logger
			return nil
		},
		SilenceUsage: true,
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Specific process command flags
	SaveDB bool
	NoAI   bool

	// Specific categories command flags
	CategoriesFile string
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}
