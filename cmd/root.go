// =============================================================================
// CSV to QDC Codebook Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (csv2qdc)
//   ├── generateCmd (csv2qdc generate)
//   ├── listCmd     (csv2qdc list)
//   ├── validateCmd (csv2qdc validate)
//   └── versionCmd  (csv2qdc version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration (--config, defaults if the file is missing)
//   2. Builds the stderr logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is loaded before every subcommand.
var mainConfig *config.MainConfig

// logger is the base logger built before every subcommand.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csv2qdc",
	Short: "CSV to QDC Converter - Build QDA-XML codebooks from CSV code lists",
	Long: `csv2qdc turns per-project code lists into QDC codebooks that qualitative
analysis tools can import.

Each subdirectory of the import directory is a project. Each CSV or XLSX file
in a project is a code list: the file name is the category, each row is a
(code, description) pair. The reserved list "top-level-codes" holds codes
that belong to no category.

Example Usage:
  csv2qdc list                          # Show discovered projects
  csv2qdc generate demo                 # Write export/demo/<timestamp>.qdc
  csv2qdc generate --all --parallel 4   # Convert every project
  csv2qdc generate demo --dry-run       # Print the codebook instead
  csv2qdc validate --all                # Check codebooks without writing`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		mainConfig, err = config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}

		level := mainConfig.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// An interrupt cancels projects that have not been written yet.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
