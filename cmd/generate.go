// =============================================================================
// CSV to QDC Codebook Converter - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which converts projects into
// codebook files.
//
// COMMAND USAGE:
//   csv2qdc generate [project...] [flags]
//
// FLAGS:
//   --all       : Convert every discovered project
//   --dry-run   : Print the codebooks to stdout instead of writing them
//   --parallel  : Number of projects converted at once (default: max_concurrency)
//
// PROCESSING PIPELINE:
//   1. Prepare the export and errors directories
//   2. Discover projects in the import directory
//   3. Convert the selected projects (concurrently when --parallel > 1)
//   4. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-to-QDC/internal/codebook"
	"github.com/ginjaninja78/CSV-to-QDC/internal/converter"
	"github.com/ginjaninja78/CSV-to-QDC/internal/source"
	"github.com/ginjaninja78/CSV-to-QDC/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// allProjects selects every discovered project.
var allProjects bool

// dryRun prints codebooks without writing files.
var dryRun bool

// parallel overrides max_concurrency when positive.
var parallel int

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate [project...]",
	Short: "Convert projects into QDC codebooks",
	Long: `The generate command builds one codebook per selected project and writes it
to <export>/<project>/<timestamp>.qdc.

Projects are processed independently. A failing project is reported and the
others continue. Anomalies of each project are appended to
<errors>/<project>.txt.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&allProjects, "all", false, "Convert every discovered project")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print codebooks to stdout instead of writing them")
	generateCmd.Flags().IntVar(&parallel, "parallel", 0, "Number of projects converted at once (default: max_concurrency)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(ctx context.Context, args []string) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1-2: PREPARE DIRECTORIES AND DISCOVER PROJECTS
	// =========================================================================

	files := utils.NewFileManager(mainConfig)
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	index, err := files.DiscoverProjects()
	if err != nil {
		return err
	}

	projects, err := selectProjects(index, args, allProjects)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects found in the import directory.")
		return nil
	}

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	limit := mainConfig.MaxConcurrency
	if parallel > 0 {
		limit = parallel
	}

	logger.Debug("converting projects",
		zap.Strings("projects", projects),
		zap.Int("parallel", limit),
		zap.Bool("dry_run", dryRun))

	results := converter.RunAll(ctx, projects, index, converter.Options{
		Config: mainConfig,
		Files:  files,
		Source: source.NewDirectory(mainConfig),
		Logger: logger,
		DryRun: dryRun,
	}, limit)

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	if dryRun {
		for _, result := range results {
			if result.Success {
				fmt.Println(result.Document)
			}
		}
	}

	for _, result := range results {
		if result.Success {
			fmt.Printf("  ✓ %s\n", result)
		} else {
			fmt.Printf("  ✗ %s\n", result)
		}
	}

	succeeded, failed := converter.Summary(results)
	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Total projects:  %d\n", len(results))
	fmt.Printf("Successful:      %d\n", succeeded)
	fmt.Printf("Errors:          %d\n", failed)
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	if failed > 0 {
		return fmt.Errorf("%d project(s) failed", failed)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// selectProjects resolves the command's project arguments.
//
// RETURNS:
//   - Every discovered project when all is set, otherwise args as given.
//     Unknown names are kept; the converter reports them.
//   - An error when neither args nor all select anything.
func selectProjects(index codebook.Index, args []string, all bool) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all cannot be combined with project names")
		}
		return utils.Projects(index), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no project given; name one or more projects or use --all")
	}
	return args, nil
}
