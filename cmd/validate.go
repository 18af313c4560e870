// =============================================================================
// CSV to QDC Codebook Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It builds the selected codebooks
// exactly like 'generate' but writes nothing. Each codebook is checked for a
// well-formed entity sequence and well-formed XML.
//
// COMMAND USAGE:
//   csv2qdc validate [project...] [--all]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-QDC/internal/converter"
	"github.com/ginjaninja78/CSV-to-QDC/internal/source"
	"github.com/ginjaninja78/CSV-to-QDC/pkg/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project...]",
	Short: "Check codebooks without writing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := utils.NewFileManager(mainConfig)

		index, err := files.DiscoverProjects()
		if err != nil {
			return err
		}

		projects, err := selectProjects(index, args, allProjects)
		if err != nil {
			return err
		}

		results := converter.RunAll(cmd.Context(), projects, index, converter.Options{
			Config: mainConfig,
			Source: source.NewDirectory(mainConfig),
			Logger: logger,
			DryRun: true,
			Check:  true,
		}, mainConfig.MaxConcurrency)

		invalid := 0
		for _, result := range results {
			switch {
			case !result.Success:
				invalid++
				fmt.Printf("  ✗ %s\n", result)
			case len(result.Issues) > 0:
				invalid++
				fmt.Printf("  ✗ %s: %d issue(s)\n", result.Project, len(result.Issues))
				for _, issue := range result.Issues {
					fmt.Printf("      %s\n", issue)
				}
			default:
				fmt.Printf("  ✓ %s: %d categories, %d codes, %d bare codes, %d malformed row(s)\n",
					result.Project, result.Stats.Categories, result.Stats.Children,
					result.Stats.BareCodes, result.Stats.MalformedRows)
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d project(s) invalid", invalid, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&allProjects, "all", false, "Validate every discovered project")
}
