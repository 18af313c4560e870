// =============================================================================
// CSV to QDC Codebook Converter - List Command
// =============================================================================
//
// COMMAND USAGE:
//   csv2qdc list
//
// OUTPUT:
//   demo    fruit, top-level-codes
//   empty   (no code lists)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-to-QDC/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered projects and their code lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := utils.NewFileManager(mainConfig).DiscoverProjects()
		if err != nil {
			return err
		}

		projects := utils.Projects(index)
		if len(projects) == 0 {
			fmt.Println("No projects found in the import directory.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, project := range projects {
			lists := strings.Join(index[project], ", ")
			if lists == "" {
				lists = "(no code lists)"
			}
			fmt.Fprintf(w, "%s\t%s\n", project, lists)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
