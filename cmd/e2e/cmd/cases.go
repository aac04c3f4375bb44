package cmd

import (
	"path/filepath"
	"strings"

	"storefront-e2e/cmd/e2e/utils"
	"storefront-e2e/lib/datasource"
	"storefront-e2e/lib/scenario"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(casesCmd)
}

var casesCmd = &cobra.Command{
	Use:   "cases <file> [sheet]",
	Short: "Lists the test cases of a data file and whether each would run.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := ""
		if !filepath.IsAbs(args[0]) {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dataDir = cfg.Resolve(cfg.DataDir)
		}

		sections := args[1:]
		ext := strings.ToLower(filepath.Ext(args[0]))
		if len(sections) == 0 && ext != ".csv" {
			path := args[0]
			if dataDir != "" {
				path = filepath.Join(dataDir, path)
			}
			var err error
			sections, err = datasource.Sections(path)
			if err != nil {
				return err
			}
		}
		if len(sections) == 0 {
			sections = []string{filepath.Base(args[0])}
		}

		t := utils.NewTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Sheet", scenario.FieldID, scenario.FieldName, scenario.FieldFlag, "Runs"})
		for _, section := range sections {
			rows, err := datasource.Open(dataDir, args[0], section)
			if err != nil {
				return err
			}
			datasource.Each(rows, func(row datasource.Row) bool {
				runs := "no"
				if row.Get(scenario.FieldFlag) == scenario.Enabled {
					runs = "yes"
				}
				t.AppendRow(table.Row{section, row.Get(scenario.FieldID), row.Get(scenario.FieldName), row.Get(scenario.FieldFlag), runs})
				return true
			})
			t.AppendSeparator()
		}
		t.Render()
		return nil
	},
}
