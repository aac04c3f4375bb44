package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"storefront-e2e/lib/datasource"
	"storefront-e2e/test/bookstore"
	"storefront-e2e/test/storefront"

	"github.com/spf13/cobra"
)

var (
	seedDir   string
	seedForce bool
)

func init() {
	seedCmd.Flags().StringVarP(&seedDir, "dir", "d", "", "directory to write to, defaults to data_dir from the config")
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "overwrite existing workbooks")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed [--dir <data dir>] [--force]",
	Short: "Writes sample workbooks that pass against the local twins.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := seedDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir = cfg.Resolve(cfg.DataDir)
		}
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return err
		}

		workbooks := map[string][]datasource.Sheet{
			storefront.DataFile: storefront.SampleWorkbook(),
			bookstore.DataFile:  bookstore.SampleWorkbook(),
		}
		for file, sheets := range workbooks {
			path := filepath.Join(dir, file)
			_, err := os.Stat(path)
			if err == nil && !seedForce {
				return fmt.Errorf("%s already exists, pass --force to overwrite it", path)
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			err = datasource.WriteExcel(path, sheets...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		}
		return nil
	},
}
