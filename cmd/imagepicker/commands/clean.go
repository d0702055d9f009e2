package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/tempfiles"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete leftover temporary files",
	Long: `Delete every file in the bridge's temporary directory.

A running bridge deletes its own files on clearTemporaryFiles and on exit;
this removes what a crashed or killed process left behind.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	m := tempfiles.NewManager(cfg.Temp.Dir, cfg.Temp.Prefix)
	removed, err := m.Purge()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d file(s) from %s\n", removed, m.Dir())
	return nil
}
