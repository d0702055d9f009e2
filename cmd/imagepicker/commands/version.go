package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/camera/backend"
	"github.com/SwanFlutter/image-picker-master/internal/platform"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(platform.Describe())
		fmt.Printf("Camera backends: %v\n", backend.Names())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
