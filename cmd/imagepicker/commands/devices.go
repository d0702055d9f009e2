package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture devices",
	Long: `List the video capture devices reported by the camera backend.

The first device listed is the one capturePhoto uses unless camera.device
is set.`,
	Example: `  # List devices in table format (default)
  imagepicker devices

  # List devices of a specific backend as JSON
  imagepicker devices --backend gstreamer --format json`,
	RunE: runDevices,
}

var (
	devicesFormat  string
	devicesBackend string
)

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().StringVarP(&devicesFormat, "format", "f", "table", "output format (table or json)")
	devicesCmd.Flags().StringVarP(&devicesBackend, "backend", "b", "", "camera backend (auto, ffmpeg, gstreamer, synthetic)")
}

func runDevices(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	if devicesBackend != "" {
		overrides["camera.backend"] = devicesBackend
	}

	p, _, err := openPlugin(overrides)
	if err != nil {
		return err
	}
	defer p.Close()

	devs, err := p.Devices(commandContext(cmd))
	if err != nil {
		return err
	}

	switch devicesFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(devs)
	case "table":
		if len(devs) == 0 {
			fmt.Printf("No capture devices found (backend: %s)\n", p.CameraBackend())
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "ID\tNAME\tPATH")
		fmt.Fprintln(w, "--\t----\t----")
		for _, d := range devs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Path)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", devicesFormat)
	}
}
