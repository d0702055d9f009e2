package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/plugin"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Open the native file chooser",
	Long: `Open the native file chooser and print the selected files.

Cancelling the dialog is not an error; nothing is printed.`,
	Example: `  # Pick one file of any type
  imagepicker pick

  # Pick several images
  imagepicker pick --type image --multiple

  # Pick CSV or TSV files, as JSON
  imagepicker pick --type custom --ext csv --ext tsv --format json`,
	RunE: runPick,
}

var (
	pickType       string
	pickExtensions []string
	pickMultiple   bool
	pickFormat     string
	pickBackend    string
)

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().StringVarP(&pickType, "type", "t", "any", "file type (any, image, video, audio, document, custom)")
	pickCmd.Flags().StringSliceVarP(&pickExtensions, "ext", "e", nil, "allowed extensions for --type custom")
	pickCmd.Flags().BoolVarP(&pickMultiple, "multiple", "m", false, "allow selecting several files")
	pickCmd.Flags().StringVarP(&pickFormat, "format", "f", "table", "output format (table or json)")
	pickCmd.Flags().StringVarP(&pickBackend, "backend", "b", "", "chooser backend (auto, portal, zenity, kdialog, osascript, powershell)")
}

func runPick(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	if pickBackend != "" {
		overrides["dialog.backend"] = pickBackend
	}

	p, _, err := openPlugin(overrides)
	if err != nil {
		return err
	}
	defer p.Close()

	exts := make([]interface{}, 0, len(pickExtensions))
	for _, e := range pickExtensions {
		exts = append(exts, e)
	}
	result, err := call(commandContext(cmd), p, plugin.MethodPickFiles, map[string]interface{}{
		"type":              pickType,
		"allowedExtensions": exts,
		"allowMultiple":     pickMultiple,
	})
	if err != nil {
		return err
	}

	list, _ := result.([]map[string]interface{})
	if len(list) == 0 {
		return nil
	}

	switch pickFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "NAME\tSIZE\tMIME TYPE\tPATH")
		fmt.Fprintln(w, "----\t----\t---------\t----")
		for _, f := range list {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", f["name"], f["size"], f["mimeType"], f["path"])
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", pickFormat)
	}
}
