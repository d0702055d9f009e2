package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/plugin"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture one photo from the camera",
	Long: `Capture a single JPEG still from the first (or configured) camera.

The photo is written to a temporary file by the capture pipeline and then
copied to --output, so nothing is left in the temp directory afterwards.`,
	Example: `  # Capture with default quality (80)
  imagepicker capture

  # Capture to a specific file at full quality
  imagepicker capture -o selfie.jpg --quality 100

  # Use the synthetic camera
  imagepicker capture --backend synthetic`,
	RunE: runCapture,
}

var (
	captureOutput        string
	captureQuality       int
	captureNoCompression bool
	captureDevice        string
	captureBackend       string
	captureTimeout       time.Duration
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "output file (default photo_<timestamp>.jpg)")
	captureCmd.Flags().IntVarP(&captureQuality, "quality", "q", 80, "JPEG quality (0-100)")
	captureCmd.Flags().BoolVar(&captureNoCompression, "no-compression", false, "ignore --quality and use the default level")
	captureCmd.Flags().StringVarP(&captureDevice, "device", "d", "", "device ID (see 'imagepicker devices')")
	captureCmd.Flags().StringVarP(&captureBackend, "backend", "b", "", "camera backend (auto, ffmpeg, gstreamer, synthetic)")
	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", 0, "frame read timeout (0 waits forever)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	if captureDevice != "" {
		overrides["camera.device"] = captureDevice
	}
	if captureBackend != "" {
		overrides["camera.backend"] = captureBackend
	}
	if captureTimeout > 0 {
		overrides["camera.read_timeout"] = captureTimeout
	}

	p, _, err := openPlugin(overrides)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := call(commandContext(cmd), p, plugin.MethodCapturePhoto, map[string]interface{}{
		"allowCompression":   !captureNoCompression,
		"compressionQuality": captureQuality,
	})
	if err != nil {
		return err
	}

	list, ok := result.([]map[string]interface{})
	if !ok || len(list) != 1 {
		return fmt.Errorf("unexpected capture result %T", result)
	}
	src, _ := list[0]["path"].(string)

	dst := captureOutput
	if dst == "" {
		dst = fmt.Sprintf("photo_%s.jpg", time.Now().Format("20060102_150405"))
	}
	n, err := copyFile(src, dst)
	if err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}

	abs, _ := filepath.Abs(dst)
	out := map[string]interface{}{
		"path":     abs,
		"size":     n,
		"mimeType": list[0]["mimeType"],
		"backend":  p.CameraBackend(),
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// commandContext returns cmd's context or a background one for direct RunE calls
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
