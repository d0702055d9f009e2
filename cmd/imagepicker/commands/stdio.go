package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/api"
	"github.com/SwanFlutter/image-picker-master/internal/plugin"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve the channel over stdin/stdout",
	Long: `Serve the image_picker_master channel as JSON lines on stdin and stdout.

Each input line is {"id": ..., "method": ..., "arguments": {...}} and is
answered by one output line carrying the same id. Logs go to stderr.`,
	Example: `  echo '{"id":1,"method":"getPlatformVersion"}' | imagepicker stdio`,
	RunE: runStdio,
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}

func runStdio(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := plugin.New(plugin.Options{Config: configMgr.Get()})
	if err != nil {
		return fmt.Errorf("failed to initialize plugin: %w", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = api.NewStdio(p, os.Stdin, os.Stdout).Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
