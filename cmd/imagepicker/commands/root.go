package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SwanFlutter/image-picker-master/internal/channel"
	"github.com/SwanFlutter/image-picker-master/internal/config"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/plugin"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "imagepicker",
		Short: "imagepicker - native file picking and photo capture bridge",
		Long: `imagepicker is the host side of the image_picker_master method channel.
It opens native file choosers and captures single photos from the first
camera, returning file descriptors to the calling application.

Features:
  • Native file chooser (xdg portal, zenity, kdialog, osascript, PowerShell)
  • Image recompression to JPEG on pick
  • Single-frame camera capture via ffmpeg or GStreamer
  • Fine-grained camera error codes
  • HTTP, WebSocket and stdio transports
  • Persistent configuration`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/imagepicker/config.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8765)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config file, applies flag overrides and
// initializes logging
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	// Override port from flag if provided
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			if err := configMgr.SetPort(port); err != nil {
				return nil, err
			}
		}
	}

	// Override log level from flag if provided
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			if err := configMgr.SetLogLevel(level); err != nil {
				return nil, err
			}
		}
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, nil
}

// openPlugin loads the config and builds the plugin from it
func openPlugin(overrides map[string]interface{}) (*plugin.Plugin, *config.Manager, error) {
	configMgr, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	for key, value := range overrides {
		if err := configMgr.Set(key, value); err != nil {
			return nil, nil, err
		}
	}

	p, err := plugin.New(plugin.Options{Config: configMgr.Get()})
	if err != nil {
		return nil, nil, err
	}
	return p, configMgr, nil
}

// call invokes one method and turns an error response into a Go error
func call(ctx context.Context, p *plugin.Plugin, method string, args map[string]interface{}) (interface{}, error) {
	resp, err := p.Invoke(ctx, channel.MethodCall{Method: method, Arguments: args})
	if err != nil {
		return nil, err
	}
	switch resp.Status {
	case channel.StatusSuccess:
		return resp.Result, nil
	case channel.StatusNotImplemented:
		return nil, fmt.Errorf("%s is not implemented", method)
	}
	return nil, fmt.Errorf("%s: %s", resp.Code, resp.Message)
}
