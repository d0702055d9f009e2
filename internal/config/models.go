package config

import (
	"time"
)

// Config represents the bridge configuration
type Config struct {
	ServerHost string `json:"server_host" yaml:"server_host" mapstructure:"server_host"`
	ServerPort int    `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	LogLevel   string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty  bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	Channel    string `json:"channel" yaml:"channel" mapstructure:"channel"`

	// AllowedOrigins lists browser origins that may call the HTTP bridge.
	// Requests without an Origin header, or from the server's own origin,
	// are always accepted. "*" accepts every origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	Temp   TempConfig   `json:"temp" yaml:"temp" mapstructure:"temp"`
	Camera CameraConfig `json:"camera" yaml:"camera" mapstructure:"camera"`
	Dialog DialogConfig `json:"dialog" yaml:"dialog" mapstructure:"dialog"`
}

// TempConfig controls where transient files are written
type TempConfig struct {
	Dir    string `json:"dir" yaml:"dir" mapstructure:"dir"` // empty = os.TempDir()
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// CameraConfig selects and tunes the capture backend
type CameraConfig struct {
	Backend       string        `json:"backend" yaml:"backend" mapstructure:"backend"` // auto, ffmpeg, gstreamer, synthetic, gocv
	Device        string        `json:"device" yaml:"device" mapstructure:"device"`    // empty = first enumerated
	Width         int           `json:"width" yaml:"width" mapstructure:"width"`
	Height        int           `json:"height" yaml:"height" mapstructure:"height"`
	ReadTimeout   time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"` // 0 = block until the device answers
	FFmpegPath    string        `json:"ffmpeg_path" yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	GstLaunchPath string        `json:"gst_launch_path" yaml:"gst_launch_path" mapstructure:"gst_launch_path"`
	Faults        string        `json:"faults,omitempty" yaml:"faults,omitempty" mapstructure:"faults"` // synthetic backend only, e.g. "read=busy"
}

// DialogConfig selects the file chooser backend
type DialogConfig struct {
	Backend     string   `json:"backend" yaml:"backend" mapstructure:"backend"` // auto, portal, zenity, kdialog, static
	Title       string   `json:"title" yaml:"title" mapstructure:"title"`
	StaticPaths []string `json:"static_paths" yaml:"static_paths" mapstructure:"static_paths"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		ServerHost:     "127.0.0.1",
		ServerPort:     8765,
		LogLevel:       "info",
		Channel:        "image_picker_master",
		AllowedOrigins: []string{},
		Temp: TempConfig{
			Prefix: "flutter_image_picker_",
		},
		Camera: CameraConfig{
			Backend: "auto",
			Width:   1280,
			Height:  720,
		},
		Dialog: DialogConfig{
			Backend:     "auto",
			Title:       "Select Files",
			StaticPaths: []string{},
		},
	}
}
