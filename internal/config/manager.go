package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides (IMAGEPICKER_CAMERA_BACKEND, ...)
const EnvPrefix = "IMAGEPICKER"

// Manager handles configuration
type Manager struct {
	configPath string
	v          *viper.Viper
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/imagepicker/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "imagepicker", "config.yaml"), nil
}

// NewManager creates a new configuration manager. An empty configFile
// selects DefaultPath. A missing file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = p
	}

	if err := os.MkdirAll(filepath.Dir(actualConfigPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, Defaults())
	v.SetConfigFile(actualConfigPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{
		configPath: actualConfigPath,
		v:          v,
	}

	log := logger.WithComponent("config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Info().
			Str("path", m.configPath).
			Msg("Config file not found, creating new config")
		if err := m.reload(); err != nil {
			return nil, err
		}
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err := m.reload(); err != nil {
		return nil, err
	}

	log.Info().
		Str("path", m.configPath).
		Str("camera_backend", m.config.Camera.Backend).
		Str("dialog_backend", m.config.Dialog.Backend).
		Msg("Config loaded")

	return m, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server_host", d.ServerHost)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("allowed_origins", d.AllowedOrigins)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("channel", d.Channel)
	v.SetDefault("temp.dir", d.Temp.Dir)
	v.SetDefault("temp.prefix", d.Temp.Prefix)
	v.SetDefault("camera.backend", d.Camera.Backend)
	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.read_timeout", d.Camera.ReadTimeout)
	v.SetDefault("camera.ffmpeg_path", d.Camera.FFmpegPath)
	v.SetDefault("camera.gst_launch_path", d.Camera.GstLaunchPath)
	v.SetDefault("camera.faults", d.Camera.Faults)
	v.SetDefault("dialog.backend", d.Dialog.Backend)
	v.SetDefault("dialog.title", d.Dialog.Title)
	v.SetDefault("dialog.static_paths", d.Dialog.StaticPaths)
}

// reload decodes the viper state into a fresh Config
func (m *Manager) reload() error {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	normalize(&cfg)

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// normalize fills values a hand-edited file may have left blank
func normalize(cfg *Config) {
	d := Defaults()
	cfg.ServerHost = strings.TrimSpace(cfg.ServerHost)
	if cfg.ServerHost == "" {
		cfg.ServerHost = d.ServerHost
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = []string{}
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		cfg.ServerPort = d.ServerPort
	}
	if cfg.Channel == "" {
		cfg.Channel = d.Channel
	}
	if cfg.Temp.Prefix == "" {
		cfg.Temp.Prefix = d.Temp.Prefix
	}
	cfg.Camera.Backend = strings.ToLower(strings.TrimSpace(cfg.Camera.Backend))
	if cfg.Camera.Backend == "" {
		cfg.Camera.Backend = d.Camera.Backend
	}
	if cfg.Camera.Width <= 0 {
		cfg.Camera.Width = d.Camera.Width
	}
	if cfg.Camera.Height <= 0 {
		cfg.Camera.Height = d.Camera.Height
	}
	if cfg.Camera.ReadTimeout < 0 {
		cfg.Camera.ReadTimeout = 0
	}
	cfg.Dialog.Backend = strings.ToLower(strings.TrimSpace(cfg.Dialog.Backend))
	if cfg.Dialog.Backend == "" {
		cfg.Dialog.Backend = d.Dialog.Backend
	}
	if cfg.Dialog.Title == "" {
		cfg.Dialog.Title = d.Dialog.Title
	}
	if cfg.Dialog.StaticPaths == nil {
		cfg.Dialog.StaticPaths = []string{}
	}
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}

	cfg := *m.config
	cfg.AllowedOrigins = append([]string(nil), m.config.AllowedOrigins...)
	cfg.Dialog.StaticPaths = append([]string(nil), m.config.Dialog.StaticPaths...)
	return &cfg
}

// GetViper exposes the underlying viper instance for key-level access
func (m *Manager) GetViper() *viper.Viper {
	return m.v
}

// Set assigns a key and refreshes the decoded configuration
func (m *Manager) Set(key string, value interface{}) error {
	m.v.Set(key, value)
	return m.reload()
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	if err := m.reload(); err != nil {
		return err
	}
	cfg := m.Get()

	log := logger.WithComponent("config")
	log.Debug().Str("path", m.configPath).Msg("Saving config")

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		log.Error().Err(err).Str("path", m.configPath).Msg("Failed to write config")
		return err
	}

	log.Info().Str("path", m.configPath).Msg("Config saved successfully")
	return nil
}

// Watch re-reads the file on change and invokes onChange with the new config
func (m *Manager) Watch(onChange func(*Config)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		log := logger.WithComponent("config")
		if err := m.reload(); err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid config change")
			return
		}
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("Config reloaded")
		if onChange != nil {
			onChange(m.Get())
		}
	})
	m.v.WatchConfig()
}

// SetPort overrides the server port for this process
func (m *Manager) SetPort(port int) error {
	return m.Set("server_port", port)
}

// SetLogLevel overrides the log level for this process
func (m *Manager) SetLogLevel(level string) error {
	return m.Set("log_level", level)
}

// GetConfigPath returns the config file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
