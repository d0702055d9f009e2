package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       interface{}
		wantErr    bool
	}{
		{"server_port", "9090", 9090, false},
		{"server_port", "99999", nil, true},
		{"server_port", "abc", nil, true},
		{"server_port", "80abc", nil, true},
		{"log_level", "debug", "debug", false},
		{"log_level", "loud", nil, true},
		{"camera.width", "640", 640, false},
		{"camera.width", "640px", nil, true},
		{"camera.height", "-1", nil, true},
		{"log_pretty", "true", true, false},
		{"log_pretty", "maybe", nil, true},
		{"log_pretty", "yes", nil, true},
		{"log_pretty", "0", false, false},
		{"server_host", "0.0.0.0", "0.0.0.0", false},
		{"server_host", " ", nil, true},
		{"allowed_origins", "http://localhost:3000,", []string{"http://localhost:3000"}, false},
		{"camera.read_timeout", "1500ms", "1.5s", false},
		{"camera.read_timeout", "soon", nil, true},
		{"dialog.static_paths", "/a.png, /b.jpg,", []string{"/a.png", "/b.jpg"}, false},
		{"camera.backend", "synthetic", "synthetic", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpegdata"), 0o644))

	dst := filepath.Join(dir, "out.jpg")
	n, err := copyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))

	_, err = copyFile(filepath.Join(dir, "missing"), dst)
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "stdio", "capture", "pick", "devices", "clean", "version", "config"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, sub := range []string{"show", "get", "set", "path"} {
		cmd, _, err := rootCmd.Find([]string{"config", sub})
		require.NoError(t, err)
		assert.Equal(t, sub, cmd.Name())
	}
}
