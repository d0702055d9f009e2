package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// commandChooser runs an external dialog program and reads paths from stdout
type commandChooser struct {
	name string
	path string
	args func(Request) []string
	// cancelled reports whether a non-zero exit means the user dismissed the dialog
	cancelled func(exitCode int, stderr string) bool
}

func (c *commandChooser) Name() string { return c.name }

func (c *commandChooser) Choose(ctx context.Context, req Request) ([]string, error) {
	log := logger.WithComponent("dialog")
	args := c.args(req)
	cmd := exec.CommandContext(ctx, c.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("chooser", c.name).Strs("args", args).Msg("Running dialog command")
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if c.cancelled(exitErr.ExitCode(), stderr.String()) {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("%s exited with %d: %s", c.name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	paths := splitPaths(stdout.String())
	if len(paths) == 0 {
		return nil, ErrCancelled
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			return nil, fmt.Errorf("%w: %q is not an absolute path", ErrBadResult, p)
		}
	}
	return paths, nil
}

func splitPaths(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

func exitOne(code int, _ string) bool { return code == 1 }

// NewZenity returns a chooser backed by zenity --file-selection
func NewZenity(path string) (Chooser, error) {
	resolved, err := lookPath(path, "zenity")
	if err != nil {
		return nil, err
	}
	return &commandChooser{name: "zenity", path: resolved, args: zenityArgs, cancelled: exitOne}, nil
}

func zenityArgs(req Request) []string {
	args := []string{"--file-selection", "--title=" + req.Title}
	if req.Multiple {
		args = append(args, "--multiple", "--separator=\n")
	}
	if !req.Filter.MatchesAll() {
		args = append(args, "--file-filter="+req.Filter.Name+" | "+strings.Join(req.Filter.Patterns, " "))
	}
	args = append(args, "--file-filter=All Files | *")
	if req.ParentWindow != 0 {
		args = append(args, "--attach="+strconv.FormatUint(uint64(req.ParentWindow), 10))
	}
	return args
}

// NewKDialog returns a chooser backed by kdialog --getopenfilename
func NewKDialog(path string) (Chooser, error) {
	resolved, err := lookPath(path, "kdialog")
	if err != nil {
		return nil, err
	}
	return &commandChooser{name: "kdialog", path: resolved, args: kdialogArgs, cancelled: exitOne}, nil
}

func kdialogArgs(req Request) []string {
	filter := "All Files (*)"
	if !req.Filter.MatchesAll() {
		filter = req.Filter.Name + " (" + strings.Join(req.Filter.Patterns, " ") + ")"
	}
	args := []string{"--title", req.Title}
	if req.ParentWindow != 0 {
		args = append(args, "--attach", strconv.FormatUint(uint64(req.ParentWindow), 10))
	}
	args = append(args, "--getopenfilename", ".", filter)
	if req.Multiple {
		args = append(args, "--multiple", "--separate-output")
	}
	return args
}

// NewAppleScript returns a chooser backed by osascript's choose file
func NewAppleScript(path string) (Chooser, error) {
	resolved, err := lookPath(path, "osascript")
	if err != nil {
		return nil, err
	}
	return &commandChooser{
		name: "osascript",
		path: resolved,
		args: appleScriptArgs,
		cancelled: func(_ int, stderr string) bool {
			return strings.Contains(stderr, "-128")
		},
	}, nil
}

func appleScriptArgs(req Request) []string {
	choose := "choose file with prompt " + appleQuote(req.Title)
	if !req.Filter.MatchesAll() {
		var types []string
		for _, p := range req.Filter.Patterns {
			types = append(types, appleQuote(strings.TrimPrefix(p, "*.")))
		}
		choose += " of type {" + strings.Join(types, ", ") + "}"
	}
	if req.Multiple {
		choose += " with multiple selections allowed"
	}
	script := []string{
		"set picked to " + choose,
		"if class of picked is not list then set picked to {picked}",
		"set out to \"\"",
		"repeat with f in picked",
		"set out to out & POSIX path of f & linefeed",
		"end repeat",
		"return out",
	}
	args := make([]string, 0, len(script)*2)
	for _, line := range script {
		args = append(args, "-e", line)
	}
	return args
}

func appleQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// NewPowerShell returns a chooser backed by the WinForms OpenFileDialog
func NewPowerShell(path string) (Chooser, error) {
	resolved, err := lookPath(path, "powershell")
	if err != nil {
		return nil, err
	}
	return &commandChooser{name: "powershell", path: resolved, args: powerShellArgs, cancelled: exitOne}, nil
}

func powerShellArgs(req Request) []string {
	filter := "All Files|*.*"
	if !req.Filter.MatchesAll() {
		filter = req.Filter.Name + "|" + strings.Join(req.Filter.Patterns, ";") + "|" + filter
	}
	multi := "$false"
	if req.Multiple {
		multi = "$true"
	}
	script := strings.Join([]string{
		"Add-Type -AssemblyName System.Windows.Forms",
		"$d = New-Object System.Windows.Forms.OpenFileDialog",
		"$d.Title = " + psQuote(req.Title),
		"$d.Filter = " + psQuote(filter),
		"$d.Multiselect = " + multi,
		"if ($d.ShowDialog() -eq [System.Windows.Forms.DialogResult]::OK) { $d.FileNames } else { exit 1 }",
	}, "; ")
	return []string{"-NoProfile", "-STA", "-Command", script}
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func lookPath(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	resolved, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, name)
	}
	return resolved, nil
}
