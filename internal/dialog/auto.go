package dialog

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Backend names accepted by New
const (
	BackendAuto        = "auto"
	BackendPortal      = "portal"
	BackendZenity      = "zenity"
	BackendKDialog     = "kdialog"
	BackendAppleScript = "osascript"
	BackendPowerShell  = "powershell"
	BackendStatic      = "static"
)

// New returns the chooser for backend. Auto defers probing to the first
// Choose so a host without any dialog program can still start.
func New(backend string, staticPaths []string) (Chooser, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		return &Auto{goos: runtime.GOOS}, nil
	case BackendPortal:
		return NewPortal()
	case BackendZenity:
		return NewZenity("")
	case BackendKDialog:
		return NewKDialog("")
	case BackendAppleScript:
		return NewAppleScript("")
	case BackendPowerShell:
		return NewPowerShell("")
	case BackendStatic:
		return NewStatic(staticPaths...), nil
	}
	return nil, fmt.Errorf("unknown dialog backend %q", backend)
}

// Auto probes the available choosers for the OS and keeps the first that works
type Auto struct {
	goos     string
	mu       sync.Mutex
	resolved Chooser
	probes   []func() (Chooser, error)
}

func (a *Auto) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resolved != nil {
		return a.resolved.Name()
	}
	return BackendAuto
}

func (a *Auto) candidates() []func() (Chooser, error) {
	if a.probes != nil {
		return a.probes
	}
	switch a.goos {
	case "darwin":
		return []func() (Chooser, error){func() (Chooser, error) { return NewAppleScript("") }}
	case "windows":
		return []func() (Chooser, error){func() (Chooser, error) { return NewPowerShell("") }}
	}
	return []func() (Chooser, error){
		func() (Chooser, error) { return NewPortal() },
		func() (Chooser, error) { return NewZenity("") },
		func() (Chooser, error) { return NewKDialog("") },
	}
}

func (a *Auto) resolve() (Chooser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resolved != nil {
		return a.resolved, nil
	}

	log := logger.WithComponent("dialog")
	var errs []string
	for _, probe := range a.candidates() {
		c, err := probe()
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		log.Info().Str("chooser", c.Name()).Msg("File chooser selected")
		a.resolved = c
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(errs, "; "))
}

func (a *Auto) Choose(ctx context.Context, req Request) ([]string, error) {
	c, err := a.resolve()
	if err != nil {
		return nil, err
	}
	return c.Choose(ctx, req)
}
