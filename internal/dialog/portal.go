package dialog

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// Portal D-Bus constants
const (
	portalService    = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	fileChooserIface = "org.freedesktop.portal.FileChooser"
	requestIface     = "org.freedesktop.portal.Request"
)

// Request.Response codes
const (
	responseSuccess   = 0
	responseCancelled = 1
)

// patternGlob is the glob kind in a FileChooser filter pattern
const patternGlob = 0

// portalPattern and portalFilter marshal as a(sa(us))
type portalPattern struct {
	Kind    uint32
	Pattern string
}

type portalFilter struct {
	Name     string
	Patterns []portalPattern
}

var requestCounter atomic.Uint64

// Portal chooses files through xdg-desktop-portal's FileChooser interface
type Portal struct {
	conn *dbus.Conn
	mu   sync.Mutex
}

// NewPortal connects to the session bus and checks the portal is running
func NewPortal() (*Portal, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to session bus: %v", ErrUnavailable, err)
	}

	var hasOwner bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, portalService).Store(&hasOwner); err != nil || !hasOwner {
		conn.Close()
		return nil, fmt.Errorf("%w: %s not on the session bus", ErrUnavailable, portalService)
	}
	return &Portal{conn: conn}, nil
}

func (p *Portal) Name() string { return "portal" }

// Close closes the bus connection
func (p *Portal) Close() error {
	return p.conn.Close()
}

// Choose calls FileChooser.OpenFile and waits for the Response signal
func (p *Portal) Choose(ctx context.Context, req Request) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.WithComponent("portal")
	obj := p.conn.Object(portalService, portalPath)

	token := fmt.Sprintf("imagepicker%d_%d", os.Getpid(), requestCounter.Add(1))
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"multiple":     dbus.MakeVariant(req.Multiple),
		"modal":        dbus.MakeVariant(true),
	}
	if filters := portalFilters(req); len(filters) > 0 {
		options["filters"] = dbus.MakeVariant(filters)
		options["current_filter"] = dbus.MakeVariant(filters[0])
	}

	parent := ""
	if req.ParentWindow != 0 {
		parent = fmt.Sprintf("x11:%x", req.ParentWindow)
	}

	// Set up response channel BEFORE making the call
	responseChan := make(chan *dbus.Signal, 10)

	matchRule := fmt.Sprintf("type='signal',interface='%s',member='Response'", requestIface)
	if err := p.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		log.Warn().Err(err).Msg("Failed to add match rule")
	}
	defer p.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule)

	p.conn.Signal(responseChan)
	defer p.conn.RemoveSignal(responseChan)

	var requestPath dbus.ObjectPath
	if err := obj.Call(fileChooserIface+".OpenFile", 0, parent, req.Title, options).Store(&requestPath); err != nil {
		return nil, fmt.Errorf("OpenFile call failed: %w", err)
	}
	log.Debug().Str("request_path", string(requestPath)).Msg("Waiting for OpenFile response")

	for {
		select {
		case <-ctx.Done():
			p.conn.Object(portalService, requestPath).Call(requestIface+".Close", 0)
			return nil, ctx.Err()
		case sig := <-responseChan:
			if sig.Path != requestPath || sig.Name != requestIface+".Response" {
				continue
			}
			return parseResponse(sig.Body)
		}
	}
}

func portalFilters(req Request) []portalFilter {
	if req.Filter.MatchesAll() {
		return nil
	}
	f := portalFilter{Name: req.Filter.Name}
	for _, pat := range req.Filter.Patterns {
		f.Patterns = append(f.Patterns, portalPattern{Kind: patternGlob, Pattern: pat})
	}
	return []portalFilter{f, {Name: "All Files", Patterns: []portalPattern{{Kind: patternGlob, Pattern: "*"}}}}
}

// parseResponse reads the (u, a{sv}) body of Request.Response
func parseResponse(body []interface{}) ([]string, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: invalid response", ErrBadResult)
	}
	code, ok := body[0].(uint32)
	if !ok {
		return nil, fmt.Errorf("%w: response code is %T", ErrBadResult, body[0])
	}
	switch code {
	case responseSuccess:
	case responseCancelled:
		return nil, ErrCancelled
	default:
		return nil, fmt.Errorf("portal request ended (code %d)", code)
	}

	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: results are %T", ErrBadResult, body[1])
	}
	v, ok := results["uris"]
	if !ok {
		return nil, fmt.Errorf("%w: no uris in response", ErrBadResult)
	}
	uris, ok := v.Value().([]string)
	if !ok {
		return nil, fmt.Errorf("%w: uris are %T", ErrBadResult, v.Value())
	}

	var paths []string
	for _, raw := range uris {
		path, err := uriToPath(raw)
		if err != nil {
			logger.WithComponent("portal").Debug().Err(err).Str("uri", raw).Msg("Skipping selected item")
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 && len(uris) > 0 {
		return nil, fmt.Errorf("%w: no local files among %d uris", ErrBadResult, len(uris))
	}
	if len(paths) == 0 {
		return nil, ErrCancelled
	}
	return paths, nil
}

func uriToPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(u.Scheme, "file") {
		return "", fmt.Errorf("not a local file: %s", u.Scheme)
	}
	if u.Path == "" {
		return "", fmt.Errorf("empty path")
	}
	return u.Path, nil
}
