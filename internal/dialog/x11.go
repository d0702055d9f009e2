package dialog

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/SwanFlutter/image-picker-master/internal/logger"
)

// ActiveWindow returns the X11 window that currently has focus according to
// _NET_ACTIVE_WINDOW, or 0 when there is no X server or no EWMH window manager.
// Dialogs attach to it so they stay above the calling application.
func ActiveWindow() uint32 {
	win, err := activeWindow()
	if err != nil {
		logger.WithComponent("dialog").Debug().Err(err).Msg("No parent window for dialog")
		return 0
	}
	return win
}

func activeWindow() (uint32, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	name := "_NET_ACTIVE_WINDOW"
	atom, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get %s atom: %w", name, err)
	}
	if atom.Atom == xproto.AtomNone {
		return 0, fmt.Errorf("%s not supported by the window manager", name)
	}

	reply, err := xproto.GetProperty(conn, false, root, atom.Atom, xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get %s property: %w", name, err)
	}
	return windowFromProperty(reply.Value)
}

// windowFromProperty decodes the first 32-bit window ID of a property value
func windowFromProperty(value []byte) (uint32, error) {
	if len(value) < 4 {
		return 0, fmt.Errorf("property too short (%d bytes)", len(value))
	}
	win := uint32(value[0]) |
		uint32(value[1])<<8 |
		uint32(value[2])<<16 |
		uint32(value[3])<<24
	return win, nil
}
