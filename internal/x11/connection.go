// Package x11 implements the display.Server interface and event translation
// on top of the X protocol, using xgb for the wire and xgbutil for keysym
// and property helpers.
package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tidewm/internal/display"
)

// Conn owns the window manager's X connection: the substructure-redirect
// claim on the root window, the atoms we speak, and the set of windows we
// have taken under management.
type Conn struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *slog.Logger

	atomWMProtocols    xproto.Atom
	atomWMDeleteWindow xproto.Atom
	atomWMName         xproto.Atom
	atomNetWMName      xproto.Atom
	atomWake           xproto.Atom

	// lockMask holds the modifier bits stripped from key events before
	// chord lookup (CapsLock plus whatever NumLock is bound to).
	lockMask uint16

	// managed tracks windows we tile, with their last assigned geometry.
	// ConfigureRequest handling needs this to answer clients without
	// involving the engine.
	managed map[display.WindowID]display.Rect
}

// wakeAtomName is the ClientMessage type used to interrupt the blocking
// event read. Both the main connection and the waker intern it; atom IDs
// are server-global so they compare equal across connections.
const wakeAtomName = "TIDEWM_WAKE"

// Connect opens the X display and claims window management rights on the
// root window. It fails if another window manager is already running.
func Connect(logger *slog.Logger) (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	c := &Conn{
		xu:       xu,
		root:     xu.RootWin(),
		log:      logger,
		lockMask: xproto.ModMaskLock | modMaskForKeysym(xu, "Num_Lock"),
		managed:  make(map[display.WindowID]display.Rect),
	}

	for _, a := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &c.atomWMProtocols},
		{"WM_DELETE_WINDOW", &c.atomWMDeleteWindow},
		{"WM_NAME", &c.atomWMName},
		{"_NET_WM_NAME", &c.atomNetWMName},
		{wakeAtomName, &c.atomWake},
	} {
		reply, err := xproto.InternAtom(xu.Conn(), false, uint16(len(a.name)), a.name).Reply()
		if err != nil {
			xu.Conn().Close()
			return nil, fmt.Errorf("interning atom %s: %w", a.name, err)
		}
		*a.dst = reply.Atom
	}

	err = xproto.ChangeWindowAttributesChecked(xu.Conn(), c.root, xproto.CwEventMask, []uint32{
		xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskStructureNotify,
	}).Check()
	if err != nil {
		xu.Conn().Close()
		if _, ok := err.(xproto.AccessError); ok {
			return nil, fmt.Errorf("another window manager is already running")
		}
		return nil, fmt.Errorf("selecting root window events: %w", err)
	}

	return c, nil
}

// XUtil exposes the underlying xgbutil handle for collaborators that draw
// (the bar) or grab keys.
func (c *Conn) XUtil() *xgbutil.XUtil { return c.xu }

// Root returns the root window ID.
func (c *Conn) Root() xproto.Window { return c.root }

// OutputGeometry reports the root window's current size.
func (c *Conn) OutputGeometry() display.Rect {
	screen := c.xu.Screen()
	return display.Rect{
		X:      0,
		Y:      0,
		Width:  int(screen.WidthInPixels),
		Height: int(screen.HeightInPixels),
	}
}

// ExistingWindows lists the viewable, non-override-redirect top-level
// windows present when the manager starts, so they can be adopted.
func (c *Conn) ExistingWindows() ([]display.WindowID, error) {
	tree, err := xproto.QueryTree(c.xu.Conn(), c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("querying window tree: %w", err)
	}
	var wins []display.WindowID
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.xu.Conn(), child).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		wins = append(wins, display.WindowID(child))
	}
	return wins, nil
}

// Close disconnects from the X server.
func (c *Conn) Close() {
	c.xu.Conn().Close()
}

func (c *Conn) conn() *xgb.Conn { return c.xu.Conn() }

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// keybind grabs one variant per entry in xevent.IgnoreMods; cover
	// CapsLock and NumLock so chords fire regardless of lock state.
	masks := []uint16{0, xproto.ModMaskLock}
	if numLock := modMaskForKeysym(xu, "Num_Lock"); numLock != 0 && numLock != xproto.ModMaskLock {
		masks = append(masks, numLock, numLock|xproto.ModMaskLock)
	}
	xevent.IgnoreMods = masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
