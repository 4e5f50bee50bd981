package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/tidewm/internal/display"
)

// Configure moves and resizes a window to the given rectangle.
func (c *Conn) Configure(id display.WindowID, r display.Rect) error {
	err := xproto.ConfigureWindowChecked(c.conn(), xproto.Window(id),
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(r.Width),
			uint32(r.Height),
		}).Check()
	if err != nil {
		return fmt.Errorf("configuring window %#x: %w", uint32(id), err)
	}
	if _, ok := c.managed[id]; ok {
		c.managed[id] = r
	}
	return nil
}

// Map makes a window visible.
func (c *Conn) Map(id display.WindowID) error {
	if err := xproto.MapWindowChecked(c.conn(), xproto.Window(id)).Check(); err != nil {
		return fmt.Errorf("mapping window %#x: %w", uint32(id), err)
	}
	return nil
}

// Unmap hides a window.
func (c *Conn) Unmap(id display.WindowID) error {
	if err := xproto.UnmapWindowChecked(c.conn(), xproto.Window(id)).Check(); err != nil {
		return fmt.Errorf("unmapping window %#x: %w", uint32(id), err)
	}
	return nil
}

// Raise restacks a window above its siblings.
func (c *Conn) Raise(id display.WindowID) error {
	err := xproto.ConfigureWindowChecked(c.conn(), xproto.Window(id),
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
	if err != nil {
		return fmt.Errorf("raising window %#x: %w", uint32(id), err)
	}
	return nil
}

// SetInputFocus directs keyboard input to the window. With None the focus
// reverts to pointer-root so keyboard grabs keep working on an empty
// workspace.
func (c *Conn) SetInputFocus(id display.WindowID) error {
	target := xproto.Window(id)
	if id == display.None {
		target = xproto.InputFocusPointerRoot
	}
	err := xproto.SetInputFocusChecked(c.conn(),
		xproto.InputFocusPointerRoot, target, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("focusing window %#x: %w", uint32(id), err)
	}
	return nil
}

// RequestClose asks the client to close via WM_DELETE_WINDOW if it
// participates in WM_PROTOCOLS, otherwise kills its connection.
func (c *Conn) RequestClose(id display.WindowID) error {
	win := xproto.Window(id)
	if c.supportsDelete(win) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: win,
			Type:   c.atomWMProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(c.atomWMDeleteWindow),
				uint32(xproto.TimeCurrentTime),
				0, 0, 0,
			}),
		}
		err := xproto.SendEventChecked(c.conn(), false, win,
			xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
		if err != nil {
			return fmt.Errorf("sending WM_DELETE_WINDOW to %#x: %w", uint32(id), err)
		}
		return nil
	}
	if err := xproto.KillClientChecked(c.conn(), uint32(win)).Check(); err != nil {
		return fmt.Errorf("killing client of window %#x: %w", uint32(id), err)
	}
	return nil
}

func (c *Conn) supportsDelete(win xproto.Window) bool {
	protocols, err := icccm.WmProtocolsGet(c.xu, win)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			return true
		}
	}
	return false
}

// Manage selects the per-window events the engine depends on and records
// the window as ours.
func (c *Conn) Manage(id display.WindowID) error {
	err := xproto.ChangeWindowAttributesChecked(c.conn(), xproto.Window(id),
		xproto.CwEventMask, []uint32{
			xproto.EventMaskEnterWindow |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskPropertyChange,
		}).Check()
	if err != nil {
		return fmt.Errorf("selecting events on window %#x: %w", uint32(id), err)
	}
	c.managed[id] = display.Rect{}
	return nil
}

// WindowTitle fetches the window's title, preferring _NET_WM_NAME over the
// legacy WM_NAME property.
func (c *Conn) WindowTitle(id display.WindowID) (string, error) {
	win := xproto.Window(id)
	if name, err := ewmh.WmNameGet(c.xu, win); err == nil && name != "" {
		return name, nil
	}
	name, err := icccm.WmNameGet(c.xu, win)
	if err != nil {
		return "", fmt.Errorf("reading title of window %#x: %w", uint32(id), err)
	}
	return name, nil
}
