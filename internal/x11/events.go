package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tidewm/internal/display"
)

// NextEvent blocks until the next engine-relevant event arrives and returns
// its translated form. Protocol-level noise (grants, errors from unchecked
// requests, events the engine has no use for) is handled or dropped here.
// A nil error is only returned together with a non-nil event; the connection
// going away surfaces as an error.
func (c *Conn) NextEvent() (display.Event, error) {
	for {
		ev, xerr := c.conn().WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, fmt.Errorf("X connection closed")
		}
		if xerr != nil {
			// Errors from unchecked requests against windows that
			// died mid-flight. Nothing to reconcile here; the
			// DestroyNotify does that.
			c.log.Debug("X protocol error", "error", xerr.Error())
			continue
		}

		switch e := ev.(type) {
		case xproto.MapRequestEvent:
			return display.MapRequest{Window: display.WindowID(e.Window)}, nil

		case xproto.DestroyNotifyEvent:
			delete(c.managed, display.WindowID(e.Window))
			return display.DestroyNotify{Window: display.WindowID(e.Window)}, nil

		case xproto.EnterNotifyEvent:
			// Pointer crossings synthesized by grabs or into child
			// windows are not focus changes.
			if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
				continue
			}
			return display.EnterNotify{Window: display.WindowID(e.Event)}, nil

		case xproto.KeyPressEvent:
			return display.KeyPress{
				Modifiers: e.State &^ c.lockMask,
				Keycode:   uint8(e.Detail),
			}, nil

		case xproto.ButtonPressEvent:
			return display.ButtonPress{
				Window: display.WindowID(e.Event),
				X:      e.EventX,
			}, nil

		case xproto.PropertyNotifyEvent:
			if e.Atom != c.atomWMName && e.Atom != c.atomNetWMName {
				continue
			}
			id := display.WindowID(e.Window)
			if _, ok := c.managed[id]; !ok {
				continue
			}
			title, err := c.WindowTitle(id)
			if err != nil {
				c.log.Debug("reading changed title", "window", uint32(id), "error", err)
				continue
			}
			return display.TitleChange{Window: id, Title: title}, nil

		case xproto.ConfigureNotifyEvent:
			if e.Window != c.root {
				continue
			}
			return display.OutputChange{Geometry: display.Rect{
				X:      0,
				Y:      0,
				Width:  int(e.Width),
				Height: int(e.Height),
			}}, nil

		case xproto.ConfigureRequestEvent:
			c.handleConfigureRequest(e)

		case xproto.ExposeEvent:
			if e.Count != 0 {
				continue
			}
			return display.Expose{Window: display.WindowID(e.Window)}, nil

		case xproto.ClientMessageEvent:
			if e.Type == c.atomWake {
				return display.Wake{}, nil
			}

		case xproto.MapNotifyEvent, xproto.UnmapNotifyEvent,
			xproto.KeyReleaseEvent, xproto.ButtonReleaseEvent,
			xproto.CreateNotifyEvent, xproto.MappingNotifyEvent:
			// Uninteresting.

		default:
			c.log.Debug("unhandled X event", "event", fmt.Sprintf("%T", ev))
		}
	}
}

// handleConfigureRequest answers clients asking for geometry. Managed
// windows get a synthetic ConfigureNotify restating their tiled geometry;
// anything else has its request granted verbatim.
func (c *Conn) handleConfigureRequest(e xproto.ConfigureRequestEvent) {
	if r, ok := c.managed[display.WindowID(e.Window)]; ok {
		cne := xproto.ConfigureNotifyEvent{
			Event:  e.Window,
			Window: e.Window,
			X:      int16(r.X),
			Y:      int16(r.Y),
			Width:  uint16(r.Width),
			Height: uint16(r.Height),
		}
		err := xproto.SendEventChecked(c.conn(), false, e.Window,
			xproto.EventMaskStructureNotify, string(cne.Bytes())).Check()
		if err != nil {
			c.log.Debug("answering configure request", "window", uint32(e.Window), "error", err)
		}
		return
	}

	mask, values := uint16(0), []uint32(nil)
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(int32(e.X)))
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(int32(e.Y)))
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xproto.ConfigWindowSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xproto.ConfigWindowStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(e.StackMode))
	}
	if mask == 0 {
		return
	}
	err := xproto.ConfigureWindowChecked(c.conn(), e.Window, mask, values).Check()
	if err != nil {
		c.log.Debug("granting configure request", "window", uint32(e.Window), "error", err)
	}
}
