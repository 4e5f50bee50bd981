package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/tidewm/internal/config"
	"github.com/1broseidon/tidewm/internal/wm"
)

// keysymNames maps the lowercase key names accepted in the config file to
// the X keysym names that differ from them.
var keysymNames = map[string]string{
	"return":    "Return",
	"escape":    "Escape",
	"tab":       "Tab",
	"backspace": "BackSpace",
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
}

// GrabKeys resolves the parsed bindings to keycodes, grabs each chord on
// the root window, and returns the dispatch table the engine indexes key
// events with. A key name no keyboard layout maps is an error; a chord the
// server refuses to grab (already taken) is skipped with a warning.
func (c *Conn) GrabKeys(bindings []config.Binding, modKey string) (map[wm.KeyChord]wm.Action, error) {
	modMask, err := primaryModMask(modKey)
	if err != nil {
		return nil, err
	}

	keymap := make(map[wm.KeyChord]wm.Action, len(bindings))
	for _, b := range bindings {
		mask, err := chordMask(b.Mods, modMask)
		if err != nil {
			return nil, err
		}
		name := b.Key
		if mapped, ok := keysymNames[name]; ok {
			name = mapped
		}
		keycodes := keybind.StrToKeycodes(c.xu, name)
		if len(keycodes) == 0 {
			return nil, fmt.Errorf("key %q is not mapped by the current keyboard layout", b.Key)
		}
		for _, kc := range keycodes {
			if err := keybind.GrabChecked(c.xu, c.root, mask, kc); err != nil {
				c.log.Warn("key grab refused", "key", b.Key, "error", err)
				continue
			}
			keymap[wm.KeyChord{Modifiers: mask, Keycode: uint8(kc)}] = b.Action
		}
	}
	return keymap, nil
}

// UngrabKeys releases every key grab on the root window.
func (c *Conn) UngrabKeys() {
	err := xproto.UngrabKeyChecked(c.conn(), xproto.GrabAny, c.root, xproto.ModMaskAny).Check()
	if err != nil {
		c.log.Debug("ungrabbing keys", "error", err)
	}
}

func primaryModMask(modKey string) (uint16, error) {
	switch modKey {
	case "super":
		return xproto.ModMask4, nil
	case "alt":
		return xproto.ModMask1, nil
	default:
		return 0, fmt.Errorf("unknown mod key %q", modKey)
	}
}

func chordMask(mods []string, primary uint16) (uint16, error) {
	var mask uint16
	for _, m := range mods {
		switch m {
		case "mod":
			mask |= primary
		case "shift":
			mask |= xproto.ModMaskShift
		case "control":
			mask |= xproto.ModMaskControl
		case "alt":
			mask |= xproto.ModMask1
		default:
			return 0, fmt.Errorf("unknown modifier %q", m)
		}
	}
	return mask, nil
}
