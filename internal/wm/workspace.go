// Package wm holds the window-management engine: the workspace/window data
// model, the focus policy, and the event-driven controller that ties display
// server events and keybindings to state mutations and re-layout.
package wm

import (
	"fmt"

	"github.com/1broseidon/tidewm/internal/display"
	"github.com/1broseidon/tidewm/internal/layout"
)

// Direction selects the neighbor for focus cycling and window swaps.
type Direction int

const (
	Next Direction = iota
	Prev
)

// Workspace is one of the fixed set of window containers. Windows keeps
// insertion order; that order is the stack order consumed by every layout
// algorithm and by focus cycling. Focused is display.None iff Windows is
// empty, and otherwise always a member of Windows.
type Workspace struct {
	Windows    []display.WindowID
	Focused    display.WindowID
	Mode       layout.Mode
	Params     layout.Params
	BarVisible bool
}

// NewWorkspace returns an empty workspace with the default layout.
func NewWorkspace() *Workspace {
	return &Workspace{
		Mode:       layout.ModeMasterStack,
		Params:     layout.DefaultParams(),
		BarVisible: true,
	}
}

// Add appends w to the window sequence and focuses it. Adding a window that
// is already present is an invariant violation; the caller (the state layer)
// guards against it via the owner index.
func (ws *Workspace) Add(w display.WindowID) {
	if ws.indexOf(w) >= 0 {
		panic(fmt.Sprintf("wm: window %#x added twice to workspace", w))
	}
	ws.Windows = append(ws.Windows, w)
	ws.Focused = w
	ws.checkFocusInvariant()
}

// Remove deletes w from the window sequence. Removing a window that is not
// present is a no-op. If w was focused, focus passes to the window now
// occupying w's old index, or the new last window when w was last, or to
// nothing when the workspace became empty.
func (ws *Workspace) Remove(w display.WindowID) bool {
	i := ws.indexOf(w)
	if i < 0 {
		return false
	}
	ws.Windows = append(ws.Windows[:i], ws.Windows[i+1:]...)
	if ws.Focused == w {
		switch {
		case len(ws.Windows) == 0:
			ws.Focused = display.None
		case i < len(ws.Windows):
			ws.Focused = ws.Windows[i]
		default:
			ws.Focused = ws.Windows[len(ws.Windows)-1]
		}
	}
	ws.checkFocusInvariant()
	return true
}

// CycleFocus moves focus to the adjacent window in stack order, wrapping at
// either end. No-op on empty or single-window workspaces.
func (ws *Workspace) CycleFocus(dir Direction) {
	n := len(ws.Windows)
	if n < 2 {
		return
	}
	i := ws.indexOf(ws.Focused)
	if i < 0 {
		ws.Focused = ws.Windows[0]
		return
	}
	if dir == Next {
		ws.Focused = ws.Windows[(i+1)%n]
	} else {
		ws.Focused = ws.Windows[(i+n-1)%n]
	}
	ws.checkFocusInvariant()
}

// SwapFocused exchanges the focused window with its adjacent neighbor in
// stack order. Swapping past either end is a no-op.
func (ws *Workspace) SwapFocused(dir Direction) bool {
	i := ws.indexOf(ws.Focused)
	if i < 0 {
		return false
	}
	j := i + 1
	if dir == Prev {
		j = i - 1
	}
	if j < 0 || j >= len(ws.Windows) {
		return false
	}
	ws.Windows[i], ws.Windows[j] = ws.Windows[j], ws.Windows[i]
	return true
}

// PromoteFocused moves the focused window to the head of the stack (the
// master slot). If it already is the master, it swaps with the first stack
// window instead, so the binding always does something useful.
func (ws *Workspace) PromoteFocused() bool {
	if len(ws.Windows) < 2 {
		return false
	}
	i := ws.indexOf(ws.Focused)
	if i < 0 {
		return false
	}
	if i == 0 {
		i = 1
	}
	ws.Windows[0], ws.Windows[i] = ws.Windows[i], ws.Windows[0]
	return true
}

// CycleLayout rotates to the next mode in the fixed order. Mode parameters
// are kept, so cycling away and back restores the previous ratio, master
// count and split history.
func (ws *Workspace) CycleLayout() {
	ws.Mode = ws.Mode.Next()
}

// PushSplit records an explicit dwindle direction for the next undecided
// split depth. Deeper splits keep following the depth-parity default.
func (ws *Workspace) PushSplit(dir layout.SplitDir) {
	ws.Params.Splits = append(ws.Params.Splits, dir)
}

func (ws *Workspace) indexOf(w display.WindowID) int {
	if w == display.None {
		return -1
	}
	for i, win := range ws.Windows {
		if win == w {
			return i
		}
	}
	return -1
}

// checkFocusInvariant aborts on a corrupted focus pointer. A violation is a
// bug in this package, not an external fault; continuing would desynchronize
// the model from the display server.
func (ws *Workspace) checkFocusInvariant() {
	if len(ws.Windows) == 0 {
		if ws.Focused != display.None {
			panic(fmt.Sprintf("wm: empty workspace has focused window %#x", ws.Focused))
		}
		return
	}
	if ws.Focused == display.None {
		panic("wm: non-empty workspace has no focused window")
	}
	if ws.indexOf(ws.Focused) < 0 {
		panic(fmt.Sprintf("wm: focused window %#x is not in the workspace", ws.Focused))
	}
}
