package wm

import (
	"testing"

	"github.com/1broseidon/tidewm/internal/display"
	"github.com/1broseidon/tidewm/internal/layout"
)

var (
	winA = display.WindowID(0xa1)
	winB = display.WindowID(0xb2)
	winC = display.WindowID(0xc3)
)

func TestAddFocusesNewWindow(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	if ws.Focused != winA {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winA)
	}
	ws.Add(winB)
	if ws.Focused != winB {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winB)
	}
}

func TestRemoveFocusedRevertsToSlidUpWindow(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)

	ws.Remove(winB)
	if ws.Focused != winA {
		t.Fatalf("after removing focused last window, focus = %#x, want %#x", ws.Focused, winA)
	}
}

func TestRemoveFocusedMiddleFocusesSameIndex(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)
	ws.Add(winC)
	ws.Focused = winB

	ws.Remove(winB)
	// C slid into B's index and takes the focus.
	if ws.Focused != winC {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winC)
	}
}

func TestRemoveNonFocusedKeepsFocus(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)

	ws.Remove(winA)
	if ws.Focused != winB {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winB)
	}
}

func TestRemoveLastWindowClearsFocus(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Remove(winA)
	if ws.Focused != display.None {
		t.Fatalf("focus = %#x, want none", ws.Focused)
	}
	if len(ws.Windows) != 0 {
		t.Fatalf("windows = %v, want empty", ws.Windows)
	}
}

func TestRemoveAbsentWindowIsNoop(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	if ws.Remove(winB) {
		t.Fatal("removing an absent window should report false")
	}
	if ws.Focused != winA || len(ws.Windows) != 1 {
		t.Fatalf("workspace mutated by no-op remove: %+v", ws)
	}
}

func TestCycleFocusWraps(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)
	ws.Add(winC)
	ws.Focused = winB

	ws.CycleFocus(Next)
	if ws.Focused != winC {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winC)
	}
	ws.CycleFocus(Next)
	if ws.Focused != winA {
		t.Fatalf("wrap: focus = %#x, want %#x", ws.Focused, winA)
	}
	ws.CycleFocus(Prev)
	if ws.Focused != winC {
		t.Fatalf("prev wrap: focus = %#x, want %#x", ws.Focused, winC)
	}
}

func TestCycleFocusSingleWindowIsNoop(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.CycleFocus(Next)
	if ws.Focused != winA {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winA)
	}
}

func TestSwapFocusedBounded(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)
	ws.Add(winC)
	ws.Focused = winA

	if ws.SwapFocused(Prev) {
		t.Fatal("swapping past the front should be a no-op")
	}
	if !ws.SwapFocused(Next) {
		t.Fatal("swap next failed")
	}
	if ws.Windows[0] != winB || ws.Windows[1] != winA {
		t.Fatalf("order = %v, want [B A C]", ws.Windows)
	}
	// Focus follows the window, not the slot.
	if ws.Focused != winA {
		t.Fatalf("focus = %#x, want %#x", ws.Focused, winA)
	}

	ws.Focused = winC
	if ws.SwapFocused(Next) {
		t.Fatal("swapping past the end should be a no-op")
	}
}

func TestPromoteFocused(t *testing.T) {
	ws := NewWorkspace()
	ws.Add(winA)
	ws.Add(winB)
	ws.Add(winC)
	ws.Focused = winC

	ws.PromoteFocused()
	if ws.Windows[0] != winC {
		t.Fatalf("order = %v, want C first", ws.Windows)
	}

	// Promoting the master swaps it with the top of the stack.
	ws.Focused = winC
	ws.PromoteFocused()
	if ws.Windows[0] == winC {
		t.Fatalf("order = %v, master should have been demoted", ws.Windows)
	}
}

func TestCycleLayoutPreservesParams(t *testing.T) {
	ws := NewWorkspace()
	ws.Params.Ratio = 0.7
	ws.Params.MasterCount = 2
	ws.PushSplit(layout.SplitVertical)

	for i := 0; i < 4; i++ {
		ws.CycleLayout()
	}
	if ws.Mode != layout.ModeMasterStack {
		t.Fatalf("mode after full cycle = %s, want master-stack", ws.Mode)
	}
	if ws.Params.Ratio != 0.7 || ws.Params.MasterCount != 2 || len(ws.Params.Splits) != 1 {
		t.Fatalf("params reset across layout cycle: %+v", ws.Params)
	}
}

func TestFocusInvariantHeldAcrossMutations(t *testing.T) {
	ws := NewWorkspace()
	ops := []func(){
		func() { ws.Add(winA) },
		func() { ws.Add(winB) },
		func() { ws.CycleFocus(Next) },
		func() { ws.Add(winC) },
		func() { ws.Remove(winB) },
		func() { ws.SwapFocused(Prev) },
		func() { ws.Remove(winC) },
		func() { ws.Remove(winA) },
	}
	for i, op := range ops {
		op()
		if len(ws.Windows) == 0 {
			if ws.Focused != display.None {
				t.Fatalf("op %d: empty workspace with focus %#x", i, ws.Focused)
			}
			continue
		}
		if ws.indexOf(ws.Focused) < 0 {
			t.Fatalf("op %d: focused %#x not a member of %v", i, ws.Focused, ws.Windows)
		}
	}
}
