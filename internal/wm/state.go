package wm

import (
	"fmt"

	"github.com/1broseidon/tidewm/internal/display"
)

// NumWorkspaces is the fixed workspace count.
const NumWorkspaces = 9

// KeyChord is one grabbed key combination, with modifiers already stripped
// of Lock/NumLock bits.
type KeyChord struct {
	Modifiers uint16
	Keycode   uint8
}

// State is the engine's entire mutable model. It is exclusively owned by the
// controller goroutine; nothing else writes it.
type State struct {
	Workspaces [NumWorkspaces]*Workspace
	Active     int

	// owner is the inverse index from window to owning workspace. A
	// window appears here iff it appears in exactly one workspace's
	// sequence.
	owner map[display.WindowID]int

	// titles caches WM_NAME per window, refreshed on property change.
	// Display-only; never consulted by layout or focus logic.
	titles map[display.WindowID]string

	// Output is the screen geometry, updated on output-change events.
	Output display.Rect

	// Keymap maps grabbed chords to actions. Built once at startup from
	// the parsed config; read-only afterwards.
	Keymap map[KeyChord]Action
}

// NewState builds the initial model from the startup screen geometry and an
// already-resolved keymap.
func NewState(output display.Rect, keymap map[KeyChord]Action) *State {
	s := &State{
		Active: 0,
		owner:  make(map[display.WindowID]int),
		titles: make(map[display.WindowID]string),
		Output: output,
		Keymap: keymap,
	}
	for i := range s.Workspaces {
		s.Workspaces[i] = NewWorkspace()
	}
	return s
}

// ActiveWorkspace returns the workspace currently on screen.
func (s *State) ActiveWorkspace() *Workspace {
	return s.Workspaces[s.Active]
}

// WorkspaceOf reports which workspace owns w.
func (s *State) WorkspaceOf(w display.WindowID) (int, bool) {
	idx, ok := s.owner[w]
	return idx, ok
}

// Managed reports whether the engine knows about w at all.
func (s *State) Managed(w display.WindowID) bool {
	_, ok := s.owner[w]
	return ok
}

// Attach inserts a new window into the active workspace and focuses it.
// Re-attaching an already-managed window is a no-op (some clients issue
// repeated map requests).
func (s *State) Attach(w display.WindowID) bool {
	if _, ok := s.owner[w]; ok {
		return false
	}
	s.ActiveWorkspace().Add(w)
	s.owner[w] = s.Active
	return true
}

// Detach removes a window from the model entirely. It returns the index of
// the workspace that owned it.
func (s *State) Detach(w display.WindowID) (int, bool) {
	idx, ok := s.owner[w]
	if !ok {
		return 0, false
	}
	if !s.Workspaces[idx].Remove(w) {
		panic(fmt.Sprintf("wm: owner index references window %#x absent from workspace %d", w, idx))
	}
	delete(s.owner, w)
	delete(s.titles, w)
	return idx, true
}

// MoveWindow transfers a window from its current workspace to target,
// appending it to the target's sequence. Focus on the source workspace is
// reassigned by the removal; focus on the target only changes if the target
// was empty (its invariant requires a focused window once non-empty).
func (s *State) MoveWindow(w display.WindowID, target int) bool {
	src, ok := s.owner[w]
	if !ok || src == target {
		return false
	}
	if !s.Workspaces[src].Remove(w) {
		panic(fmt.Sprintf("wm: owner index references window %#x absent from workspace %d", w, src))
	}
	dst := s.Workspaces[target]
	dst.Windows = append(dst.Windows, w)
	if dst.Focused == display.None {
		dst.Focused = w
	}
	dst.checkFocusInvariant()
	s.owner[w] = target
	return true
}

// SetTitle updates the cached title for a managed window.
func (s *State) SetTitle(w display.WindowID, title string) {
	if _, ok := s.owner[w]; ok {
		s.titles[w] = title
	}
}

// Title returns the cached title for w, or "" when unknown.
func (s *State) Title(w display.WindowID) string {
	return s.titles[w]
}

// Occupied reports, per workspace, whether it holds any windows.
func (s *State) Occupied() [NumWorkspaces]bool {
	var occ [NumWorkspaces]bool
	for i, ws := range s.Workspaces {
		occ[i] = len(ws.Windows) > 0
	}
	return occ
}

// WindowCount returns the total number of managed windows.
func (s *State) WindowCount() int {
	return len(s.owner)
}

// CheckOwnerInvariant verifies that the owner index is exactly the union of
// the workspace sequences. It aborts on any mismatch; the index is
// load-bearing for every event that addresses a window by handle.
func (s *State) CheckOwnerInvariant() {
	seen := make(map[display.WindowID]int, len(s.owner))
	for i, ws := range s.Workspaces {
		for _, w := range ws.Windows {
			if prev, dup := seen[w]; dup {
				panic(fmt.Sprintf("wm: window %#x owned by workspaces %d and %d", w, prev, i))
			}
			seen[w] = i
			if idx, ok := s.owner[w]; !ok || idx != i {
				panic(fmt.Sprintf("wm: owner index out of sync for window %#x (workspace %d)", w, i))
			}
		}
	}
	if len(seen) != len(s.owner) {
		panic(fmt.Sprintf("wm: owner index has %d entries, workspaces hold %d windows", len(s.owner), len(seen)))
	}
}
