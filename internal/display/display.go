// Package display defines the platform-neutral types the window-management
// engine operates on, plus the capability interface the engine uses to talk
// to the display server. The X11 implementation lives in internal/x11; tests
// substitute fakes.
package display

// WindowID is a display-server-issued window identifier. The engine never
// interprets its bits, only compares for equality and uses it as a map key.
type WindowID uint32

// None is the zero WindowID; X11 guarantees real window IDs are non-zero.
const None WindowID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Server abstracts the display-server commands the engine issues. All calls
// may fail if the target window has been destroyed concurrently; callers are
// expected to absorb such errors and rely on the eventual DestroyNotify to
// reconcile state.
type Server interface {
	// Configure moves and resizes a window.
	Configure(id WindowID, r Rect) error
	// Map makes a window visible.
	Map(id WindowID) error
	// Unmap hides a window.
	Unmap(id WindowID) error
	// Raise restacks a window above its siblings.
	Raise(id WindowID) error
	// SetInputFocus directs keyboard input to the window, or back to the
	// root/pointer when id is None.
	SetInputFocus(id WindowID) error
	// RequestClose asks the client owning the window to close it
	// (WM_DELETE_WINDOW, with a kill fallback for uncooperative clients).
	RequestClose(id WindowID) error
	// Manage registers interest in a newly mapped window's events
	// (enter-notify, title changes, structure notifications).
	Manage(id WindowID) error
	// WindowTitle fetches the current title of a window.
	WindowTitle(id WindowID) (string, error)
}
