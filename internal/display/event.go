package display

// Event is the closed set of display-server notifications the engine reacts
// to. The x11 package translates raw protocol events into these; everything
// not representable here is dropped before it reaches the engine.
type Event interface {
	isEvent()
}

// MapRequest reports a client asking for its window to become visible.
type MapRequest struct {
	Window WindowID
}

// DestroyNotify reports that a window is gone.
type DestroyNotify struct {
	Window WindowID
}

// EnterNotify reports the pointer entering a window (focus-follows-mouse).
type EnterNotify struct {
	Window WindowID
}

// KeyPress reports a grabbed key combination. Modifiers are already cleaned
// of Lock/NumLock noise by the translation layer.
type KeyPress struct {
	Modifiers uint16
	Keycode   uint8
}

// ButtonPress reports a pointer button press, with the x coordinate relative
// to the receiving window. The engine only acts on presses landing on the
// bar window.
type ButtonPress struct {
	Window WindowID
	X      int16
}

// TitleChange reports a WM_NAME property update.
type TitleChange struct {
	Window WindowID
	Title  string
}

// OutputChange reports new screen geometry.
type OutputChange struct {
	Geometry Rect
}

// Expose reports that a region of a window we draw (the bar) needs repaint.
type Expose struct {
	Window WindowID
}

// Wake is posted by the waker connection when an out-of-band command (IPC,
// MCP) is queued for the event loop.
type Wake struct{}

func (MapRequest) isEvent()    {}
func (DestroyNotify) isEvent() {}
func (EnterNotify) isEvent()   {}
func (KeyPress) isEvent()      {}
func (ButtonPress) isEvent()   {}
func (TitleChange) isEvent()   {}
func (OutputChange) isEvent()  {}
func (Expose) isEvent()        {}
func (Wake) isEvent()          {}
