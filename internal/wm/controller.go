package wm

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/tidewm/internal/bar"
	"github.com/1broseidon/tidewm/internal/display"
	"github.com/1broseidon/tidewm/internal/layout"
)

// ErrQuit is returned from event handling when an orderly shutdown has been
// requested. The event loop stops and the process exits.
var ErrQuit = errors.New("wm: quit requested")

// Bar is the status-bar collaborator: it receives state snapshots and
// answers click hit-tests. Implemented by internal/bar; faked in tests.
type Bar interface {
	Push(bar.Snapshot)
	HitTest(x int16) (int, bool)
	SetVisible(visible bool)
	OwnsWindow(w display.WindowID) bool
}

// Spawner launches external programs fire-and-forget. The engine never
// waits for or tracks what it spawns; any window a program creates arrives
// later as an ordinary map request.
type Spawner interface {
	Spawn(command string)
}

// Controller is the single state machine driving the window manager. It
// receives events, mutates State, and issues commands back to the display
// server. It is strictly single-threaded: each event is processed to
// completion before the next is read.
type Controller struct {
	state   *State
	srv     display.Server
	bar     Bar
	spawner Spawner
	log     *slog.Logger

	// pending drains actions queued out-of-band (IPC, MCP); invoked when
	// a Wake event arrives, so all mutation stays on the event loop.
	pending func() []Action
}

// ControllerConfig wires the controller's collaborators.
type ControllerConfig struct {
	State   *State
	Server  display.Server
	Bar     Bar
	Spawner Spawner
	Logger  *slog.Logger
	Pending func() []Action
}

// NewController creates a controller over an existing state.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pending := cfg.Pending
	if pending == nil {
		pending = func() []Action { return nil }
	}
	return &Controller{
		state:   cfg.State,
		srv:     cfg.Server,
		bar:     cfg.Bar,
		spawner: cfg.Spawner,
		log:     logger,
		pending: pending,
	}
}

// HandleEvent processes one display-server event to completion. It returns
// ErrQuit when shutdown was requested; any other event outcome is nil (the
// engine never treats a protocol-level failure as fatal).
func (c *Controller) HandleEvent(ev display.Event) error {
	switch e := ev.(type) {
	case display.MapRequest:
		c.handleMapRequest(e.Window)
	case display.DestroyNotify:
		c.handleDestroyNotify(e.Window)
	case display.EnterNotify:
		c.handleEnterNotify(e.Window)
	case display.KeyPress:
		if a, ok := c.state.Keymap[KeyChord{Modifiers: e.Modifiers, Keycode: e.Keycode}]; ok {
			return c.Dispatch(a)
		}
	case display.ButtonPress:
		if c.bar.OwnsWindow(e.Window) {
			if idx, ok := c.bar.HitTest(e.X); ok {
				return c.Dispatch(Action{Kind: ActionWorkspace, Workspace: idx})
			}
		}
	case display.TitleChange:
		c.state.SetTitle(e.Window, e.Title)
		if e.Window == c.state.ActiveWorkspace().Focused {
			c.pushBar()
		}
	case display.OutputChange:
		c.log.Info("output geometry changed", "width", e.Geometry.Width, "height", e.Geometry.Height)
		c.state.Output = e.Geometry
		c.relayout()
	case display.Expose:
		if c.bar.OwnsWindow(e.Window) {
			c.pushBar()
		}
	case display.Wake:
		actions := c.pending()
		if len(actions) == 0 {
			// Periodic tick with nothing queued; refresh the bar clock.
			c.pushBar()
			return nil
		}
		for _, a := range actions {
			if err := c.Dispatch(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dispatch executes one action against the model and applies the result to
// the display server.
func (c *Controller) Dispatch(a Action) error {
	ws := c.state.ActiveWorkspace()

	switch a.Kind {
	case ActionSpawn:
		c.log.Info("spawning program", "command", a.Command)
		c.spawner.Spawn(a.Command)

	case ActionCloseFocused:
		// State is not mutated here; the client's destroy notify (if it
		// complies) drives the actual removal.
		if ws.Focused != display.None {
			c.requestClose(ws.Focused)
		}

	case ActionQuit:
		c.log.Info("quit requested, closing managed windows")
		for _, other := range c.state.Workspaces {
			for _, w := range other.Windows {
				c.requestClose(w)
			}
		}
		return ErrQuit

	case ActionFocusNext:
		ws.CycleFocus(Next)
		c.applyFocus()
		c.pushBar()

	case ActionFocusPrev:
		ws.CycleFocus(Prev)
		c.applyFocus()
		c.pushBar()

	case ActionSwapNext:
		if ws.SwapFocused(Next) {
			c.relayout()
		}

	case ActionSwapPrev:
		if ws.SwapFocused(Prev) {
			c.relayout()
		}

	case ActionPromoteMaster:
		if ws.PromoteFocused() {
			c.relayout()
		}

	case ActionCycleLayout:
		ws.CycleLayout()
		c.log.Info("layout changed", "workspace", c.state.Active+1, "mode", ws.Mode)
		c.relayout()
		c.applyFocus()

	case ActionToggleBar:
		ws.BarVisible = !ws.BarVisible
		c.bar.SetVisible(ws.BarVisible)
		c.relayout()

	case ActionSplitHorizontal, ActionSplitVertical:
		ws.PushSplit(a.splitDir())
		c.relayout()

	case ActionWorkspace:
		c.switchWorkspace(a.Workspace)

	case ActionMoveToWorkspace:
		c.moveFocusedTo(a.Workspace)
	}
	return nil
}

func (c *Controller) handleMapRequest(w display.WindowID) {
	if c.state.Attach(w) {
		c.state.CheckOwnerInvariant()
		if err := c.srv.Manage(w); err != nil {
			c.log.Debug("manage failed", "window", w, "err", err)
		}
		if title, err := c.srv.WindowTitle(w); err == nil {
			c.state.SetTitle(w, title)
		}
		c.log.Info("window mapped", "window", w, "workspace", c.state.Active+1)
	}
	c.relayout()
	c.applyFocus()
}

func (c *Controller) handleDestroyNotify(w display.WindowID) {
	idx, ok := c.state.Detach(w)
	if !ok {
		return
	}
	c.state.CheckOwnerInvariant()
	c.log.Info("window destroyed", "window", w, "workspace", idx+1)
	if idx == c.state.Active {
		c.relayout()
		c.applyFocus()
	} else {
		// Only bar occupancy changed.
		c.pushBar()
	}
}

func (c *Controller) handleEnterNotify(w display.WindowID) {
	idx, ok := c.state.WorkspaceOf(w)
	if !ok || idx != c.state.Active {
		return
	}
	ws := c.state.ActiveWorkspace()
	if ws.Focused == w {
		return
	}
	// Focus-only update; geometry is untouched.
	ws.Focused = w
	ws.checkFocusInvariant()
	c.applyFocus()
	c.pushBar()
}

// switchWorkspace hides the old workspace, shows the new one, and transfers
// input focus. Switching to the already-active workspace is a no-op.
func (c *Controller) switchWorkspace(target int) {
	if target == c.state.Active || target < 0 || target >= NumWorkspaces {
		return
	}
	for _, w := range c.state.ActiveWorkspace().Windows {
		c.unmapWin(w)
	}
	c.state.Active = target
	ws := c.state.ActiveWorkspace()
	c.log.Info("workspace switched", "workspace", target+1, "windows", len(ws.Windows))
	c.bar.SetVisible(ws.BarVisible)
	c.relayout()
	c.applyFocus()
}

// moveFocusedTo sends the focused window to another workspace. The window
// is unmapped immediately: it now belongs to a non-visible workspace.
func (c *Controller) moveFocusedTo(target int) {
	if target < 0 || target >= NumWorkspaces {
		return
	}
	w := c.state.ActiveWorkspace().Focused
	if w == display.None {
		return
	}
	if !c.state.MoveWindow(w, target) {
		return
	}
	c.state.CheckOwnerInvariant()
	c.log.Info("window moved", "window", w, "workspace", target+1)
	c.unmapWin(w)
	c.relayout()
	c.applyFocus()
}

// relayout recomputes the active workspace's geometry from scratch and
// applies it. Recomputation is idempotent: applying identical geometry
// twice is a harmless no-op.
func (c *Controller) relayout() {
	ws := c.state.ActiveWorkspace()
	res := layout.Compute(ws.Windows, ws.Focused, ws.Mode, ws.Params, c.usableArea(ws))
	for _, w := range ws.Windows {
		r, ok := res[w]
		if !ok {
			// Monocle leaves non-focused windows unplaced; hide them.
			c.unmapWin(w)
			continue
		}
		if err := c.srv.Configure(w, r); err != nil {
			c.log.Debug("configure dropped", "window", w, "err", err)
		}
		if err := c.srv.Map(w); err != nil {
			c.log.Debug("map dropped", "window", w, "err", err)
		}
	}
	c.pushBar()
}

// applyFocus points keyboard input at the active workspace's focused
// window, raising it, or reverts focus to the root when there is none.
func (c *Controller) applyFocus() {
	ws := c.state.ActiveWorkspace()
	if err := c.srv.SetInputFocus(ws.Focused); err != nil {
		c.log.Debug("focus dropped", "window", ws.Focused, "err", err)
		return
	}
	if ws.Focused != display.None {
		if err := c.srv.Raise(ws.Focused); err != nil {
			c.log.Debug("raise dropped", "window", ws.Focused, "err", err)
		}
	}
}

func (c *Controller) pushBar() {
	ws := c.state.ActiveWorkspace()
	occ := c.state.Occupied()
	cells := make([]bar.WorkspaceCell, NumWorkspaces)
	for i := range cells {
		cells[i] = bar.WorkspaceCell{Index: i, Occupied: occ[i], Active: i == c.state.Active}
	}
	c.bar.Push(bar.Snapshot{
		Workspaces:   cells,
		FocusedTitle: c.state.Title(ws.Focused),
		LayoutName:   string(ws.Mode),
		Visible:      ws.BarVisible,
	})
}

func (c *Controller) usableArea(ws *Workspace) display.Rect {
	area := c.state.Output
	if ws.BarVisible {
		area.Y += bar.Height
		area.Height -= bar.Height
	}
	return area
}

func (c *Controller) requestClose(w display.WindowID) {
	if err := c.srv.RequestClose(w); err != nil {
		c.log.Debug("close request dropped", "window", w, "err", err)
	}
}

func (c *Controller) unmapWin(w display.WindowID) {
	if err := c.srv.Unmap(w); err != nil {
		c.log.Debug("unmap dropped", "window", w, "err", err)
	}
}
