package wm

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	barpkg "github.com/1broseidon/tidewm/internal/bar"
	"github.com/1broseidon/tidewm/internal/display"
	"github.com/1broseidon/tidewm/internal/layout"
)

const barWin = display.WindowID(0xbabe)

type fakeServer struct {
	geometry map[display.WindowID]display.Rect
	mapped   map[display.WindowID]bool
	focused  display.WindowID
	raised   []display.WindowID
	closed   []display.WindowID
	managed  []display.WindowID

	configureCalls []string

	// failing windows make every command error, simulating handles the
	// server has already invalidated.
	failing map[display.WindowID]bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		geometry: make(map[display.WindowID]display.Rect),
		mapped:   make(map[display.WindowID]bool),
		failing:  make(map[display.WindowID]bool),
	}
}

func (f *fakeServer) err(w display.WindowID) error {
	if f.failing[w] {
		return fmt.Errorf("bad window %#x", w)
	}
	return nil
}

func (f *fakeServer) Configure(w display.WindowID, r display.Rect) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.geometry[w] = r
	f.configureCalls = append(f.configureCalls, fmt.Sprintf("%#x:%+v", w, r))
	return nil
}

func (f *fakeServer) Map(w display.WindowID) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.mapped[w] = true
	return nil
}

func (f *fakeServer) Unmap(w display.WindowID) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.mapped[w] = false
	return nil
}

func (f *fakeServer) Raise(w display.WindowID) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.raised = append(f.raised, w)
	return nil
}

func (f *fakeServer) SetInputFocus(w display.WindowID) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.focused = w
	return nil
}

func (f *fakeServer) RequestClose(w display.WindowID) error {
	if err := f.err(w); err != nil {
		return err
	}
	f.closed = append(f.closed, w)
	return nil
}

func (f *fakeServer) Manage(w display.WindowID) error {
	f.managed = append(f.managed, w)
	return f.err(w)
}

func (f *fakeServer) WindowTitle(w display.WindowID) (string, error) {
	return fmt.Sprintf("window-%#x", w), f.err(w)
}

type fakeBar struct {
	snapshots []barpkg.Snapshot
	visible   bool
}

func (f *fakeBar) Push(s barpkg.Snapshot) { f.snapshots = append(f.snapshots, s) }
func (f *fakeBar) SetVisible(v bool)      { f.visible = v }

func (f *fakeBar) OwnsWindow(w display.WindowID) bool { return w == barWin }
func (f *fakeBar) HitTest(x int16) (int, bool) {
	return barpkg.HitTest(x, NumWorkspaces)
}

func (f *fakeBar) last(t *testing.T) barpkg.Snapshot {
	t.Helper()
	if len(f.snapshots) == 0 {
		t.Fatal("no bar snapshot pushed")
	}
	return f.snapshots[len(f.snapshots)-1]
}

type fakeSpawner struct {
	commands []string
}

func (f *fakeSpawner) Spawn(cmd string) { f.commands = append(f.commands, cmd) }

type fixture struct {
	ctl     *Controller
	state   *State
	srv     *fakeServer
	bar     *fakeBar
	spawner *fakeSpawner
}

func newFixture(keymap map[KeyChord]Action) *fixture {
	f := &fixture{
		state:   NewState(display.Rect{Width: 1920, Height: 1080}, keymap),
		srv:     newFakeServer(),
		bar:     &fakeBar{visible: true},
		spawner: &fakeSpawner{},
	}
	f.ctl = NewController(ControllerConfig{
		State:   f.state,
		Server:  f.srv,
		Bar:     f.bar,
		Spawner: f.spawner,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func (f *fixture) mapWindows(t *testing.T, wins ...display.WindowID) {
	t.Helper()
	for _, w := range wins {
		if err := f.ctl.HandleEvent(display.MapRequest{Window: w}); err != nil {
			t.Fatalf("map request: %v", err)
		}
	}
}

func TestMapRequestAttachesFocusesAndTiles(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	if idx, ok := f.state.WorkspaceOf(winA); !ok || idx != 0 {
		t.Fatalf("window not attached to active workspace: %d,%v", idx, ok)
	}
	if f.srv.focused != winA {
		t.Fatalf("input focus = %#x, want winA", f.srv.focused)
	}
	if !f.srv.mapped[winA] {
		t.Fatal("window not mapped")
	}
	// Single window fills the output minus the bar strip.
	want := display.Rect{X: 0, Y: barpkg.Height, Width: 1920, Height: 1080 - barpkg.Height}
	if f.srv.geometry[winA] != want {
		t.Fatalf("geometry = %+v, want %+v", f.srv.geometry[winA], want)
	}
	if f.state.Title(winA) == "" {
		t.Fatal("title not cached on map")
	}
	snap := f.bar.last(t)
	if !snap.Workspaces[0].Occupied || !snap.Workspaces[0].Active {
		t.Fatalf("bar snapshot cell 0 = %+v", snap.Workspaces[0])
	}
}

func TestDestroyNotifyRevertsFocus(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)

	if err := f.ctl.HandleEvent(display.DestroyNotify{Window: winB}); err != nil {
		t.Fatal(err)
	}
	if f.state.ActiveWorkspace().Focused != winA {
		t.Fatalf("focus = %#x, want winA", f.state.ActiveWorkspace().Focused)
	}
	if f.srv.focused != winA {
		t.Fatalf("input focus = %#x, want winA", f.srv.focused)
	}
	if f.state.Managed(winB) {
		t.Fatal("destroyed window still managed")
	}
}

func TestDestroyLastWindowFocusesRoot(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	if err := f.ctl.HandleEvent(display.DestroyNotify{Window: winA}); err != nil {
		t.Fatal(err)
	}
	if f.srv.focused != display.None {
		t.Fatalf("input focus = %#x, want root", f.srv.focused)
	}
}

func TestDestroyUnknownWindowIgnored(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)
	before := len(f.srv.configureCalls)

	if err := f.ctl.HandleEvent(display.DestroyNotify{Window: winC}); err != nil {
		t.Fatal(err)
	}
	if len(f.srv.configureCalls) != before {
		t.Fatal("unknown destroy triggered a relayout")
	}
}

func TestEnterNotifyIsFocusOnly(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)
	before := len(f.srv.configureCalls)

	if err := f.ctl.HandleEvent(display.EnterNotify{Window: winA}); err != nil {
		t.Fatal(err)
	}
	if f.state.ActiveWorkspace().Focused != winA {
		t.Fatalf("focus = %#x, want winA", f.state.ActiveWorkspace().Focused)
	}
	if f.srv.focused != winA {
		t.Fatalf("input focus = %#x, want winA", f.srv.focused)
	}
	if len(f.srv.configureCalls) != before {
		t.Fatal("enter notify recomputed geometry")
	}
}

func TestEnterNotifyOtherWorkspaceIgnored(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)
	f.ctl.Dispatch(Action{Kind: ActionMoveToWorkspace, Workspace: 2})

	if err := f.ctl.HandleEvent(display.EnterNotify{Window: winB}); err != nil {
		t.Fatal(err)
	}
	if f.state.ActiveWorkspace().Focused != winA {
		t.Fatalf("focus stolen by window on another workspace")
	}
}

func TestKeyPressDispatchesThroughKeymap(t *testing.T) {
	chord := KeyChord{Modifiers: 0x40, Keycode: 44}
	f := newFixture(map[KeyChord]Action{
		chord: {Kind: ActionFocusNext},
	})
	f.mapWindows(t, winA, winB, winC)
	f.state.ActiveWorkspace().Focused = winB

	if err := f.ctl.HandleEvent(display.KeyPress{Modifiers: 0x40, Keycode: 44}); err != nil {
		t.Fatal(err)
	}
	if f.state.ActiveWorkspace().Focused != winC {
		t.Fatalf("focus = %#x, want winC", f.state.ActiveWorkspace().Focused)
	}

	// Unmapped chords are ignored without noise.
	if err := f.ctl.HandleEvent(display.KeyPress{Modifiers: 0, Keycode: 99}); err != nil {
		t.Fatal(err)
	}
	if f.state.ActiveWorkspace().Focused != winC {
		t.Fatal("unmapped chord changed state")
	}
}

func TestBarClickSwitchesWorkspace(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	// Third cell spans x 60..89.
	if err := f.ctl.HandleEvent(display.ButtonPress{Window: barWin, X: 65}); err != nil {
		t.Fatal(err)
	}
	if f.state.Active != 2 {
		t.Fatalf("active = %d, want 2", f.state.Active)
	}
	if f.srv.mapped[winA] {
		t.Fatal("old workspace window still mapped")
	}

	// Clicks outside the cells do nothing.
	if err := f.ctl.HandleEvent(display.ButtonPress{Window: barWin, X: 500}); err != nil {
		t.Fatal(err)
	}
	if f.state.Active != 2 {
		t.Fatalf("active = %d after dead click, want 2", f.state.Active)
	}
}

func TestSwitchWorkspaceMapsAndFocuses(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)
	f.ctl.Dispatch(Action{Kind: ActionWorkspace, Workspace: 4})

	if f.srv.mapped[winA] || f.srv.mapped[winB] {
		t.Fatal("old workspace windows still mapped")
	}
	if f.srv.focused != display.None {
		t.Fatalf("empty workspace should focus root, got %#x", f.srv.focused)
	}

	f.ctl.Dispatch(Action{Kind: ActionWorkspace, Workspace: 0})
	if !f.srv.mapped[winA] || !f.srv.mapped[winB] {
		t.Fatal("windows not remapped on return")
	}
	if f.srv.focused != winB {
		t.Fatalf("input focus = %#x, want winB", f.srv.focused)
	}
}

func TestSwitchToActiveWorkspaceIsNoop(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)
	before := len(f.srv.configureCalls)

	f.ctl.Dispatch(Action{Kind: ActionWorkspace, Workspace: 0})
	if len(f.srv.configureCalls) != before {
		t.Fatal("switching to the active workspace should do nothing")
	}
}

func TestMoveFocusedToInactiveWorkspace(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)

	f.ctl.Dispatch(Action{Kind: ActionMoveToWorkspace, Workspace: 3})

	if f.srv.mapped[winB] {
		t.Fatal("moved window should be unmapped immediately")
	}
	if idx, _ := f.state.WorkspaceOf(winB); idx != 3 {
		t.Fatalf("winB owned by %d, want 3", idx)
	}
	if got := f.state.Workspaces[3].Windows; len(got) != 1 || got[0] != winB {
		t.Fatalf("workspace 3 = %v, want [winB]", got)
	}
	if f.state.ActiveWorkspace().Focused != winA {
		t.Fatalf("focus = %#x, want winA", f.state.ActiveWorkspace().Focused)
	}
	// The moved window is no longer part of workspace 0's geometry.
	res := layout.Compute(f.state.ActiveWorkspace().Windows, winA, layout.ModeMasterStack,
		f.state.ActiveWorkspace().Params, display.Rect{Width: 100, Height: 100})
	if _, ok := res[winB]; ok {
		t.Fatal("moved window still in active workspace layout")
	}
}

func TestCloseFocusedDoesNotMutateState(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)

	f.ctl.Dispatch(Action{Kind: ActionCloseFocused})

	if len(f.srv.closed) != 1 || f.srv.closed[0] != winB {
		t.Fatalf("close requests = %v, want [winB]", f.srv.closed)
	}
	if !f.state.Managed(winB) {
		t.Fatal("close request must not remove the window; destroy notify does")
	}

	// The compliant client's destroy notify completes the removal.
	f.ctl.HandleEvent(display.DestroyNotify{Window: winB})
	if f.state.Managed(winB) {
		t.Fatal("window still managed after destroy notify")
	}
}

func TestQuitClosesAllManagedWindows(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)
	f.ctl.Dispatch(Action{Kind: ActionMoveToWorkspace, Workspace: 5})

	err := f.ctl.Dispatch(Action{Kind: ActionQuit})
	if err != ErrQuit {
		t.Fatalf("err = %v, want ErrQuit", err)
	}
	if len(f.srv.closed) != 2 {
		t.Fatalf("close requests = %v, want both windows", f.srv.closed)
	}
}

func TestSpawnIsFireAndForget(t *testing.T) {
	f := newFixture(nil)
	f.ctl.Dispatch(Action{Kind: ActionSpawn, Command: "kitty"})
	if len(f.spawner.commands) != 1 || f.spawner.commands[0] != "kitty" {
		t.Fatalf("spawned = %v", f.spawner.commands)
	}
}

func TestMonocleHidesNonFocused(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB, winC)
	f.state.ActiveWorkspace().Mode = layout.ModeMonocle
	f.ctl.HandleEvent(display.OutputChange{Geometry: display.Rect{Width: 1920, Height: 1080}})

	if !f.srv.mapped[winC] {
		t.Fatal("focused window should be mapped in monocle")
	}
	if f.srv.mapped[winA] || f.srv.mapped[winB] {
		t.Fatal("non-focused windows should be hidden in monocle")
	}
}

func TestToggleBarReclaimsGap(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	f.ctl.Dispatch(Action{Kind: ActionToggleBar})
	if f.bar.visible {
		t.Fatal("bar should be hidden")
	}
	want := display.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if f.srv.geometry[winA] != want {
		t.Fatalf("geometry = %+v, want full screen", f.srv.geometry[winA])
	}
	if f.bar.last(t).Visible {
		t.Fatal("snapshot still reports the bar visible")
	}

	f.ctl.Dispatch(Action{Kind: ActionToggleBar})
	want.Y, want.Height = 24, 1056
	if f.srv.geometry[winA] != want {
		t.Fatalf("geometry = %+v, want %+v after restore", f.srv.geometry[winA], want)
	}
}

func TestRelayoutIsIdempotent(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB, winC)

	geom := display.Rect{Width: 1920, Height: 1080}
	f.ctl.HandleEvent(display.OutputChange{Geometry: geom})
	first := make(map[display.WindowID]display.Rect, len(f.srv.geometry))
	for w, r := range f.srv.geometry {
		first[w] = r
	}

	f.ctl.HandleEvent(display.OutputChange{Geometry: geom})
	for w, r := range f.srv.geometry {
		if first[w] != r {
			t.Fatalf("window %#x moved on identical relayout: %+v -> %+v", w, first[w], r)
		}
	}
}

func TestProtocolErrorsAreAbsorbed(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)

	// winB's handle goes stale; every command on it now fails.
	f.srv.failing[winB] = true

	if err := f.ctl.HandleEvent(display.OutputChange{Geometry: display.Rect{Width: 800, Height: 600}}); err != nil {
		t.Fatalf("protocol error escaped the command layer: %v", err)
	}
	// The stale window stays in the model until its destroy notify.
	if !f.state.Managed(winB) {
		t.Fatal("engine dropped state on a protocol error")
	}
	f.ctl.HandleEvent(display.DestroyNotify{Window: winB})
	if f.state.Managed(winB) {
		t.Fatal("destroy notify failed to reconcile")
	}
}

func TestTitleChangeRefreshesBar(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	f.ctl.HandleEvent(display.TitleChange{Window: winA, Title: "vim"})
	if f.bar.last(t).FocusedTitle != "vim" {
		t.Fatalf("bar title = %q, want vim", f.bar.last(t).FocusedTitle)
	}
}

func TestWakeDrainsPendingActions(t *testing.T) {
	queued := []Action{{Kind: ActionWorkspace, Workspace: 2}}
	f := newFixture(nil)
	f.ctl.pending = func() []Action {
		out := queued
		queued = nil
		return out
	}
	f.mapWindows(t, winA)

	if err := f.ctl.HandleEvent(display.Wake{}); err != nil {
		t.Fatal(err)
	}
	if f.state.Active != 2 {
		t.Fatalf("active = %d, want 2", f.state.Active)
	}
}

func TestWakeWithEmptyQueueRefreshesBar(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA)

	before := len(f.bar.snapshots)
	if err := f.ctl.HandleEvent(display.Wake{}); err != nil {
		t.Fatal(err)
	}
	if len(f.bar.snapshots) != before+1 {
		t.Fatalf("bar pushes = %d, want %d", len(f.bar.snapshots), before+1)
	}
}

func TestDwindleSplitActionAffectsNextSplitOnly(t *testing.T) {
	f := newFixture(nil)
	f.mapWindows(t, winA, winB)
	f.state.ActiveWorkspace().Mode = layout.ModeDwindle
	f.state.ActiveWorkspace().BarVisible = false

	f.ctl.Dispatch(Action{Kind: ActionSplitVertical})
	f.ctl.HandleEvent(display.OutputChange{Geometry: display.Rect{Width: 1000, Height: 800}})

	if got := f.srv.geometry[winA]; got != (display.Rect{X: 0, Y: 0, Width: 1000, Height: 400}) {
		t.Fatalf("winA = %+v, want top half after explicit vertical split", got)
	}
}
