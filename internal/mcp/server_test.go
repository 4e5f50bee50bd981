package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/tidewm/internal/ipc"
)

type fakeClient struct {
	status    *ipc.StatusData
	statusErr error
	switched  []int
	switchErr error
	spawned   []string
	spawnErr  error
}

func (f *fakeClient) Status() (*ipc.StatusData, error) {
	return f.status, f.statusErr
}

func (f *fakeClient) SwitchWorkspace(n int) error {
	f.switched = append(f.switched, n)
	return f.switchErr
}

func (f *fakeClient) Spawn(command string) error {
	f.spawned = append(f.spawned, command)
	return f.spawnErr
}

func newTestServer(client statusClient) *Server {
	return &Server{client: client}
}

func TestHandleStatus(t *testing.T) {
	fake := &fakeClient{status: &ipc.StatusData{
		ActiveWorkspace:    3,
		LayoutName:         "master-stack",
		FocusedTitle:       "editor",
		WindowCount:        2,
		OccupiedWorkspaces: []int{1, 3},
		BarVisible:         true,
		UptimeSeconds:      42,
	}}
	s := newTestServer(fake)

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	if out.ActiveWorkspace != 3 || out.LayoutName != "master-stack" || out.WindowCount != 2 {
		t.Errorf("unexpected output: %+v", out)
	}
	if len(out.OccupiedWorkspaces) != 2 {
		t.Errorf("occupied workspaces = %v, want [1 3]", out.OccupiedWorkspaces)
	}
}

func TestHandleStatusManagerDown(t *testing.T) {
	s := newTestServer(&fakeClient{statusErr: errors.New("connection refused")})
	if _, _, err := s.handleStatus(context.Background(), nil, StatusInput{}); err == nil {
		t.Fatal("expected error when manager is unreachable")
	}
}

func TestHandleSwitchWorkspace(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	_, out, err := s.handleSwitchWorkspace(context.Background(), nil, SwitchWorkspaceInput{Workspace: 5})
	if err != nil {
		t.Fatalf("handleSwitchWorkspace: %v", err)
	}
	if out.Workspace != 5 {
		t.Errorf("output workspace = %d, want 5", out.Workspace)
	}
	if len(fake.switched) != 1 || fake.switched[0] != 5 {
		t.Errorf("forwarded switches = %v, want [5]", fake.switched)
	}
}

func TestHandleSwitchWorkspaceRange(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	for _, n := range []int{0, 10, -1} {
		if _, _, err := s.handleSwitchWorkspace(context.Background(), nil, SwitchWorkspaceInput{Workspace: n}); err == nil {
			t.Errorf("workspace %d: expected range error", n)
		}
	}
	if len(fake.switched) != 0 {
		t.Errorf("out-of-range requests must not be forwarded, got %v", fake.switched)
	}
}

func TestHandleSpawnProgram(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	_, _, err := s.handleSpawnProgram(context.Background(), nil, SpawnProgramInput{Command: "xterm"})
	if err != nil {
		t.Fatalf("handleSpawnProgram: %v", err)
	}
	if len(fake.spawned) != 1 || fake.spawned[0] != "xterm" {
		t.Errorf("forwarded spawns = %v, want [xterm]", fake.spawned)
	}

	if _, _, err := s.handleSpawnProgram(context.Background(), nil, SpawnProgramInput{}); err == nil {
		t.Error("empty command: expected error")
	}
}
