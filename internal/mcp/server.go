// Package mcp exposes a running window manager to MCP-speaking clients
// over stdio. Every tool call is forwarded to the manager through its IPC
// socket; this process never touches the X connection itself.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tidewm/internal/ipc"
)

const (
	ServerName    = "tidewm"
	ServerVersion = "0.1.0"
)

// statusClient is the slice of the IPC client the tools need; tests
// substitute a fake.
type statusClient interface {
	Status() (*ipc.StatusData, error)
	SwitchWorkspace(n int) error
	Spawn(command string) error
}

// Server bridges MCP tool calls to the window manager's IPC socket.
type Server struct {
	mcpServer *mcpsdk.Server
	client    statusClient
}

// NewServer creates the MCP server. The window manager must already be
// running; tool calls fail individually if it is not reachable.
func NewServer() *Server {
	s := &Server{client: ipc.NewClient()}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run serves MCP on stdio, blocking until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wm_status",
		Description: "Report the window manager's current state: active workspace, layout mode, focused window title, window count, occupied workspaces, and bar visibility.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Switch the visible workspace. Workspaces are numbered 1 through 9.",
	}, s.handleSwitchWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "spawn_program",
		Description: "Launch a program on the display the window manager controls. The command line is run via sh -c; any window it creates is tiled onto the active workspace.",
	}, s.handleSpawnProgram)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.Status()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("querying window manager: %w", err)
	}
	out := StatusOutput{
		ActiveWorkspace:    status.ActiveWorkspace,
		LayoutName:         status.LayoutName,
		FocusedTitle:       status.FocusedTitle,
		WindowCount:        status.WindowCount,
		OccupiedWorkspaces: status.OccupiedWorkspaces,
		BarVisible:         status.BarVisible,
		UptimeSeconds:      status.UptimeSeconds,
	}
	return nil, out, nil
}

func (s *Server) handleSwitchWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, SwitchWorkspaceOutput, error) {
	if args.Workspace < 1 || args.Workspace > 9 {
		return nil, SwitchWorkspaceOutput{}, fmt.Errorf("workspace must be between 1 and 9, got %d", args.Workspace)
	}
	if err := s.client.SwitchWorkspace(args.Workspace); err != nil {
		return nil, SwitchWorkspaceOutput{}, fmt.Errorf("switching workspace: %w", err)
	}
	return nil, SwitchWorkspaceOutput{Workspace: args.Workspace}, nil
}

func (s *Server) handleSpawnProgram(_ context.Context, _ *mcpsdk.CallToolRequest, args SpawnProgramInput) (*mcpsdk.CallToolResult, SpawnProgramOutput, error) {
	if args.Command == "" {
		return nil, SpawnProgramOutput{}, fmt.Errorf("command must not be empty")
	}
	if err := s.client.Spawn(args.Command); err != nil {
		return nil, SpawnProgramOutput{}, fmt.Errorf("spawning program: %w", err)
	}
	return nil, SpawnProgramOutput{Command: args.Command}, nil
}
