// Package ipc exposes a small control socket for the running manager:
// status queries plus a handful of commands. Mutating commands are never
// applied on the IPC goroutine; they are queued and the event loop is woken
// to drain them, so all state mutation stays single-threaded.
package ipc

import "encoding/json"

// CommandType identifies an IPC request.
type CommandType string

const (
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandSwitchWorkspace CommandType = "SWITCH_WORKSPACE"
	CommandSpawn           CommandType = "SPAWN"
	CommandQuit            CommandType = "QUIT"
)

// Request is one client request, newline-delimited JSON on the socket.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the server's reply.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS. Workspace numbers are 1-based, as
// shown to users.
type StatusData struct {
	ActiveWorkspace    int    `json:"active_workspace"`
	LayoutName         string `json:"layout_name"`
	FocusedTitle       string `json:"focused_title,omitempty"`
	WindowCount        int    `json:"window_count"`
	OccupiedWorkspaces []int  `json:"occupied_workspaces,omitempty"`
	BarVisible         bool   `json:"bar_visible"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
}

// SwitchWorkspacePayload carries the 1-based target for SWITCH_WORKSPACE.
type SwitchWorkspacePayload struct {
	Workspace int `json:"workspace"`
}

// SpawnPayload carries the shell command for SPAWN.
type SpawnPayload struct {
	Command string `json:"command"`
}
