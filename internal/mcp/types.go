package mcp

// StatusInput is the (empty) input for the wm_status tool.
type StatusInput struct{}

// StatusOutput is the output for the wm_status tool.
type StatusOutput struct {
	ActiveWorkspace    int    `json:"active_workspace"`
	LayoutName         string `json:"layout_name"`
	FocusedTitle       string `json:"focused_title,omitempty"`
	WindowCount        int    `json:"window_count"`
	OccupiedWorkspaces []int  `json:"occupied_workspaces,omitempty"`
	BarVisible         bool   `json:"bar_visible"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	Workspace int `json:"workspace" jsonschema:"required,Workspace number to switch to (1-9)"`
}

// SwitchWorkspaceOutput is the output for the switch_workspace tool.
type SwitchWorkspaceOutput struct {
	Workspace int `json:"workspace"`
}

// SpawnProgramInput is the input for the spawn_program tool.
type SpawnProgramInput struct {
	Command string `json:"command" jsonschema:"required,Shell command line to launch (run via sh -c)"`
}

// SpawnProgramOutput is the output for the spawn_program tool.
type SpawnProgramOutput struct {
	Command string `json:"command"`
}
