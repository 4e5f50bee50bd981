// Package bar implements the status bar collaborator: a snapshot of
// engine state pushed after every change, a click hit-test, and an X11
// renderer for the strip window itself.
package bar

// Height is the bar strip height in pixels. Workspaces reclaim it when the
// bar is hidden.
const Height = 24

// cellWidth is the clickable width of one workspace cell.
const cellWidth = 30

// WorkspaceCell describes one workspace entry in the snapshot.
type WorkspaceCell struct {
	Index    int
	Occupied bool
	Active   bool
}

// Snapshot is the engine state the bar displays. The engine pushes a fresh
// one after every state change; the bar never reaches back into the model.
type Snapshot struct {
	Workspaces   []WorkspaceCell
	FocusedTitle string
	LayoutName   string
	Visible      bool
}

// HitTest translates a click x-coordinate into the index of the workspace
// cell under it. Clicks right of the workspace cells report no hit.
func HitTest(x int16, numWorkspaces int) (int, bool) {
	if x < 0 {
		return 0, false
	}
	idx := int(x) / cellWidth
	if idx >= numWorkspaces {
		return 0, false
	}
	return idx, true
}
