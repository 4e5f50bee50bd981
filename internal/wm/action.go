package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tidewm/internal/layout"
)

// ActionKind enumerates everything a keybinding or IPC command can ask the
// controller to do.
type ActionKind string

const (
	ActionSpawn           ActionKind = "spawn"
	ActionCloseFocused    ActionKind = "close-focused"
	ActionQuit            ActionKind = "quit"
	ActionFocusNext       ActionKind = "focus-next"
	ActionFocusPrev       ActionKind = "focus-prev"
	ActionSwapNext        ActionKind = "swap-next"
	ActionSwapPrev        ActionKind = "swap-prev"
	ActionPromoteMaster   ActionKind = "promote-master"
	ActionCycleLayout     ActionKind = "cycle-layout"
	ActionToggleBar       ActionKind = "toggle-bar"
	ActionSplitHorizontal ActionKind = "split-horizontal"
	ActionSplitVertical   ActionKind = "split-vertical"
	ActionWorkspace       ActionKind = "workspace"
	ActionMoveToWorkspace ActionKind = "move-to-workspace"
)

// Action is one dispatchable command. Workspace carries the 0-based target
// index for workspace/move-to-workspace; Command carries the shell command
// for spawn.
type Action struct {
	Kind      ActionKind
	Workspace int
	Command   string
}

// ParseAction parses a config-file action string such as "spawn kitty",
// "workspace 3" or "focus-next" into an Action. Workspace numbers in config
// are 1-based.
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	kind := ActionKind(fields[0])
	args := fields[1:]

	switch kind {
	case ActionSpawn:
		if len(args) == 0 {
			return Action{}, fmt.Errorf("spawn requires a command")
		}
		return Action{Kind: ActionSpawn, Command: strings.Join(args, " ")}, nil

	case ActionWorkspace, ActionMoveToWorkspace:
		if len(args) != 1 {
			return Action{}, fmt.Errorf("%s requires a workspace number", kind)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > NumWorkspaces {
			return Action{}, fmt.Errorf("%s: workspace number must be 1-%d, got %q", kind, NumWorkspaces, args[0])
		}
		return Action{Kind: kind, Workspace: n - 1}, nil

	case ActionCloseFocused, ActionQuit, ActionFocusNext, ActionFocusPrev,
		ActionSwapNext, ActionSwapPrev, ActionPromoteMaster, ActionCycleLayout,
		ActionToggleBar, ActionSplitHorizontal, ActionSplitVertical:
		if len(args) != 0 {
			return Action{}, fmt.Errorf("%s takes no arguments", kind)
		}
		return Action{Kind: kind}, nil

	default:
		return Action{}, fmt.Errorf("unknown action %q", fields[0])
	}
}

// splitDir maps the two split actions onto layout directions.
func (a Action) splitDir() layout.SplitDir {
	if a.Kind == ActionSplitVertical {
		return layout.SplitVertical
	}
	return layout.SplitHorizontal
}
