package wm

import "testing"

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"spawn kitty", Action{Kind: ActionSpawn, Command: "kitty"}},
		{"spawn rofi -show run", Action{Kind: ActionSpawn, Command: "rofi -show run"}},
		{"focus-next", Action{Kind: ActionFocusNext}},
		{"workspace 1", Action{Kind: ActionWorkspace, Workspace: 0}},
		{"workspace 9", Action{Kind: ActionWorkspace, Workspace: 8}},
		{"move-to-workspace 4", Action{Kind: ActionMoveToWorkspace, Workspace: 3}},
		{"cycle-layout", Action{Kind: ActionCycleLayout}},
		{"split-vertical", Action{Kind: ActionSplitVertical}},
		{"  quit  ", Action{Kind: ActionQuit}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.in)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAction(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseActionRejectsInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"fly-to-the-moon",
		"spawn",
		"workspace",
		"workspace 0",
		"workspace 10",
		"workspace banana",
		"quit now",
	} {
		if _, err := ParseAction(in); err == nil {
			t.Errorf("ParseAction(%q) should fail", in)
		}
	}
}
