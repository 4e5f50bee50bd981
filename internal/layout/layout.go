// Package layout computes window geometry for a workspace. Everything here
// is pure: an ordered window list, a mode and an area in, a geometry map
// out. The controller owns applying the result to the display server.
package layout

import "github.com/1broseidon/tidewm/internal/display"

// Mode selects the tiling algorithm for a workspace.
type Mode string

const (
	ModeMasterStack Mode = "master-stack" // master column left, stack right
	ModeVStack      Mode = "vstack"      // full-width rows
	ModeDwindle     Mode = "dwindle"     // recursive binary splits
	ModeMonocle     Mode = "monocle"     // focused window fullscreen
)

// Next returns the mode following m in the fixed cycle order.
func (m Mode) Next() Mode {
	switch m {
	case ModeMasterStack:
		return ModeVStack
	case ModeVStack:
		return ModeDwindle
	case ModeDwindle:
		return ModeMonocle
	default:
		return ModeMasterStack
	}
}

// SplitDir is the axis of one dwindle partition step. A horizontal split
// divides the remaining rectangle into left and right halves; a vertical
// split into top and bottom.
type SplitDir int

const (
	SplitHorizontal SplitDir = iota
	SplitVertical
)

// Params carries the mode-specific knobs a workspace owns. Ratio and
// MasterCount apply to master-stack; Splits is the dwindle direction
// history, indexed by split depth.
type Params struct {
	Ratio       float64
	MasterCount int
	Splits      []SplitDir
}

// DefaultParams returns the parameters a fresh workspace starts with.
func DefaultParams() Params {
	return Params{Ratio: 0.55, MasterCount: 1}
}

// Result maps each placed window to its target geometry. Windows absent
// from the map (monocle non-focused) must be hidden by the caller.
type Result map[display.WindowID]display.Rect

// Compute produces the geometry for windows tiled into area. The window
// order is significant: it is the stack order every mode consumes. focused
// is only consulted by monocle. An empty window list yields an empty result.
func Compute(windows []display.WindowID, focused display.WindowID, mode Mode, p Params, area display.Rect) Result {
	if len(windows) == 0 {
		return Result{}
	}

	switch mode {
	case ModeVStack:
		return stackColumn(windows, area)
	case ModeMonocle:
		res := Result{}
		if focused != display.None {
			res[focused] = area
		}
		return res
	case ModeDwindle:
		return dwindle(windows, p.Splits, area)
	default:
		return masterStack(windows, p, area)
	}
}

// stackColumn lays windows out top-to-bottom at full width, each getting an
// equal share of the height. The last window absorbs the rounding remainder
// so the column exactly covers area.
func stackColumn(windows []display.WindowID, area display.Rect) Result {
	res := make(Result, len(windows))
	per := area.Height / len(windows)
	y := area.Y
	for i, w := range windows {
		h := per
		if i == len(windows)-1 {
			h = area.Y + area.Height - y
		}
		res[w] = display.Rect{X: area.X, Y: y, Width: area.Width, Height: h}
		y += h
	}
	return res
}

func masterStack(windows []display.WindowID, p Params, area display.Rect) Result {
	masterCount := p.MasterCount
	if masterCount < 1 {
		masterCount = 1
	}

	// With no stack windows the master column spans the full width; no
	// empty column is reserved.
	if len(windows) <= masterCount {
		return stackColumn(windows, area)
	}

	ratio := p.Ratio
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultParams().Ratio
	}
	masterWidth := int(float64(area.Width) * ratio)

	res := stackColumn(windows[:masterCount], display.Rect{
		X: area.X, Y: area.Y, Width: masterWidth, Height: area.Height,
	})
	stack := stackColumn(windows[masterCount:], display.Rect{
		X: area.X + masterWidth, Y: area.Y, Width: area.Width - masterWidth, Height: area.Height,
	})
	for w, r := range stack {
		res[w] = r
	}
	return res
}

// dwindle assigns windows oldest-first: each window except the last takes
// the first part of a binary split of the remaining rectangle; the last
// window takes whatever is left. Explicit directions from splits override
// the depth-parity default (even depths split left|right, odd top|bottom).
func dwindle(windows []display.WindowID, splits []SplitDir, area display.Rect) Result {
	res := make(Result, len(windows))
	remaining := area
	for i, w := range windows {
		if i == len(windows)-1 {
			res[w] = remaining
			break
		}
		dir := splitDirAt(splits, i)
		if dir == SplitHorizontal {
			half := remaining.Width / 2
			res[w] = display.Rect{X: remaining.X, Y: remaining.Y, Width: half, Height: remaining.Height}
			remaining.X += half
			remaining.Width -= half
		} else {
			half := remaining.Height / 2
			res[w] = display.Rect{X: remaining.X, Y: remaining.Y, Width: remaining.Width, Height: half}
			remaining.Y += half
			remaining.Height -= half
		}
	}
	return res
}

func splitDirAt(splits []SplitDir, depth int) SplitDir {
	if depth < len(splits) {
		return splits[depth]
	}
	if depth%2 == 0 {
		return SplitHorizontal
	}
	return SplitVertical
}
