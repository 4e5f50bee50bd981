package bar

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/tidewm/internal/display"
)

// charWidth is the advance of the "fixed" core font (6x13). Text placement
// works off this instead of round-tripping QueryTextExtents per draw.
const charWidth = 6

// baseline is the text baseline inside the strip, tuned for a 13px font in
// a 24px bar.
const baselineY = 16

// XBar renders the status strip as an override-redirect window along the
// top edge of the output. It repaints from the last pushed Snapshot; it
// never reads engine state itself.
type XBar struct {
	xu     *xgbutil.XUtil
	win    xproto.Window
	gc     xproto.Gcontext
	invGC  xproto.Gcontext
	width  uint16
	clock  bool
	last   Snapshot
	mapped bool
}

// NewXBar creates and maps the bar window across the top of the output.
// fontName is a core X font name; empty selects "fixed".
func NewXBar(xu *xgbutil.XUtil, outputWidth int, fontName string, clock bool) (*XBar, error) {
	conn := xu.Conn()
	screen := xu.Screen()

	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("allocating bar window ID: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, win, xu.RootWin(),
		0, 0, uint16(outputWidth), Height, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{
			screen.BlackPixel,
			1,
			xproto.EventMaskExposure | xproto.EventMaskButtonPress,
		}).Check()
	if err != nil {
		return nil, fmt.Errorf("creating bar window: %w", err)
	}

	font, err := openFont(conn, fontName)
	if err != nil {
		return nil, err
	}

	gc, err := createTextGC(conn, win, font, screen.WhitePixel, screen.BlackPixel)
	if err != nil {
		return nil, err
	}
	invGC, err := createTextGC(conn, win, font, screen.BlackPixel, screen.WhitePixel)
	if err != nil {
		return nil, err
	}
	if err := xproto.CloseFontChecked(conn, font).Check(); err != nil {
		return nil, fmt.Errorf("closing bar font handle: %w", err)
	}

	if err := xproto.MapWindowChecked(conn, win).Check(); err != nil {
		return nil, fmt.Errorf("mapping bar window: %w", err)
	}

	return &XBar{
		xu:     xu,
		win:    win,
		gc:     gc,
		invGC:  invGC,
		width:  uint16(outputWidth),
		clock:  clock,
		mapped: true,
	}, nil
}

func openFont(conn *xgb.Conn, name string) (xproto.Font, error) {
	if name == "" {
		name = "fixed"
	}
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, fmt.Errorf("allocating bar font ID: %w", err)
	}
	if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err != nil {
		return 0, fmt.Errorf("opening bar font %q: %w", name, err)
	}
	return font, nil
}

func createTextGC(conn *xgb.Conn, win xproto.Window, font xproto.Font, fg, bg uint32) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, fmt.Errorf("allocating bar GC ID: %w", err)
	}
	err = xproto.CreateGCChecked(conn, gc, xproto.Drawable(win),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{fg, bg, uint32(font), 0}).Check()
	if err != nil {
		return 0, fmt.Errorf("creating bar GC: %w", err)
	}
	return gc, nil
}

// Push stores the snapshot and repaints.
func (b *XBar) Push(s Snapshot) {
	b.last = s
	b.draw()
}

// HitTest reports which workspace cell a click at x lands on.
func (b *XBar) HitTest(x int16) (int, bool) {
	return HitTest(x, len(b.last.Workspaces))
}

// OwnsWindow reports whether w is the bar's own window.
func (b *XBar) OwnsWindow(w display.WindowID) bool {
	return xproto.Window(w) == b.win
}

// SetVisible maps or unmaps the strip.
func (b *XBar) SetVisible(visible bool) {
	if visible == b.mapped {
		return
	}
	conn := b.xu.Conn()
	if visible {
		xproto.MapWindow(conn, b.win)
	} else {
		xproto.UnmapWindow(conn, b.win)
	}
	b.mapped = visible
	if visible {
		b.draw()
	}
}

// Resize adjusts the strip to a new output width.
func (b *XBar) Resize(outputWidth int) {
	b.width = uint16(outputWidth)
	xproto.ConfigureWindow(b.xu.Conn(), b.win, xproto.ConfigWindowWidth,
		[]uint32{uint32(outputWidth)})
	b.draw()
}

func (b *XBar) draw() {
	if !b.mapped {
		return
	}
	conn := b.xu.Conn()
	xproto.ClearArea(conn, false, b.win, 0, 0, b.width, Height)

	// Workspace cells, leftmost.
	for i, cell := range b.last.Workspaces {
		cellX := int16(i * cellWidth)
		text := " "
		if cell.Occupied {
			text = fmt.Sprintf("%d", cell.Index+1)
		}
		gc := b.gc
		if cell.Active {
			xproto.PolyFillRectangle(conn, xproto.Drawable(b.win), b.gc,
				[]xproto.Rectangle{{X: cellX, Y: 0, Width: cellWidth, Height: Height}})
			gc = b.invGC
			if !cell.Occupied {
				text = fmt.Sprintf("%d", cell.Index+1)
			}
		}
		textX := cellX + (cellWidth-int16(len(text)*charWidth))/2
		b.text(gc, textX, text)
	}

	// Layout name after the cells.
	x := int16(len(b.last.Workspaces)*cellWidth) + 10
	b.text(b.gc, x, "["+b.last.LayoutName+"]")
	x += int16((len(b.last.LayoutName)+2)*charWidth) + 15

	// Clock, right-aligned.
	rightEdge := int16(b.width) - 10
	if b.clock {
		now := time.Now().Format("Mon Jan 02 15:04")
		rightEdge -= int16(len(now) * charWidth)
		b.text(b.gc, rightEdge, now)
		rightEdge -= 15
	}

	// Focused title, centered in whatever room remains.
	if b.last.FocusedTitle != "" {
		title := truncateRunes(b.last.FocusedTitle, int(rightEdge-x)/charWidth)
		titleX := int16(b.width)/2 - int16(utf8.RuneCountInString(title)*charWidth)/2
		if titleX < x {
			titleX = x
		}
		if titleX < rightEdge {
			b.text(b.gc, titleX, title)
		}
	}
}

// truncateRunes clips s to at most n characters without splitting a
// multi-byte rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (b *XBar) text(gc xproto.Gcontext, x int16, s string) {
	if s == "" {
		return
	}
	if len(s) > 255 {
		s = s[:255]
	}
	xproto.ImageText8(b.xu.Conn(), byte(len(s)), xproto.Drawable(b.win), gc, x, baselineY, s)
}
