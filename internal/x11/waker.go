package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Waker interrupts the manager's blocking event read from another
// goroutine. It holds its own X connection so the wake can be posted while
// the main connection is parked in a read; the ClientMessage it sends to
// the root window surfaces on the main connection as a Wake event.
type Waker struct {
	conn *xgb.Conn
	root xproto.Window
	atom xproto.Atom
}

// NewWaker opens the waker's dedicated connection.
func NewWaker() (*Waker, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting waker to X server: %w", err)
	}
	reply, err := xproto.InternAtom(conn, false, uint16(len(wakeAtomName)), wakeAtomName).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("interning wake atom: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &Waker{conn: conn, root: root, atom: reply.Atom}, nil
}

// Wake posts the wake message. Safe to call from any goroutine.
func (w *Waker) Wake() {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w.root,
		Type:   w.atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	// SubstructureNotify delivers to the manager connection, which selects
	// it on the root window.
	xproto.SendEvent(w.conn, false, w.root,
		xproto.EventMaskSubstructureNotify, string(ev.Bytes()))
}

// Close tears down the waker connection.
func (w *Waker) Close() {
	w.conn.Close()
}
