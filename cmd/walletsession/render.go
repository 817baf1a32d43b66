package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/kaspanet/walletsession/domain/session"
)

// renderer prints session snapshots, either as one live line on a terminal
// or as one line per change.
type renderer struct {
	out         io.Writer
	interactive bool
	lock        sync.Mutex
}

func newRenderer(out io.Writer, interactive bool) *renderer {
	return &renderer{out: out, interactive: interactive}
}

func (r *renderer) render(snapshot *session.Snapshot) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.interactive {
		fmt.Fprintf(r.out, "\r\033[K%s", describe(snapshot))
		return
	}
	fmt.Fprintln(r.out, describe(snapshot))
}

func (r *renderer) finish() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.interactive {
		fmt.Fprintln(r.out)
	}
}

func describe(snapshot *session.Snapshot) string {
	switch {
	case snapshot.Connecting:
		return "connecting..."
	case snapshot.Connected:
		description := "connected " + *snapshot.Address
		if snapshot.NetworkID != nil {
			description += " on network " + *snapshot.NetworkID
		}
		if snapshot.Balance != nil {
			description += ", balance " + *snapshot.Balance + " ETH"
		}
		return description
	case snapshot.LastError != nil:
		return fmt.Sprintf("disconnected (%s: %s)", snapshot.LastError.Kind, snapshot.LastError.Message)
	default:
		return "disconnected"
	}
}
