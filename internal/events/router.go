// Package events maps decoded gateway push events to state updates.
package events

import (
	"github.com/muurk/aiobridge/internal/store"
	"github.com/muurk/aiobridge/internal/wire"
)

// Route returns the state updates for ev. IR events set receivedIrData; system
// variable events of every kind set id<varId>, floats included even though the
// gateway rarely delivers them intact. Event types unknown to this package
// yield nothing: wire.ParseEvent never produces them.
func Route(ev wire.Event) []store.Update {
	switch e := ev.(type) {
	case *wire.IREvent:
		return []store.Update{{Key: store.KeyReceivedIR, Value: e.Payload}}
	case *wire.SysVarEvent:
		return []store.Update{{Key: store.SysVarKey(e.VarID), Value: e.Value}}
	default:
		return nil
	}
}
