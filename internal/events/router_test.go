package events

import (
	"testing"

	"github.com/muurk/aiobridge/internal/store"
	"github.com/muurk/aiobridge/internal/wire"
)

func TestRoute_IRFromWire(t *testing.T) {
	ev, err := wire.ParseEvent([]byte(`{XC_EVT}{"type":"IR","data":"abc123"}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	got := Route(ev)
	if len(got) != 1 {
		t.Fatalf("Route() returned %d updates, want 1", len(got))
	}
	want := store.Update{Key: "receivedIrData", Value: "abc123"}
	if got[0] != want {
		t.Errorf("Route() = %v, want %v", got[0], want)
	}
}

func TestRoute_SysVarKinds(t *testing.T) {
	kinds := []wire.Kind{wire.KindInt, wire.KindBool, wire.KindStr, wire.KindFloat}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			got := Route(&wire.SysVarEvent{Kind: kind, VarID: "07", Value: "00000007"})
			if len(got) != 1 {
				t.Fatalf("Route() returned %d updates, want 1", len(got))
			}
			want := store.Update{Key: "id07", Value: "00000007"}
			if got[0] != want {
				t.Errorf("Route() = %v, want %v", got[0], want)
			}
		})
	}
}

type unknownEvent struct{}

func (unknownEvent) Type() string   { return "??" }
func (unknownEvent) String() string { return "unknown" }

func TestRoute_Unknown(t *testing.T) {
	if got := Route(unknownEvent{}); len(got) != 0 {
		t.Errorf("Route() = %v, want nothing", got)
	}
	if got := Route(nil); len(got) != 0 {
		t.Errorf("Route(nil) = %v, want nothing", got)
	}
}
