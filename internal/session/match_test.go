package session

import (
	"testing"

	"github.com/muurk/aiobridge/internal/wire"
)

const (
	macA = "AA:BB:CC:DD:EE:FF"
	macB = "11:22:33:44:55:66"
	ipA  = "10.0.0.5"
	ipB  = "10.0.0.6"
)

func reply(ip, mac string) *wire.DiscoveryReply {
	return &wire.DiscoveryReply{IP: ip, MAC: mac, DeviceName: wire.GatewayName}
}

func boundState(target Target) *State {
	s := NewState(target)
	_ = s.Bind(ipB, macB)
	return s
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		state  *State
		reply  *wire.DiscoveryReply
		want   Decision
	}{
		{"any unbound binds first reply", AnyTarget(), NewState(AnyTarget()), reply(ipA, macA), Bind},
		{"any unbound binds other reply", AnyTarget(), NewState(AnyTarget()), reply(ipB, macB), Bind},
		{"mac awaiting matching mac", ByMAC(macA), NewState(ByMAC(macA)), reply(ipA, macA), Bind},
		{"mac unbound matching mac", ByMAC(macA), &State{phase: Unbound}, reply(ipA, macA), Bind},
		{"mac awaiting other mac", ByMAC(macA), NewState(ByMAC(macA)), reply(ipA, macB), Ignore},
		{"mac ignores matching ip", ByMAC(macA), NewState(ByMAC(macA)), reply(ipA, ""), Ignore},
		{"mac is case sensitive", ByMAC(macA), NewState(ByMAC(macA)), reply(ipA, "aa:bb:cc:dd:ee:ff"), Ignore},
		{"ip awaiting matching ip", ByIP(ipA), NewState(ByIP(ipA)), reply(ipA, macB), Bind},
		{"ip unbound matching ip", ByIP(ipA), &State{phase: Unbound}, reply(ipA, macB), Bind},
		{"ip awaiting other ip", ByIP(ipA), NewState(ByIP(ipA)), reply(ipB, macA), Ignore},
		{"none never binds", Target{}, NewState(Target{}), reply(ipA, macA), Ignore},
		{"any bound ignores", AnyTarget(), boundState(AnyTarget()), reply(ipA, macA), Ignore},
		{"mac bound ignores same mac", ByMAC(macB), boundState(ByMAC(macB)), reply(ipB, macB), Ignore},
		{"ip bound ignores same ip", ByIP(ipB), boundState(ByIP(ipB)), reply(ipB, macB), Ignore},
		{"nil reply ignored", AnyTarget(), NewState(AnyTarget()), nil, Ignore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.target, tt.reply, tt.state); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_Pure(t *testing.T) {
	target := ByMAC(macA)
	state := NewState(target)
	r := reply(ipA, macA)

	before := state.Snapshot()
	first := Match(target, r, state)
	for i := 0; i < 10; i++ {
		if got := Match(target, r, state); got != first {
			t.Fatalf("call %d: Match() = %v, want %v", i, got, first)
		}
	}
	if state.Snapshot() != before {
		t.Errorf("Match() mutated state: %+v -> %+v", before, state.Snapshot())
	}
	if r.IP != ipA || r.MAC != macA {
		t.Errorf("Match() mutated reply")
	}
}
