package store

import (
	"errors"
	"sync"
	"testing"
)

func TestMemory_SetStateAndHistory(t *testing.T) {
	m := NewMemory()

	_ = m.SetState(KeyConnection, "false")
	_ = m.SetState(KeyConnection, "true")
	_ = m.SetState(KeyReceivedIR, "abc123")

	if v, ok := m.Get(KeyConnection); !ok || v != "true" {
		t.Errorf("Get(%s) = %q, %v; want true", KeyConnection, v, ok)
	}
	if got := m.Count(KeyConnection, "true"); got != 1 {
		t.Errorf("Count(true) = %d, want 1", got)
	}

	want := []Update{
		{KeyConnection, "false"},
		{KeyConnection, "true"},
		{KeyReceivedIR, "abc123"},
	}
	got := m.History()
	if len(got) != len(want) {
		t.Fatalf("History() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("History()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != KeyConnection || keys[1] != KeyReceivedIR {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestMemory_DeclareKeepsFirst(t *testing.T) {
	m := NewMemory()
	_ = m.Declare(SysVarDefinition("01"))
	_ = m.Declare(Definition{Key: "id01", Name: "changed"})

	def, ok := m.Definition("id01")
	if !ok {
		t.Fatal("Definition(id01) not found")
	}
	if def.Name != "sysvar01" {
		t.Errorf("Name = %q, want sysvar01", def.Name)
	}
}

func TestMemory_WriteNotifiesSubscribers(t *testing.T) {
	m := NewMemory()

	var got []string
	_ = m.Subscribe(KeySendIR, func(v string) { got = append(got, v) })

	m.Write(KeySendIR, "code123")
	m.Write(KeyReceivedIR, "ignored")

	if len(got) != 1 || got[0] != "code123" {
		t.Errorf("subscriber got %v, want [code123]", got)
	}
	if _, ok := m.Get(KeySendIR); ok {
		t.Error("Write() should not store a value")
	}
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.SetState(KeyReceivedIR, "x")
		}()
	}
	wg.Wait()
	if got := m.Count(KeyReceivedIR, "x"); got != 50 {
		t.Errorf("Count() = %d, want 50", got)
	}
}

type failingSink struct{ err error }

func (f failingSink) SetState(string, string) error { return f.err }

func TestTee(t *testing.T) {
	primary := NewMemory()
	mirror := NewMemory()
	tee := NewTee(primary, mirror)

	if err := tee.SetState(KeyReceivedIR, "abc"); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if v, _ := primary.Get(KeyReceivedIR); v != "abc" {
		t.Errorf("primary value = %q", v)
	}
	if v, _ := mirror.Get(KeyReceivedIR); v != "abc" {
		t.Errorf("mirror value = %q", v)
	}

	// Declare and Subscribe go to the primary only
	_ = tee.Declare(SendIRDefinition)
	if _, ok := mirror.Definition(KeySendIR); ok {
		t.Error("Declare() reached the sink")
	}

	boom := errors.New("boom")
	tee = NewTee(primary, failingSink{boom})
	if err := tee.SetState(KeyReceivedIR, "def"); !errors.Is(err, boom) {
		t.Errorf("SetState() error = %v, want boom", err)
	}
	if v, _ := primary.Get(KeyReceivedIR); v != "def" {
		t.Errorf("primary value = %q after sink failure", v)
	}
}

func TestKeysAndDefinitions(t *testing.T) {
	if SysVarKey("07") != "id07" {
		t.Errorf("SysVarKey(07) = %q", SysVarKey("07"))
	}
	if BoolValue(true) != "true" || BoolValue(false) != "false" {
		t.Error("BoolValue() mismatch")
	}
	if !SendIRDefinition.Write || ReceivedIRDefinition.Write {
		t.Error("only sendIrData is writable")
	}
	if ConnectionDefinition.Type != "boolean" {
		t.Errorf("connection type = %q", ConnectionDefinition.Type)
	}
}
