package match

import "testing"

func TestConnectResolve(t *testing.T) {
	r := NewRegistry()

	if superseded := r.Connect("u1", "alice", "h1"); superseded != "" {
		t.Errorf("first connect superseded %q, want empty", superseded)
	}

	p, ok := r.Resolve("u1")
	if !ok || p.Login != "alice" || p.Handle != "h1" {
		t.Errorf("Resolve = %+v, %t", p, ok)
	}
	if p, ok := r.ResolveLogin("alice"); !ok || p.UserID != "u1" {
		t.Errorf("ResolveLogin = %+v, %t", p, ok)
	}
	if p, ok := r.ResolveHandle("h1"); !ok || p.UserID != "u1" {
		t.Errorf("ResolveHandle = %+v, %t", p, ok)
	}
	if _, ok := r.Resolve("ghost"); ok {
		t.Error("unknown user should not resolve")
	}
}

func TestReconnectSupersedes(t *testing.T) {
	r := NewRegistry()
	r.Connect("u1", "alice", "h1")

	superseded := r.Connect("u1", "alice", "h2")
	if superseded != "h1" {
		t.Fatalf("superseded = %q, want h1", superseded)
	}

	if _, ok := r.ResolveHandle("h1"); ok {
		t.Error("superseded handle should no longer resolve")
	}
	if p, ok := r.ResolveHandle("h2"); !ok || p.UserID != "u1" {
		t.Errorf("fresh handle = %+v, %t", p, ok)
	}

	// A late disconnect of the superseded handle must not evict the fresh
	// mapping.
	if _, removed := r.Disconnect("h1"); removed {
		t.Error("superseded handle should already be gone")
	}
	if _, ok := r.Resolve("u1"); !ok {
		t.Error("user should survive the stale disconnect")
	}
}

func TestDisconnect(t *testing.T) {
	r := NewRegistry()
	r.Connect("u1", "alice", "h1")

	p, removed := r.Disconnect("h1")
	if !removed || p.Login != "alice" {
		t.Fatalf("Disconnect = %+v, %t", p, removed)
	}
	if _, ok := r.Resolve("u1"); ok {
		t.Error("disconnected user should not resolve")
	}
	if _, ok := r.ResolveLogin("alice"); ok {
		t.Error("disconnected login should not resolve")
	}
}

func TestSetInGame(t *testing.T) {
	r := NewRegistry()
	r.Connect("u1", "alice", "h1")

	if !r.SetInGame("u1", true) {
		t.Fatal("SetInGame on connected user failed")
	}
	if p, _ := r.Resolve("u1"); !p.InGame {
		t.Error("in-game flag not set")
	}
	if r.SetInGame("ghost", true) {
		t.Error("SetInGame on unknown user should report false")
	}
}

func TestOnline(t *testing.T) {
	r := NewRegistry()
	r.Connect("u1", "alice", "h1")
	r.Connect("u2", "bob", "h2")

	if got := len(r.Online()); got != 2 {
		t.Errorf("Online returned %d presences, want 2", got)
	}
}
