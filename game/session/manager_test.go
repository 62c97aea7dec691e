package session

import (
	"errors"
	"testing"

	"github.com/frfrance/pong-arena/game/engine"
)

var (
	alice = engine.Player{UserID: "u1", Login: "alice"}
	bob   = engine.Player{UserID: "u2", Login: "bob"}
	carol = engine.Player{UserID: "u3", Login: "carol"}
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager()

	sess, err := m.Create(alice, bob)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID() == "" {
		t.Fatal("session has no room id")
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}

	got, err := m.Get(sess.ID())
	if err != nil || got != sess {
		t.Errorf("Get returned %v, %v", got, err)
	}
	if _, err := m.Get("no-such-room"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get unknown error = %v, want ErrSessionNotFound", err)
	}
}

func TestOneSessionPerPlayer(t *testing.T) {
	m := NewManager()

	if _, err := m.Create(alice, bob); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Either player being busy blocks a second session.
	if _, err := m.Create(alice, carol); !errors.Is(err, ErrPlayerBusy) {
		t.Errorf("Create with busy initiator error = %v, want ErrPlayerBusy", err)
	}
	if _, err := m.Create(carol, bob); !errors.Is(err, ErrPlayerBusy) {
		t.Errorf("Create with busy challenged error = %v, want ErrPlayerBusy", err)
	}
}

func TestForUser(t *testing.T) {
	m := NewManager()
	sess, _ := m.Create(alice, bob)

	got, ok := m.ForUser(bob.UserID)
	if !ok || got != sess {
		t.Errorf("ForUser(bob) = %v, %t", got, ok)
	}
	if _, ok := m.ForUser(carol.UserID); ok {
		t.Error("ForUser(carol) should not resolve")
	}
}

func TestWatchIndex(t *testing.T) {
	m := NewManager()
	sess, _ := m.Create(alice, bob)

	if err := m.RegisterWatch("no-such-room", "w1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("RegisterWatch unknown room error = %v, want ErrSessionNotFound", err)
	}
	// An empty id is ignored, not indexed.
	if err := m.RegisterWatch(sess.ID(), ""); err != nil {
		t.Errorf("RegisterWatch empty id: %v", err)
	}

	watch := sess.EnsureWatchID()
	if err := m.RegisterWatch(sess.ID(), watch); err != nil {
		t.Fatalf("RegisterWatch: %v", err)
	}

	got, err := m.GetByWatch(watch)
	if err != nil || got != sess {
		t.Errorf("GetByWatch = %v, %v", got, err)
	}
	if _, err := m.GetByWatch("bogus"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetByWatch unknown error = %v, want ErrSessionNotFound", err)
	}
}

func TestRemoveClearsIndexes(t *testing.T) {
	m := NewManager()
	sess, _ := m.Create(alice, bob)
	watch := sess.EnsureWatchID()
	if err := m.RegisterWatch(sess.ID(), watch); err != nil {
		t.Fatalf("RegisterWatch: %v", err)
	}

	if err := m.Remove(sess.ID()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count after remove = %d, want 0", m.Count())
	}
	if _, err := m.GetByWatch(watch); !errors.Is(err, ErrSessionNotFound) {
		t.Error("watch index should be cleared on remove")
	}
	if _, ok := m.ForUser(alice.UserID); ok {
		t.Error("user index should be cleared on remove")
	}
	if err := m.Remove(sess.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Remove error = %v, want ErrSessionNotFound", err)
	}

	// Both players are immediately free for a new session.
	if _, err := m.Create(alice, bob); err != nil {
		t.Errorf("Create after remove: %v", err)
	}
}

func TestList(t *testing.T) {
	m := NewManager()
	m.Create(alice, bob)
	m.Create(carol, engine.Player{UserID: "u4", Login: "dave"})

	if got := len(m.List()); got != 2 {
		t.Errorf("List returned %d sessions, want 2", got)
	}
}
