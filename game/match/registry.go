package match

import (
	"sync"
)

// Presence is the live view of one user: identity, display login, current
// transport handle and the in-game flag. A user has at most one live handle;
// a handle maps to at most one user.
type Presence struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Handle string `json:"-"`
	InGame bool   `json:"in_game"`
}

// Registry maps logical identities to live transport handles. It holds no
// durable state and is rebuilt entirely from live connections each process
// lifetime.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]*Presence
	byLogin  map[string]*Presence
	byHandle map[string]*Presence
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[string]*Presence),
		byLogin:  make(map[string]*Presence),
		byHandle: make(map[string]*Presence),
	}
}

// Connect records the identity -> handle mapping and marks the user online.
// A previous live handle for the same identity is superseded; its id is
// returned so the transport can retire it. Sends to a superseded handle are
// best-effort no-ops, not errors.
func (r *Registry) Connect(userID, login, handle string) (superseded string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[userID]; ok && prev.Handle != handle {
		superseded = prev.Handle
		delete(r.byHandle, prev.Handle)
	}

	p := &Presence{UserID: userID, Login: login, Handle: handle}
	r.byUser[userID] = p
	r.byLogin[login] = p
	r.byHandle[handle] = p
	return superseded
}

// Disconnect removes the mapping for the given handle and returns the
// presence it belonged to. A handle already superseded by a reconnect leaves
// the fresh mapping alone.
func (r *Registry) Disconnect(handle string) (Presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byHandle[handle]
	if !ok {
		return Presence{}, false
	}

	delete(r.byHandle, handle)
	if cur, ok := r.byUser[p.UserID]; ok && cur.Handle == handle {
		delete(r.byUser, p.UserID)
		delete(r.byLogin, p.Login)
	}
	return *p, true
}

// Resolve returns the presence for a user identity.
func (r *Registry) Resolve(userID string) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID]
	if !ok {
		return Presence{}, false
	}
	return *p, true
}

// ResolveLogin returns the presence for a display login.
func (r *Registry) ResolveLogin(login string) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byLogin[login]
	if !ok {
		return Presence{}, false
	}
	return *p, true
}

// ResolveHandle returns the presence owning a live transport handle.
func (r *Registry) ResolveHandle(handle string) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byHandle[handle]
	if !ok {
		return Presence{}, false
	}
	return *p, true
}

// SetInGame flips the in-game flag for a connected user. It reports whether
// the user was found.
func (r *Registry) SetInGame(userID string, inGame bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byUser[userID]
	if !ok {
		return false
	}
	p.InGame = inGame
	return true
}

// Online returns all connected presences, for status listings.
func (r *Registry) Online() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Presence, 0, len(r.byUser))
	for _, p := range r.byUser {
		result = append(result, *p)
	}
	return result
}
