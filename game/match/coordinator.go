package match

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotConnected   = errors.New("player is not connected")
	ErrSelfChallenge  = errors.New("players must be distinct")
	ErrBusy           = errors.New("player is already in a game")
	ErrAlreadyPending = errors.New("invitation already pending between these players")
	ErrResolutionLost = errors.New("a party disconnected before the invitation resolved")
)

// Invitation is the transient record of a direct challenge. It lives only
// until answered or until one party disconnects; it is never persisted.
type Invitation struct {
	Challenger Presence
	Opponent   Presence
	CreatedAt  time.Time
}

// Reply is the outcome of answering an invitation, with both parties freshly
// resolved at reply time.
type Reply struct {
	Challenger Presence
	Opponent   Presence
	Accepted   bool
}

// Pair is a successful queue match, oldest entry first.
type Pair struct {
	First  Presence
	Second Presence
}

type queueEntry struct {
	userID   string
	enqueued time.Time
}

// Coordinator pairs two willing players into a pending session, either by
// direct invitation or through the FIFO waiting queue. Both entry paths are
// serialized through one mutex so a player cannot be matched by both
// simultaneously.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	pending  map[string]*Invitation // keyed by unordered player pair
	queue    []queueEntry
}

// NewCoordinator creates a coordinator resolving players through the given
// registry.
func NewCoordinator(registry *Registry) *Coordinator {
	return &Coordinator{
		registry: registry,
		pending:  make(map[string]*Invitation),
	}
}

// Challenge creates an invitation from the owner of challengerHandle to the
// user with the given login. Preconditions are checked in order: the
// opponent must be connected, distinct from the challenger, and neither
// party in a game; only one invitation per player pair may be pending.
// A pending invitation never touches the in-game flag; it is set when a
// session actually forms.
func (c *Coordinator) Challenge(challengerHandle, opponentLogin string) (*Invitation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	challenger, ok := c.registry.ResolveHandle(challengerHandle)
	if !ok {
		return nil, ErrNotConnected
	}
	opponent, ok := c.registry.ResolveLogin(opponentLogin)
	if !ok {
		return nil, ErrNotConnected
	}
	if opponent.UserID == challenger.UserID {
		return nil, ErrSelfChallenge
	}
	if opponent.InGame || challenger.InGame {
		return nil, ErrBusy
	}

	key := pairKey(challenger.UserID, opponent.UserID)
	if _, dup := c.pending[key]; dup {
		return nil, ErrAlreadyPending
	}

	inv := &Invitation{
		Challenger: challenger,
		Opponent:   opponent,
		CreatedAt:  time.Now(),
	}
	c.pending[key] = inv
	return inv, nil
}

// Respond answers an invitation. Both parties are resolved freshly by their
// live handles rather than from the stored invitation, guarding against
// disconnects during the decision window: if either side is gone the
// invitation dies with ErrResolutionLost and no session is created. An
// accept while either freshly-resolved party is already mid-game is refused
// with ErrBusy, leaving the invitation pending; declines and lost
// resolutions never touch anyone's in-game flag.
func (c *Coordinator) Respond(opponentHandle, challengerHandle string, accept bool) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	challenger, haveCh := c.registry.ResolveHandle(challengerHandle)
	opponent, haveOp := c.registry.ResolveHandle(opponentHandle)

	if !haveCh || !haveOp {
		c.dropPendingByHandle(challengerHandle, opponentHandle)
		return nil, ErrResolutionLost
	}

	key := pairKey(challenger.UserID, opponent.UserID)
	if _, ok := c.pending[key]; !ok {
		// Invitation vanished: a disconnect cleanup won the race.
		return nil, ErrResolutionLost
	}

	if !accept {
		delete(c.pending, key)
		return &Reply{Challenger: challenger, Opponent: opponent, Accepted: false}, nil
	}

	if challenger.InGame || opponent.InGame {
		// One of them started a real game in the meantime; the stale
		// invitation stays pending until answered again or dropped.
		return nil, ErrBusy
	}

	delete(c.pending, key)
	c.registry.SetInGame(challenger.UserID, true)
	c.registry.SetInGame(opponent.UserID, true)
	challenger.InGame = true
	opponent.InGame = true
	return &Reply{Challenger: challenger, Opponent: opponent, Accepted: true}, nil
}

// JoinQueue places the caller in the FIFO waiting pool. When two distinct,
// still-connected, not-in-game entries are available the two oldest are
// paired and returned; otherwise the pair is nil and the caller waits for a
// later join to complete the match. Joining twice is refused.
func (c *Coordinator) JoinQueue(handle string) (*Pair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.registry.ResolveHandle(handle)
	if !ok {
		return nil, ErrNotConnected
	}
	if p.InGame {
		return nil, ErrBusy
	}
	for _, e := range c.queue {
		if e.userID == p.UserID {
			return nil, ErrSelfChallenge
		}
	}

	c.queue = append(c.queue, queueEntry{userID: p.UserID, enqueued: time.Now()})
	return c.matchQueueLocked(), nil
}

// matchQueueLocked pops the two oldest eligible entries, skipping players
// that disconnected or got matched through an invitation in the interim.
func (c *Coordinator) matchQueueLocked() *Pair {
	var eligible []Presence
	var keep []queueEntry

	for _, e := range c.queue {
		p, ok := c.registry.Resolve(e.userID)
		if !ok {
			continue // disconnected while waiting, drop silently
		}
		if p.InGame {
			continue
		}
		if len(eligible) < 2 {
			eligible = append(eligible, p)
			continue
		}
		keep = append(keep, e)
	}

	if len(eligible) < 2 {
		return nil
	}

	c.queue = keep
	c.registry.SetInGame(eligible[0].UserID, true)
	c.registry.SetInGame(eligible[1].UserID, true)
	eligible[0].InGame = true
	eligible[1].InGame = true
	return &Pair{First: eligible[0], Second: eligible[1]}
}

// DropUser removes every queue entry and pending invitation involving the
// user, typically on disconnect. Counterparts released from a pending
// invitation are returned so the caller can notify them; their in-game
// flags are left alone, a dying invitation says nothing about whether the
// counterpart is mid-game elsewhere.
func (c *Coordinator) DropUser(userID string) []Presence {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keep []queueEntry
	for _, e := range c.queue {
		if e.userID != userID {
			keep = append(keep, e)
		}
	}
	c.queue = keep

	var released []Presence
	for key, inv := range c.pending {
		if inv.Challenger.UserID != userID && inv.Opponent.UserID != userID {
			continue
		}
		delete(c.pending, key)

		other := inv.Challenger
		if other.UserID == userID {
			other = inv.Opponent
		}
		if fresh, ok := c.registry.Resolve(other.UserID); ok {
			released = append(released, fresh)
		}
	}
	return released
}

// PendingCount returns the number of outstanding invitations.
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// QueueLen returns the number of waiting queue entries.
func (c *Coordinator) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// dropPendingByHandle removes any invitation captured with either of the
// given handles, used when a party can no longer be resolved.
func (c *Coordinator) dropPendingByHandle(handles ...string) {
	for key, inv := range c.pending {
		for _, h := range handles {
			if inv.Challenger.Handle == h || inv.Opponent.Handle == h {
				delete(c.pending, key)
				break
			}
		}
	}
}

func pairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "|" + ids[1]
}
