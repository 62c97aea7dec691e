package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMapNotSet         = errors.New("map not set")
	ErrInvalidChooser    = errors.New("only the first player may choose the map")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrUnknownPlayer     = errors.New("player is not part of this session")
	ErrSessionOver       = errors.New("session already over")
)

// ForfeitScore is the default score credited to the remaining player when the
// other one forfeits.
const ForfeitScore = 10

// Player binds a user identity to the transport handle captured when the
// session was created. The handle is opaque to this package.
type Player struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Handle string `json:"-"`
}

// Snapshot is a point-in-time read-only view of a session, rich enough for a
// spectator to render immediately without waiting for the next broadcast.
type Snapshot struct {
	ID        string    `json:"id"`
	Players   [2]Player `json:"players"`
	Map       string    `json:"map,omitempty"`
	WatchID   string    `json:"watch_id,omitempty"`
	State     string    `json:"state"`
	Score     [2]int    `json:"score"`
	Winner    string    `json:"winner,omitempty"`
	Forfeit   bool      `json:"forfeit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Session is the authoritative state of one match. The first-listed player is
// the initiator (challenger or first queue entry) and doubles as the map
// chooser.
type Session struct {
	mu      sync.Mutex
	id      string
	players [2]Player
	mapName string
	watchID string
	state   State
	score   [2]int
	winner  string
	forfeit bool

	createdAt time.Time
	startedAt time.Time
	endedAt   time.Time

	// non-nil only while the countdown goroutine is running
	countdownStop chan struct{}
}

// NewSession creates a session in the Pending state.
func NewSession(id string, initiator, challenged Player) *Session {
	return &Session{
		id:        id,
		players:   [2]Player{initiator, challenged},
		state:     StatePending,
		createdAt: time.Now(),
	}
}

// ID returns the room identifier.
func (s *Session) ID() string { return s.id }

// Players returns both players, initiator first.
func (s *Session) Players() [2]Player { return s.players }

// HasPlayer reports whether the identity is one of the two bound players.
func (s *Session) HasPlayer(userID string) bool {
	return s.players[0].UserID == userID || s.players[1].UserID == userID
}

// Opponent returns the player opposing the given identity.
func (s *Session) Opponent(userID string) (Player, bool) {
	switch userID {
	case s.players[0].UserID:
		return s.players[1], true
	case s.players[1].UserID:
		return s.players[0], true
	}
	return Player{}, false
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Map returns the negotiated map name, empty until negotiated.
func (s *Session) Map() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapName
}

// WatchID returns the spectator-group id, empty until assigned.
func (s *Session) WatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchID
}

// EnsureWatchID assigns the spectator-group id if it is not set yet and
// returns it. Called lazily on the first watch request and on the Live
// transition.
func (s *Session) EnsureWatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureWatchIDLocked()
}

func (s *Session) ensureWatchIDLocked() string {
	if s.watchID == "" {
		s.watchID = uuid.NewString()
	}
	return s.watchID
}

// Start moves the session from Pending to Starting once both players are
// bound and marked in-game.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return ErrInvalidTransition
	}
	s.state = StateStarting
	return nil
}

// SetMap records the chooser's map selection. A resend before the countdown
// overwrites the previous choice; once the countdown is running the choice
// is locked and a duplicate frame is acknowledged without effect. Only the
// first-listed player may choose.
func (s *Session) SetMap(userID, mapName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.HasPlayer(userID) {
		return ErrUnknownPlayer
	}
	if userID != s.players[0].UserID {
		return ErrInvalidChooser
	}
	if s.state == StateCountingDown {
		return nil
	}
	if s.state != StateStarting {
		return ErrInvalidTransition
	}

	s.mapName = mapName
	return nil
}

// StartCountdown moves the session from Starting to CountingDown and emits
// from..0 via tick, one call per interval, on a dedicated goroutine. After
// the last tick the session goes Live automatically and live is invoked.
// The sequence is cancelled if the session reaches a terminal state first;
// in that case live never runs.
func (s *Session) StartCountdown(from int, interval time.Duration, tick func(n int), live func()) error {
	s.mu.Lock()
	if s.state != StateStarting {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if s.mapName == "" {
		s.mu.Unlock()
		return ErrMapNotSet
	}

	stop := make(chan struct{})
	s.state = StateCountingDown
	s.countdownStop = stop
	s.mu.Unlock()

	go s.runCountdown(from, interval, stop, tick, live)
	return nil
}

func (s *Session) runCountdown(from int, interval time.Duration, stop chan struct{}, tick func(n int), live func()) {
	timer := time.NewTicker(interval)
	defer timer.Stop()

	for n := from; n >= 0; n-- {
		tick(n)
		if n == 0 {
			break
		}
		select {
		case <-timer.C:
		case <-stop:
			return
		}
	}

	if s.goLive() && live != nil {
		live()
	}
}

// goLive performs the automatic CountingDown -> Live transition. It returns
// false when a forfeit won the race.
func (s *Session) goLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCountingDown {
		return false
	}
	s.state = StateLive
	s.startedAt = time.Now()
	s.countdownStop = nil
	s.ensureWatchIDLocked()
	return true
}

// RecordScore updates the authoritative score pair while the game is in
// flight. Terminal sessions reject further updates.
func (s *Session) RecordScore(score1, score2 int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionOver
	}
	if s.mapName == "" {
		return ErrMapNotSet
	}
	s.score = [2]int{score1, score2}
	return nil
}

// RelayCheck validates that userID may emit gameplay events into this room.
// Spectators and strangers are refused; events against a terminal session
// report ErrSessionOver so the caller can drop them.
func (s *Session) RelayCheck(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.HasPlayer(userID) {
		return ErrUnknownPlayer
	}
	if s.state.Terminal() {
		return ErrSessionOver
	}
	if s.mapName == "" {
		return ErrMapNotSet
	}
	return nil
}

// Finish moves a Live session to Ended with the final score pair.
func (s *Session) Finish(score1, score2 int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLive {
		return ErrInvalidTransition
	}
	s.state = StateEnded
	s.score = [2]int{score1, score2}
	s.endedAt = time.Now()
	switch {
	case score1 > score2:
		s.winner = s.players[0].Login
	case score2 > score1:
		s.winner = s.players[1].Login
	}
	return nil
}

// Forfeit drives the session to Forfeited from any non-terminal state and
// returns the opposing player, declared winner by default score. A running
// countdown is cancelled. Calling Forfeit twice, or after Ended, fails with
// ErrInvalidTransition so the terminal state is only ever reached once.
func (s *Session) Forfeit(leaverUserID string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.HasPlayer(leaverUserID) {
		return Player{}, ErrUnknownPlayer
	}
	if s.state.Terminal() {
		return Player{}, ErrInvalidTransition
	}

	winner := s.players[1]
	winnerIdx := 1
	if leaverUserID == s.players[1].UserID {
		winner = s.players[0]
		winnerIdx = 0
	}

	if s.countdownStop != nil {
		close(s.countdownStop)
		s.countdownStop = nil
	}

	s.state = StateForfeited
	s.forfeit = true
	s.winner = winner.Login
	s.score[winnerIdx] = ForfeitScore
	s.endedAt = time.Now()
	return winner, nil
}

// Score returns the current score pair, initiator first.
func (s *Session) Score() [2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Winner returns the login of the declared winner, empty before a terminal
// state or on a tie.
func (s *Session) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// Forfeited reports whether the session ended by forfeit.
func (s *Session) Forfeited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forfeit
}

// Duration returns how long the game ran, zero before it ended.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() || s.endedAt.IsZero() {
		return 0
	}
	return s.endedAt.Sub(s.startedAt)
}

// Snapshot returns a consistent read-only view of the session.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Snapshot{
		ID:        s.id,
		Players:   s.players,
		Map:       s.mapName,
		WatchID:   s.watchID,
		State:     s.state.String(),
		Score:     s.score,
		Winner:    s.winner,
		Forfeit:   s.forfeit,
		CreatedAt: s.createdAt,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}
