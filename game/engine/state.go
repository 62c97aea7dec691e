package engine

// State identifies where a session is in its lifecycle.
type State int

const (
	// StatePending means the invitation or queue entry is outstanding.
	StatePending State = iota
	// StateStarting means both players are bound and the map is being negotiated.
	StateStarting
	// StateCountingDown means the map is chosen and the tick sequence is running.
	StateCountingDown
	// StateLive means gameplay events flow between the players.
	StateLive
	// StateEnded is terminal: the score threshold was reached.
	StateEnded
	// StateForfeited is terminal: a disconnect or explicit give-up.
	StateForfeited
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateForfeited
}

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStarting:
		return "starting"
	case StateCountingDown:
		return "counting_down"
	case StateLive:
		return "live"
	case StateEnded:
		return "ended"
	case StateForfeited:
		return "forfeited"
	default:
		return "unknown"
	}
}
