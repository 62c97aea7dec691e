package service

import (
	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/engine"
)

// PublicUser is the profile shape shared with other players and spectators.
type PublicUser struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	InGame bool   `json:"in_game"`
}

// SessionInfo is the session snapshot handed to spectators and the REST
// API, with the negotiated map's tuning attached once known.
type SessionInfo struct {
	*engine.Snapshot
	MapConfig *config.MapConfig `json:"map_config,omitempty"`
}

// BroadcastDto carries the routing pair every gameplay event is addressed
// with: the room and, once spectators exist, the spectator group.
type BroadcastDto struct {
	Room     string `json:"room"`
	Watchers string `json:"watchers,omitempty"`
}

// ScoreDto is the authoritative score pair, initiator first.
type ScoreDto struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// BallPosDto is the ball's position and velocity as simulated by the
// emitting client.
type BallPosDto struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PowerUpDto describes a power-up spawn or pickup.
type PowerUpDto struct {
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// GamePlayerDto is one paddle's state.
type GamePlayerDto struct {
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Speed  float64 `json:"speed,omitempty"`
}

// PlayerUpdateDto pairs a paddle state with the player slot it belongs to.
type PlayerUpdateDto struct {
	GamePlayer GamePlayerDto `json:"gamePlayer"`
	PlayerNb   int           `json:"playerNb"`
}

// GameInvitationPayload notifies the opponent of a challenge. To is the
// challenger's own handle so the reply can be routed back without a
// directory lookup.
type GameInvitationPayload struct {
	Challenger PublicUser `json:"challenger"`
	To         string     `json:"to"`
}

// RoomPayload carries just a room id, used by startGame and the setMap
// prompt to the chooser.
type RoomPayload struct {
	Room string `json:"room"`
}

// GameDataPayload is echoed to both players once the map is negotiated.
type GameDataPayload struct {
	Map   string `json:"map"`
	Watch string `json:"watch"`
}

// GameFinishedPayload announces a normal end with the final score.
type GameFinishedPayload struct {
	Room  string   `json:"room"`
	Score ScoreDto `json:"score"`
}

// GameForfeitedPayload announces a forfeit and the declared winner.
type GameForfeitedPayload struct {
	Room   string     `json:"room"`
	Winner PublicUser `json:"winner"`
}

// ErrorPayload is the structured failure value carried back to the caller
// over the same channel that delivered the offending event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
