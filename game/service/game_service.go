package service

import (
	"context"

	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/history"
)

// GameService defines every operation the real-time transport and the REST
// API drive against the game core.
type GameService interface {
	// Connection lifecycle
	Connect(ctx context.Context, userID, login, handle string)
	Disconnect(ctx context.Context, handle string)

	// Matchmaking
	Challenge(ctx context.Context, challengerHandle, opponentLogin string) error
	RespondInvitation(ctx context.Context, handle, challengerHandle string, accepted bool) error
	JoinQueue(ctx context.Context, handle string) error

	// Session lifecycle
	SetMap(ctx context.Context, handle, room, mapName string) error
	GiveUp(ctx context.Context, handle, room string) error
	Finish(ctx context.Context, handle string, bcast BroadcastDto, score ScoreDto) error

	// Spectators
	Watch(ctx context.Context, handle, watchID string) (*SessionInfo, error)
	LeaveWatch(ctx context.Context, handle, watchID string) error

	// Gameplay relay
	Relay(ctx context.Context, handle, event string, bcast BroadcastDto, payload any) error

	// Read surface
	LiveSessions(ctx context.Context) []*SessionInfo
	GetSession(ctx context.Context, roomID string) (*SessionInfo, error)
	MatchHistory(ctx context.Context, limit int) ([]*history.Match, error)
	Leaderboard(ctx context.Context) ([]*history.Standing, error)

	// Map catalog
	ListMaps(ctx context.Context) ([]*config.MapInfo, error)
	LoadMap(ctx context.Context, name string) (*config.MapConfig, error)
	SaveMap(ctx context.Context, name string, cfg *config.MapConfig) error
}

// Emitter delivers events to live transport handles and rooms. A handle
// gone stale makes the delivery a best-effort no-op; it never surfaces as
// an error and never blocks other recipients of the same broadcast.
type Emitter interface {
	Send(handle, event string, payload any)
	JoinRoom(handle, room string)
	LeaveRoom(handle, room string)
	// Broadcast delivers to every member of the given rooms except
	// excludeHandle, in per-room arrival order.
	Broadcast(rooms []string, excludeHandle, event string, payload any)
	// CloseRoom drops all membership entries for the given rooms.
	CloseRoom(rooms ...string)
	// CloseHandle retires a superseded connection.
	CloseHandle(handle string)
}

// MapCatalog is the read/write view of the map definitions the service
// validates negotiation against.
type MapCatalog interface {
	LoadMap(name string) (*config.MapConfig, error)
	ListMaps() ([]*config.MapInfo, error)
	SaveMap(name string, cfg *config.MapConfig) error
	Has(name string) bool
	GetDefault() *config.MapConfig
}
