package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/engine"
	"github.com/frfrance/pong-arena/game/history"
	"github.com/frfrance/pong-arena/game/match"
	"github.com/frfrance/pong-arena/game/session"
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	registry *match.Registry
	matches  *match.Coordinator
	sessions *session.Manager
	maps     MapCatalog
	recorder history.Recorder
	emitter  Emitter

	countdownFrom     int
	countdownInterval time.Duration
}

// NewGameService wires the game core together.
func NewGameService(
	registry *match.Registry,
	matches *match.Coordinator,
	sessions *session.Manager,
	maps MapCatalog,
	recorder history.Recorder,
	emitter Emitter,
) GameService {
	return &gameServiceImpl{
		registry:          registry,
		matches:           matches,
		sessions:          sessions,
		maps:              maps,
		recorder:          recorder,
		emitter:           emitter,
		countdownFrom:     5,
		countdownInterval: time.Second,
	}
}

// Connection lifecycle

func (s *gameServiceImpl) Connect(ctx context.Context, userID, login, handle string) {
	superseded := s.registry.Connect(userID, login, handle)
	if superseded != "" {
		// Reconnect race: the fresh handle wins, the old one is retired.
		s.emitter.CloseHandle(superseded)
		log.Printf("[CONN] user=%s reconnected handle=%s superseded=%s", login, handle, superseded)
		return
	}
	log.Printf("[CONN] user=%s connected handle=%s", login, handle)
}

func (s *gameServiceImpl) Disconnect(ctx context.Context, handle string) {
	p, ok := s.registry.ResolveHandle(handle)
	if ok {
		// Forfeit before the mapping goes away so the session still sees
		// a resolvable leaver.
		if sess, inGame := s.sessions.ForUser(p.UserID); inGame {
			s.forfeitSession(ctx, sess, p)
		}
		for _, other := range s.matches.DropUser(p.UserID) {
			s.emitter.Send(other.Handle, EventGameDenied, publicUser(other))
		}
	}

	if p, removed := s.registry.Disconnect(handle); removed {
		log.Printf("[CONN] user=%s disconnected handle=%s", p.Login, handle)
	}
}

// Matchmaking

func (s *gameServiceImpl) Challenge(ctx context.Context, challengerHandle, opponentLogin string) error {
	inv, err := s.matches.Challenge(challengerHandle, opponentLogin)
	if err != nil {
		return err
	}

	log.Printf("[MATCH] invitation %s -> %s", inv.Challenger.Login, inv.Opponent.Login)
	s.emitter.Send(inv.Opponent.Handle, EventGameInvitation, GameInvitationPayload{
		Challenger: publicUser(inv.Challenger),
		To:         inv.Challenger.Handle,
	})
	return nil
}

func (s *gameServiceImpl) RespondInvitation(ctx context.Context, handle, challengerHandle string, accepted bool) error {
	reply, err := s.matches.Respond(handle, challengerHandle, accepted)
	if err != nil {
		if errors.Is(err, match.ErrResolutionLost) {
			// Whichever party is still here learns the exchange died.
			if _, alive := s.registry.ResolveHandle(challengerHandle); alive {
				s.emitter.Send(challengerHandle, EventGameDenied, nil)
			}
		}
		return err
	}

	if !reply.Accepted {
		log.Printf("[MATCH] invitation declined by %s", reply.Opponent.Login)
		s.emitter.Send(reply.Challenger.Handle, EventGameDenied, publicUser(reply.Opponent))
		return nil
	}

	log.Printf("[MATCH] invitation accepted by %s", reply.Opponent.Login)
	if err := s.startSession(ctx, reply.Challenger, reply.Opponent); err != nil {
		return err
	}
	// Announced only once the session exists, so an accept for a game that
	// never starts is never heard.
	s.emitter.Send(reply.Challenger.Handle, EventGameAccepted, publicUser(reply.Opponent))
	return nil
}

func (s *gameServiceImpl) JoinQueue(ctx context.Context, handle string) error {
	pair, err := s.matches.JoinQueue(handle)
	if err != nil {
		return err
	}
	if pair == nil {
		log.Printf("[MATCH] handle=%s waiting in queue", handle)
		return nil
	}

	log.Printf("[MATCH] queue paired %s vs %s", pair.First.Login, pair.Second.Login)
	s.emitter.Send(pair.First.Handle, EventNewPlayerJoined, publicUser(pair.Second))
	s.emitter.Send(pair.Second.Handle, EventNewPlayerJoined, publicUser(pair.First))
	return s.startSession(ctx, pair.First, pair.Second)
}

// startSession creates the directory entry, writes the initial match
// record, binds both handles to the room and prompts the chooser.
func (s *gameServiceImpl) startSession(ctx context.Context, first, second match.Presence) error {
	p1 := engine.Player{UserID: first.UserID, Login: first.Login, Handle: first.Handle}
	p2 := engine.Player{UserID: second.UserID, Login: second.Login, Handle: second.Handle}

	sess, err := s.sessions.Create(p1, p2)
	if err != nil {
		s.releaseIfIdle(first.UserID)
		s.releaseIfIdle(second.UserID)
		return err
	}
	if err := sess.Start(); err != nil {
		return err
	}

	if err := s.recorder.CreateMatch(ctx, matchRecord(sess)); err != nil {
		log.Printf("Warning: failed to create match record %s: %v", sess.ID(), err)
	}

	s.emitter.JoinRoom(p1.Handle, sess.ID())
	s.emitter.JoinRoom(p2.Handle, sess.ID())
	s.emitter.Broadcast([]string{sess.ID()}, "", EventStartGame, RoomPayload{Room: sess.ID()})

	// The first-listed player negotiates the map.
	s.emitter.Send(p1.Handle, EventSetMap, RoomPayload{Room: sess.ID()})

	log.Printf("[GAME] session=%s created %s vs %s", sess.ID(), p1.Login, p2.Login)
	return nil
}

// releaseIfIdle clears the in-game flag unless the user has a live session;
// a failed pairing must not free a player who is mid-game elsewhere.
func (s *gameServiceImpl) releaseIfIdle(userID string) {
	if _, busy := s.sessions.ForUser(userID); !busy {
		s.registry.SetInGame(userID, false)
	}
}

// Session lifecycle

func (s *gameServiceImpl) SetMap(ctx context.Context, handle, room, mapName string) error {
	p, ok := s.registry.ResolveHandle(handle)
	if !ok {
		return match.ErrNotConnected
	}
	sess, err := s.sessions.Get(room)
	if err != nil {
		return err
	}
	if !s.maps.Has(mapName) {
		return config.ErrMapNotFound
	}

	if err := sess.SetMap(p.UserID, mapName); err != nil {
		return err
	}
	if sess.State() != engine.StateStarting {
		// Network resend of the choice: the countdown is already running
		// (or just finished), nothing to redo.
		return nil
	}

	watch := sess.EnsureWatchID()
	if err := s.sessions.RegisterWatch(room, watch); err != nil {
		return err
	}

	payload := GameDataPayload{Map: mapName, Watch: watch}
	for _, player := range sess.Players() {
		s.emitter.Send(player.Handle, EventGetGameData, payload)
	}

	err = sess.StartCountdown(s.countdownFrom, s.countdownInterval,
		func(n int) {
			s.emitter.Broadcast([]string{room}, "", EventCountDown, n)
		},
		func() {
			log.Printf("[GAME] session=%s live map=%s", room, mapName)
		},
	)
	if err != nil {
		return err
	}

	log.Printf("[GAME] session=%s map=%s watch=%s", room, mapName, watch)
	return nil
}

func (s *gameServiceImpl) GiveUp(ctx context.Context, handle, room string) error {
	p, ok := s.registry.ResolveHandle(handle)
	if !ok {
		return match.ErrNotConnected
	}
	sess, err := s.sessions.Get(room)
	if err != nil {
		return err
	}
	return s.forfeitSession(ctx, sess, p)
}

func (s *gameServiceImpl) Finish(ctx context.Context, handle string, bcast BroadcastDto, score ScoreDto) error {
	p, ok := s.registry.ResolveHandle(handle)
	if !ok {
		return match.ErrNotConnected
	}
	sess, err := s.sessions.Get(bcast.Room)
	if err != nil {
		return err
	}
	if !sess.HasPlayer(p.UserID) {
		return engine.ErrUnknownPlayer
	}

	if err := sess.Finish(score.Score1, score.Score2); err != nil {
		return err
	}

	s.emitter.Broadcast(s.broadcastGroups(sess), handle, EventGameFinished, GameFinishedPayload{
		Room:  sess.ID(),
		Score: score,
	})

	log.Printf("[GAME] session=%s finished %d:%d winner=%s",
		sess.ID(), score.Score1, score.Score2, sess.Winner())
	s.finalize(ctx, sess)
	return nil
}

// forfeitSession drives a session to Forfeited exactly once; a transition
// that already happened is not an error worth reporting to anyone.
func (s *gameServiceImpl) forfeitSession(ctx context.Context, sess *engine.Session, leaver match.Presence) error {
	winner, err := sess.Forfeit(leaver.UserID)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTransition) {
			return nil
		}
		return err
	}

	s.emitter.Broadcast(s.broadcastGroups(sess), leaver.Handle, EventGameForfeited, GameForfeitedPayload{
		Room: sess.ID(),
		Winner: PublicUser{
			UserID: winner.UserID,
			Login:  winner.Login,
			InGame: false,
		},
	})

	log.Printf("[GAME] session=%s forfeited by %s, winner=%s", sess.ID(), leaver.Login, winner.Login)
	s.finalize(ctx, sess)
	return nil
}

// finalize writes the durable record, releases both players and evicts the
// session. The directory removal happens strictly after the durable write
// so a late event can never reference a session persistence never saw.
func (s *gameServiceImpl) finalize(ctx context.Context, sess *engine.Session) {
	if err := s.recorder.FinishMatch(ctx, matchRecord(sess)); err != nil {
		log.Printf("Warning: failed to finalize match record %s: %v", sess.ID(), err)
	}

	for _, p := range sess.Players() {
		s.registry.SetInGame(p.UserID, false)
	}

	groups := s.broadcastGroups(sess)
	if err := s.sessions.Remove(sess.ID()); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		log.Printf("Warning: failed to remove session %s: %v", sess.ID(), err)
	}
	s.emitter.CloseRoom(groups...)
}

// Spectators

func (s *gameServiceImpl) Watch(ctx context.Context, handle, watchID string) (*SessionInfo, error) {
	sess, err := s.sessions.GetByWatch(watchID)
	if err != nil {
		return nil, err
	}

	s.emitter.JoinRoom(handle, watchID)
	log.Printf("[WATCH] handle=%s watching session=%s", handle, sess.ID())
	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) LeaveWatch(ctx context.Context, handle, watchID string) error {
	if _, err := s.sessions.GetByWatch(watchID); err != nil {
		return err
	}
	s.emitter.LeaveRoom(handle, watchID)
	return nil
}

// Gameplay relay

func (s *gameServiceImpl) Relay(ctx context.Context, handle, event string, bcast BroadcastDto, payload any) error {
	p, ok := s.registry.ResolveHandle(handle)
	if !ok {
		return match.ErrNotConnected
	}

	sess, err := s.sessions.Get(bcast.Room)
	if err != nil {
		// Terminal sessions are evicted; late gameplay events are dropped,
		// not errors.
		return nil
	}

	if err := sess.RelayCheck(p.UserID); err != nil {
		if errors.Is(err, engine.ErrSessionOver) {
			return nil
		}
		return err
	}

	if score, isScore := payload.(ScoreDto); isScore && event == EventScoreUpdate {
		if err := sess.RecordScore(score.Score1, score.Score2); err != nil {
			return err
		}
	}

	// The broadcast target is recomputed from the owning session rather
	// than trusted from the sender's bcast field.
	s.emitter.Broadcast(s.broadcastGroups(sess), handle, event, payload)
	return nil
}

// broadcastGroups returns the room plus the spectator group once assigned.
func (s *gameServiceImpl) broadcastGroups(sess *engine.Session) []string {
	groups := []string{sess.ID()}
	if watch := sess.WatchID(); watch != "" {
		groups = append(groups, watch)
	}
	return groups
}

// Read surface

func (s *gameServiceImpl) LiveSessions(ctx context.Context) []*SessionInfo {
	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, s.sessionInfo(sess))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

func (s *gameServiceImpl) GetSession(ctx context.Context, roomID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(roomID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) MatchHistory(ctx context.Context, limit int) ([]*history.Match, error) {
	return s.recorder.History(ctx, limit)
}

func (s *gameServiceImpl) Leaderboard(ctx context.Context) ([]*history.Standing, error) {
	return s.recorder.Leaderboard(ctx)
}

// Map catalog

func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*config.MapInfo, error) {
	return s.maps.ListMaps()
}

func (s *gameServiceImpl) LoadMap(ctx context.Context, name string) (*config.MapConfig, error) {
	return s.maps.LoadMap(name)
}

func (s *gameServiceImpl) SaveMap(ctx context.Context, name string, cfg *config.MapConfig) error {
	return s.maps.SaveMap(name, cfg)
}

// helpers

func (s *gameServiceImpl) sessionInfo(sess *engine.Session) *SessionInfo {
	info := &SessionInfo{Snapshot: sess.Snapshot()}
	if info.Map != "" {
		if cfg, err := s.maps.LoadMap(info.Map); err == nil {
			info.MapConfig = cfg
		}
	}
	return info
}

func matchRecord(sess *engine.Session) *history.Match {
	snap := sess.Snapshot()
	m := &history.Match{
		ID:        snap.ID,
		Map:       snap.Map,
		Winner:    snap.Winner,
		Forfeit:   snap.Forfeit,
		Finished:  !snap.EndedAt.IsZero(),
		CreatedAt: snap.CreatedAt,
		StartedAt: snap.StartedAt,
		EndedAt:   snap.EndedAt,
	}
	for i, p := range snap.Players {
		m.Players[i] = history.PlayerResult{
			UserID: p.UserID,
			Login:  p.Login,
			Score:  snap.Score[i],
			Winner: snap.Winner != "" && snap.Winner == p.Login,
		}
	}
	if !snap.StartedAt.IsZero() && !snap.EndedAt.IsZero() {
		m.Duration = snap.EndedAt.Sub(snap.StartedAt)
	}
	return m
}

func publicUser(p match.Presence) PublicUser {
	return PublicUser{UserID: p.UserID, Login: p.Login, InGame: p.InGame}
}
