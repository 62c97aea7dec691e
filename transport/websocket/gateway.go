package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/engine"
	"github.com/frfrance/pong-arena/game/match"
	"github.com/frfrance/pong-arena/game/service"
	"github.com/frfrance/pong-arena/game/session"
)

// Relay-style inbound shapes: a bcast envelope plus the event payload.

type bcastMsg struct {
	Bcast service.BroadcastDto `json:"bcast"`
}

type finishMsg struct {
	Bcast service.BroadcastDto `json:"bcast"`
	Score service.ScoreDto     `json:"score"`
}

type powerUpMsg struct {
	Bcast   service.BroadcastDto `json:"bcast"`
	PowerUp service.PowerUpDto   `json:"powerup"`
}

type ballPosMsg struct {
	Bcast   service.BroadcastDto `json:"bcast"`
	BallPos service.BallPosDto   `json:"ballpos"`
}

type playerUpdateMsg struct {
	Bcast      service.BroadcastDto  `json:"bcast"`
	GamePlayer service.GamePlayerDto `json:"gamePlayer"`
	PlayerNb   int                   `json:"playerNb"`
}

var errBadPayload = errors.New("bad payload")

// decode unmarshals an event's data object, folding every malformation
// into errBadPayload so the wire code comes out right.
func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

// handleMessage decodes one inbound frame and dispatches it to the game
// service. Failures are answered with an error event on the same
// connection; nothing a client sends tears the connection down.
func (c *Client) handleMessage(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("bad_payload", "malformed message")
		return
	}

	ctx := context.Background()
	var err error

	switch env.Event {
	case service.EventChallengePlayer:
		var msg challengeMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.Challenge(ctx, c.handle, msg.Login)
		}

	case service.EventJoinQueue:
		err = c.hub.svc.JoinQueue(ctx, c.handle)

	case service.EventInvitResponse:
		var msg invitResponseMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.RespondInvitation(ctx, c.handle, msg.To, msg.accepted())
		}

	case service.EventSetMap:
		var msg setMapMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.SetMap(ctx, c.handle, msg.Room, msg.Map)
		}

	case service.EventGiveUp:
		var msg bcastMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.GiveUp(ctx, c.handle, msg.Bcast.Room)
		}

	case service.EventGameFinished:
		var msg finishMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.Finish(ctx, c.handle, msg.Bcast, msg.Score)
		}

	case service.EventWatchGame:
		var msg roomMsg
		if err = decode(env.Data, &msg); err == nil {
			var info *service.SessionInfo
			if info, err = c.hub.svc.Watch(ctx, c.handle, msg.Room); err == nil {
				c.hub.Send(c.handle, service.EventWatchGame, info)
			}
		}

	case service.EventLeaveWatchGame:
		var msg roomMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.LeaveWatch(ctx, c.handle, msg.Room)
		}

	case service.EventScoreUpdate:
		var msg finishMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.Relay(ctx, c.handle, env.Event, msg.Bcast, msg.Score)
		}

	case service.EventPowerUpUpdate:
		var msg powerUpMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.Relay(ctx, c.handle, env.Event, msg.Bcast, msg.PowerUp)
		}

	case service.EventBallPosUpdate:
		var msg ballPosMsg
		if err = decode(env.Data, &msg); err == nil {
			err = c.hub.svc.Relay(ctx, c.handle, env.Event, msg.Bcast, msg.BallPos)
		}

	case service.EventPlayerUpdate:
		var msg playerUpdateMsg
		if err = decode(env.Data, &msg); err == nil {
			payload := service.PlayerUpdateDto{GamePlayer: msg.GamePlayer, PlayerNb: msg.PlayerNb}
			err = c.hub.svc.Relay(ctx, c.handle, env.Event, msg.Bcast, payload)
		}

	default:
		c.sendError("unknown_event", "unknown event: "+env.Event)
		return
	}

	if err != nil {
		code := errorCode(err)
		log.Printf("[WS] event=%s login=%s rejected: %v", env.Event, c.login, err)
		c.sendError(code, err.Error())
	}
}

func (c *Client) sendError(code, message string) {
	c.hub.Send(c.handle, service.EventError, service.ErrorPayload{Code: code, Message: message})
}

// errorCode maps game core errors to wire error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadPayload):
		return "bad_payload"
	case errors.Is(err, match.ErrNotConnected):
		return "not_connected"
	case errors.Is(err, match.ErrSelfChallenge):
		return "self_challenge"
	case errors.Is(err, match.ErrBusy), errors.Is(err, session.ErrPlayerBusy):
		return "busy"
	case errors.Is(err, match.ErrAlreadyPending):
		return "already_pending"
	case errors.Is(err, match.ErrResolutionLost):
		return "resolution_lost"
	case errors.Is(err, engine.ErrMapNotSet):
		return "map_not_set"
	case errors.Is(err, engine.ErrInvalidChooser):
		return "invalid_chooser"
	case errors.Is(err, engine.ErrInvalidTransition), errors.Is(err, engine.ErrSessionOver):
		return "invalid_transition"
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrMapNotFound),
		errors.Is(err, engine.ErrUnknownPlayer):
		return "not_found"
	case errors.Is(err, config.ErrInvalidMap):
		return "bad_payload"
	default:
		return "invalid_transition"
	}
}
