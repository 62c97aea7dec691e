package websocket

import "encoding/json"

// envelope is the wire framing shared by both directions: an event name
// plus an event-specific data object.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(envelope{Event: event, Data: data})
}

// Inbound payload shapes. The service DTOs are not reused directly here:
// the wire carries the bcast envelope and per-event fields the way the
// front end sends them.

// The front end answers an invitation with the literal "OK"; any other
// response string declines.
type invitResponseMsg struct {
	Response string `json:"response"`
	To       string `json:"to"`
}

func (m invitResponseMsg) accepted() bool { return m.Response == "OK" }

type challengeMsg struct {
	Login string `json:"login"`
}

type setMapMsg struct {
	Room string `json:"room"`
	Map  string `json:"map"`
}

type roomMsg struct {
	Room string `json:"room"`
}
