// Package ws serves JunkShot sessions to browser renderers over websockets.
//
// Every frame is a JSON envelope {"t": type, "p": payload}. Clients send
// start, shoot, pause, resume, stop and state; the server pushes one envelope
// per session event, typed by the event's kind, plus state and error replies.
package ws

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message types.
const (
	MsgStart  = "start"
	MsgShoot  = "shoot"
	MsgPause  = "pause"
	MsgResume = "resume"
	MsgStop   = "stop"
	MsgState  = "state"
)

// Outbound types besides session event kinds.
const (
	MsgError   = "error"
	MsgWelcome = "welcome"
)

// Envelope wraps every frame.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// StartPayload requests a new game.
type StartPayload struct {
	Difficulty string `json:"difficulty"`
}

// ShootPayload aims at a point on the target plane.
type ShootPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ErrorPayload reports a rejected message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// WelcomePayload is sent once after the upgrade.
type WelcomePayload struct {
	Difficulties []string `json:"difficulties"`
}

var errEmptyFrame = errors.New("ws: empty frame")

// Encode marshals payload inside an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("ws: encode: empty envelope type")
	}
	if payload == nil {
		return nil, fmt.Errorf("ws: encode %q: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ws: encode %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses a frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errEmptyFrame
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("ws: decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, errors.New("ws: decode envelope: missing type")
	}
	return e, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("ws: empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("ws: decode %q payload: %w", env.T, err)
	}
	return out, nil
}
