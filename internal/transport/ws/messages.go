package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

// Frame types seen on the relay channel. Only room_state and the phase
// frames are interpreted; everything else is passed through as is.
const (
	TypeRoomState             = "room_state"
	TypeParticipantJoined     = "participant_joined"
	TypeParticipantLeft       = "participant_left"
	TypeParticipantUpdated    = "participant_updated"
	TypeChatMessage           = "chat_message"
	TypePrepTimerUpdate       = "prep_timer_update"
	TypeDiscussionTimerUpdate = "discussion_timer_update"
	TypeStartDiscussion       = "start_discussion"
	TypeDiscussionStart       = "discussion_start"
	TypeDiscussionEnd         = "discussion_end"
	TypeError                 = "error"
)

const (
	errRoomNotFound     = "Room not found"
	errInvalidRoomState = "Invalid room state"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrSlowConsumer   = errors.New("connection send queue is full")
	ErrConnClosed     = errors.New("connection closed")
	ErrHubClosed      = errors.New("hub closed")
)

// phaseTransitions maps the timer control frames to the status they move the room to.
var phaseTransitions = map[string]domain.Status{
	TypeStartDiscussion: domain.StatusPreparing,
	TypeDiscussionStart: domain.StatusInProgress,
	TypeDiscussionEnd:   domain.StatusEnded,
}

// Message is the outbound wire form.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type wireFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Frame is one decoded inbound frame: *RoomStateFrame, *PhaseFrame or *PassthroughFrame.
type Frame interface {
	FrameType() string
}

// RoomStateFrame carries a full client-authored snapshot.
type RoomStateFrame struct {
	Payload json.RawMessage
}

func (f *RoomStateFrame) FrameType() string { return TypeRoomState }

// Room decodes the snapshot. A payload that does not describe a valid room is
// reported as domain.ErrInvalidInput.
func (f *RoomStateFrame) Room() (domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal(f.Payload, &room); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := room.Validate(); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// PhaseFrame is a timer control frame that also advances the room status.
type PhaseFrame struct {
	Type    string
	Status  domain.Status
	Payload json.RawMessage
}

func (f *PhaseFrame) FrameType() string { return f.Type }

// PassthroughFrame is relayed to peers without interpretation.
type PassthroughFrame struct {
	Type    string
	Payload json.RawMessage
}

func (f *PassthroughFrame) FrameType() string { return f.Type }

// DecodeFrame parses a raw relay frame. Non-JSON input and frames without a
// type are ErrMalformedFrame; room_state also needs a payload.
func DecodeFrame(data []byte) (Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if w.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	payload := normalizePayload(w.Payload)

	if w.Type == TypeRoomState {
		if payload == nil {
			return nil, fmt.Errorf("%w: room_state without payload", ErrMalformedFrame)
		}
		return &RoomStateFrame{Payload: payload}, nil
	}
	if status, ok := phaseTransitions[w.Type]; ok {
		return &PhaseFrame{Type: w.Type, Status: status, Payload: payload}, nil
	}
	return &PassthroughFrame{Type: w.Type, Payload: payload}, nil
}

func normalizePayload(p json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(p)) == 0 || bytes.Equal(bytes.TrimSpace(p), []byte("null")) {
		return nil
	}
	return p
}

// relayMessage re-encodes an inbound frame for peers, keeping the payload bytes.
func relayMessage(typ string, payload json.RawMessage) Message {
	if payload == nil {
		return Message{Type: typ}
	}
	return Message{Type: typ, Payload: payload}
}

func errorMessage(text string) Message {
	return Message{Type: TypeError, Payload: text}
}
