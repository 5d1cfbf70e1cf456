package domain

import (
	"fmt"
	"strings"
	"time"
)

const RoomIDLength = 6

// Status is stored server side; clients no longer infer it from timers.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusPreparing  Status = "preparing"
	StatusInProgress Status = "in_progress"
	StatusEnded      Status = "ended"
)

var statusRank = map[Status]int{
	StatusWaiting:    0,
	StatusPreparing:  1,
	StatusInProgress: 2,
	StatusEnded:      3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Before reports whether s comes earlier in the room lifecycle than other.
// Unknown statuses are never before anything.
func (s Status) Before(other Status) bool {
	a, ok := statusRank[s]
	if !ok {
		return false
	}
	b, ok := statusRank[other]
	return ok && a < b
}

type Room struct {
	ID              string        `json:"id"`
	MaxParticipants int           `json:"maxParticipants"`
	TopicType       string        `json:"topicType"`
	Topic           string        `json:"topic"`
	Duration        int           `json:"duration"`
	Status          Status        `json:"status"`
	Participants    []Participant `json:"participants"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// NormalizeRoomID upper-cases ids on every access path.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Participants = append([]Participant(nil), r.Participants...)
	if cp.Participants == nil {
		cp.Participants = []Participant{}
	}
	return &cp
}

func (r *Room) IsFull() bool {
	return len(r.Participants) >= r.MaxParticipants
}

func (r *Room) Validate() error {
	if r.MaxParticipants <= 0 {
		return fmt.Errorf("%w: maxParticipants must be positive", ErrInvalidInput)
	}
	if len(r.Participants) > r.MaxParticipants {
		return fmt.Errorf("%w: %d participants exceed maxParticipants %d",
			ErrInvalidInput, len(r.Participants), r.MaxParticipants)
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, r.Status)
	}
	seen := make(map[ParticipantID]struct{}, len(r.Participants))
	for _, p := range r.Participants {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate participant id %d", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Advance moves the room forward through waiting -> preparing -> in_progress -> ended.
// Skipping ahead is allowed, going back is not.
func (r *Room) Advance(to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	from := r.Status
	if from == "" {
		from = StatusWaiting
	}
	if statusRank[to] <= statusRank[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	r.Status = to
	return nil
}

// NextParticipantID is time based but strictly greater than every id in the room.
func (r *Room) NextParticipantID(now time.Time) ParticipantID {
	id := ParticipantID(now.UnixMilli())
	for _, p := range r.Participants {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

func (r *Room) FindParticipant(id string) (int, bool) {
	id = strings.TrimSpace(id)
	for i, p := range r.Participants {
		if p.ID.String() == id {
			return i, true
		}
	}
	return -1, false
}

func (r *Room) AllReady() bool {
	if len(r.Participants) == 0 {
		return false
	}
	for _, p := range r.Participants {
		if !p.IsReady {
			return false
		}
	}
	return true
}
