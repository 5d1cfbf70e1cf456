package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

const defaultIDRetries = 5

type Option func(*RoomRepository)

func WithIDGenerator(gen IDGenerator) Option {
	return func(r *RoomRepository) { r.newID = gen }
}

func WithIDRetries(n int) Option {
	return func(r *RoomRepository) {
		if n > 0 {
			r.idRetries = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *RoomRepository) { r.now = now }
}

// RoomRepository is the process-wide room registry. Rooms are stored by
// normalized id and handed out as deep copies.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room

	newID     IDGenerator
	idRetries int
	now       func() time.Time
}

func NewRoomRepository(opts ...Option) *RoomRepository {
	r := &RoomRepository{
		rooms:     make(map[string]*domain.Room),
		newID:     RandomID,
		idRetries: defaultIDRetries,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates an id (regenerating on collision) and stores the room.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms == nil {
		return fmt.Errorf("room repository is closed")
	}

	for attempt := 0; attempt < r.idRetries; attempt++ {
		id, err := r.newID()
		if err != nil {
			return fmt.Errorf("generate room id: %w", err)
		}
		id = domain.NormalizeRoomID(id)
		if _, taken := r.rooms[id]; taken {
			continue
		}

		room.ID = id
		if room.CreatedAt.IsZero() {
			room.CreatedAt = r.now()
		}
		if room.Status == "" {
			room.Status = domain.StatusWaiting
		}
		r.rooms[id] = room.Clone()
		return nil
	}
	return domain.ErrRoomIDExhausted
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[domain.NormalizeRoomID(id)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (r *RoomRepository) List(ctx context.Context, limit int, cursorStr string) ([]domain.Room, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	r.mu.RLock()
	all := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if cur.after(room.CreatedAt, room.ID) {
			all = append(all, *room.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if len(all) <= limit {
		return all, "", nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	next, err := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	if err != nil {
		return nil, "", err
	}
	return page, next, nil
}

// Join appends p unless the room is at capacity; a full room is left untouched.
func (r *RoomRepository) Join(ctx context.Context, id string, p domain.Participant) (*domain.Participant, *domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[domain.NormalizeRoomID(id)]
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	if room.IsFull() {
		return nil, nil, domain.ErrRoomFull
	}

	p.ID = room.NextParticipantID(r.now())
	if p.JoinedAt.IsZero() {
		p.JoinedAt = r.now()
	}
	room.Participants = append(room.Participants, p)

	return &p, room.Clone(), nil
}

func (r *RoomRepository) UpdateParticipant(ctx context.Context, id, participantID string, patch domain.ParticipantPatch) (*domain.Participant, *domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[domain.NormalizeRoomID(id)]
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	i, ok := room.FindParticipant(participantID)
	if !ok {
		return nil, nil, domain.ErrParticipantNotFound
	}

	room.Participants[i].Apply(patch)
	p := room.Participants[i]

	return &p, room.Clone(), nil
}

// Replace overwrites the stored room with a client snapshot (last writer wins).
// The id is forced to the addressed room. Status only moves forward: an empty
// or older status in the snapshot keeps the stored one.
func (r *RoomRepository) Replace(ctx context.Context, id string, snapshot domain.Room) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id = domain.NormalizeRoomID(id)
	current, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	next := snapshot.Clone()
	next.ID = id
	if next.Status == "" || next.Status.Before(current.Status) {
		next.Status = current.Status
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = current.CreatedAt
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	r.rooms[id] = next

	return next.Clone(), nil
}

// Advance moves the stored status forward.
func (r *RoomRepository) Advance(ctx context.Context, id string, to domain.Status) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[domain.NormalizeRoomID(id)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if err := room.Advance(to); err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, domain.NormalizeRoomID(id))
	return nil
}

func (r *RoomRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close drops every room; the repository rejects new rooms afterwards.
func (r *RoomRepository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = nil
}
