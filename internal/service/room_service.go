package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	Join(ctx context.Context, id string, p domain.Participant) (*domain.Participant, *domain.Room, error)
	UpdateParticipant(ctx context.Context, id, participantID string, patch domain.ParticipantPatch) (*domain.Participant, *domain.Room, error)
	Replace(ctx context.Context, id string, snapshot domain.Room) (*domain.Room, error)
	Advance(ctx context.Context, id string, to domain.Status) (*domain.Room, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

// Publisher pushes a room snapshot to every live connection of that room.
type Publisher interface {
	PublishRoom(room *domain.Room)
}

type Limits struct {
	MinParticipants int
	MaxParticipants int
}

type CreateRoomInput struct {
	MaxParticipants int    `json:"maxParticipants" validate:"required"`
	TopicType       string `json:"topicType" validate:"required"`
	Topic           string `json:"topic" validate:"max=200"`
	Duration        int    `json:"duration" validate:"required,gt=0"`
	Name            string `json:"name" validate:"max=64"`
}

// RoomService owns room lifecycle. mu orders "mutate, then publish" so
// snapshots reach connections in the order they were produced.
type RoomService struct {
	mu       sync.Mutex
	repo     RoomRepository
	pub      Publisher
	limits   Limits
	validate *validator.Validate
	now      func() time.Time
}

func NewRoomService(repo RoomRepository, pub Publisher, limits Limits) *RoomService {
	if limits.MinParticipants < 2 {
		limits.MinParticipants = 2
	}
	if limits.MaxParticipants < limits.MinParticipants {
		limits.MaxParticipants = 10
	}
	return &RoomService{
		repo:     repo,
		pub:      pub,
		limits:   limits,
		validate: newValidator(),
		now:      time.Now,
	}
}

// CreateRoom creates a room whose only participant is the admin creator.
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*domain.Room, *domain.Participant, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, validationError(err)
	}
	if in.MaxParticipants < s.limits.MinParticipants {
		return nil, nil, fmt.Errorf("%w: maxParticipants must be at least %d", domain.ErrInvalidInput, s.limits.MinParticipants)
	}
	if in.MaxParticipants > s.limits.MaxParticipants {
		return nil, nil, fmt.Errorf("%w: maxParticipants must be at most %d", domain.ErrInvalidInput, s.limits.MaxParticipants)
	}
	tt, ok := domain.LookupTopicType(in.TopicType)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown topicType %q", domain.ErrInvalidInput, in.TopicType)
	}

	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		topic = tt.Topics[rand.IntN(len(tt.Topics))]
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Room Creator"
	}

	now := s.now()
	room := &domain.Room{
		MaxParticipants: in.MaxParticipants,
		TopicType:       tt.Key,
		Topic:           topic,
		Duration:        in.Duration,
		Status:          domain.StatusWaiting,
		CreatedAt:       now,
	}
	creator := domain.Participant{
		ID:       room.NextParticipantID(now),
		Name:     name,
		IsLocal:  true,
		IsAdmin:  true,
		JoinedAt: now,
	}
	room.Participants = []domain.Participant{creator}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	slog.Info("room created", "room", room.ID, "topic_type", room.TopicType, "max", room.MaxParticipants)
	s.pub.PublishRoom(room)

	return room.Clone(), &creator, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.repo.Get(ctx, id)
}

// ListRooms returns live rooms newest first with cursor pagination.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.repo.List(ctx, limit, cursor)
}

// Sync hands the current room to deliver under the ordering lock, so a
// connection that subscribed first never receives a snapshot older than one
// already queued for it.
func (s *RoomService) Sync(ctx context.Context, id string, deliver func(room *domain.Room)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	deliver(room)
	return nil
}

// ApplySnapshot persists a client-authored room_state and hands the stored
// version to relay while the ordering lock is held.
func (s *RoomService) ApplySnapshot(ctx context.Context, id string, snapshot domain.Room, relay func(stored *domain.Room)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.repo.Replace(ctx, id, snapshot)
	if err != nil {
		return err
	}
	relay(stored)
	return nil
}

// AdvanceStatus runs relay (the triggering frame) and then publishes the new
// snapshot. A rejected transition still relays the frame.
func (s *RoomService) AdvanceStatus(ctx context.Context, id string, to domain.Status, relay func()) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.repo.Advance(ctx, id, to)
	relay()
	if err != nil {
		return nil, err
	}
	slog.Info("room status changed", "room", room.ID, "status", room.Status)
	s.pub.PublishRoom(room)
	return room, nil
}

// Teardown removes a room whose last connection closed. It is called from the
// hub while the hub lock is held, so it must not take s.mu.
func (s *RoomService) Teardown(ctx context.Context, id string) {
	if err := s.repo.Delete(ctx, id); err != nil {
		slog.Warn("room teardown failed", "room", id, "err", err)
		return
	}
	slog.Info("room torn down", "room", domain.NormalizeRoomID(id), "live_rooms", s.repo.Len())
}

// LiveRooms is the number of rooms currently held in memory.
func (s *RoomService) LiveRooms() int {
	return s.repo.Len()
}
