package service

import (
	"context"
	"strings"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

type JoinRoomInput struct {
	Name    string `json:"name" validate:"max=64"`
	IsLocal bool   `json:"isLocal"`
}

type ParticipantUpdate struct {
	Participant *domain.Participant
	Room        *domain.Room
	AllReady    bool
}

// MemberService handles roster changes. It shares the RoomService ordering
// lock and publisher.
type MemberService struct {
	rooms *RoomService
}

func NewMemberService(rooms *RoomService) *MemberService {
	return &MemberService{rooms: rooms}
}

func (s *MemberService) JoinRoom(ctx context.Context, roomID string, in JoinRoomInput) (*domain.Participant, *domain.Room, error) {
	if err := s.rooms.validate.Struct(in); err != nil {
		return nil, nil, validationError(err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Participant"
	}

	s.rooms.mu.Lock()
	defer s.rooms.mu.Unlock()

	p, room, err := s.rooms.repo.Join(ctx, roomID, domain.Participant{
		Name:     name,
		IsLocal:  in.IsLocal,
		JoinedAt: s.rooms.now(),
	})
	if err != nil {
		return nil, nil, err
	}
	s.rooms.pub.PublishRoom(room)

	return p, room, nil
}

func (s *MemberService) UpdateParticipant(ctx context.Context, roomID, participantID string, patch domain.ParticipantPatch) (*ParticipantUpdate, error) {
	s.rooms.mu.Lock()
	defer s.rooms.mu.Unlock()

	p, room, err := s.rooms.repo.UpdateParticipant(ctx, roomID, participantID, patch)
	if err != nil {
		return nil, err
	}
	s.rooms.pub.PublishRoom(room)

	return &ParticipantUpdate{
		Participant: p,
		Room:        room,
		AllReady:    room.AllReady(),
	}, nil
}
