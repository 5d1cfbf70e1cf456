package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/memstore"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRoom(room *domain.Room) {
	m.Called(room)
}

func newServices(t *testing.T) (*RoomService, *MemberService, *mockPublisher, *memstore.RoomRepository) {
	t.Helper()
	repo := memstore.NewRoomRepository()
	pub := new(mockPublisher)
	pub.On("PublishRoom", mock.Anything).Return()
	rooms := NewRoomService(repo, pub, Limits{MinParticipants: 2, MaxParticipants: 10})
	return rooms, NewMemberService(rooms), pub, repo
}

func validInput() CreateRoomInput {
	return CreateRoomInput{
		MaxParticipants: 4,
		TopicType:       "technical",
		Topic:           "AI in hiring",
		Duration:        600,
		Name:            "Asha",
	}
}

func TestCreateRoom_Success(t *testing.T) {
	rooms, _, pub, _ := newServices(t)

	room, creator, err := rooms.CreateRoom(context.Background(), validInput())
	require.NoError(t, err)

	assert.Len(t, room.ID, domain.RoomIDLength)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	assert.Equal(t, "technical", room.TopicType)
	assert.Equal(t, "AI in hiring", room.Topic)
	require.Len(t, room.Participants, 1)
	assert.True(t, creator.IsAdmin)
	assert.False(t, creator.IsReady)
	assert.Equal(t, "Asha", creator.Name)
	assert.Equal(t, creator.ID, room.Participants[0].ID)

	pub.AssertNumberOfCalls(t, "PublishRoom", 1)
}

func TestCreateRoom_Defaults(t *testing.T) {
	rooms, _, _, _ := newServices(t)

	in := validInput()
	in.Topic = ""
	in.Name = "  "
	room, creator, err := rooms.CreateRoom(context.Background(), in)
	require.NoError(t, err)

	tt, _ := domain.LookupTopicType("technical")
	assert.Contains(t, tt.Topics, room.Topic)
	assert.Equal(t, "Room Creator", creator.Name)
}

func TestCreateRoom_Invalid(t *testing.T) {
	rooms, _, pub, repo := newServices(t)

	cases := map[string]func(*CreateRoomInput){
		"too few":       func(in *CreateRoomInput) { in.MaxParticipants = 1 },
		"too many":      func(in *CreateRoomInput) { in.MaxParticipants = 11 },
		"no duration":   func(in *CreateRoomInput) { in.Duration = 0 },
		"neg duration":  func(in *CreateRoomInput) { in.Duration = -5 },
		"no topic type": func(in *CreateRoomInput) { in.TopicType = "" },
		"unknown type":  func(in *CreateRoomInput) { in.TopicType = "astrology" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, _, err := rooms.CreateRoom(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Zero(t, repo.Len())
	pub.AssertNotCalled(t, "PublishRoom", mock.Anything)
}

func TestCreateRoom_ValidationMessageUsesJSONNames(t *testing.T) {
	rooms, _, _, _ := newServices(t)

	in := validInput()
	in.Duration = 0
	_, _, err := rooms.CreateRoom(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration is required")
}

func TestJoinRoom(t *testing.T) {
	rooms, members, pub, _ := newServices(t)
	ctx := context.Background()

	in := validInput()
	in.MaxParticipants = 2
	room, creator, err := rooms.CreateRoom(ctx, in)
	require.NoError(t, err)

	p, after, err := members.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Ravi"})
	require.NoError(t, err)
	assert.Greater(t, p.ID, creator.ID)
	assert.False(t, p.IsAdmin)
	assert.Len(t, after.Participants, 2)

	_, _, err = members.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Late"})
	require.ErrorIs(t, err, domain.ErrRoomFull)

	got, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 2)

	pub.AssertNumberOfCalls(t, "PublishRoom", 2)
}

func TestJoinRoom_NotFound(t *testing.T) {
	_, members, _, _ := newServices(t)

	_, _, err := members.JoinRoom(context.Background(), "ZZZZZZ", JoinRoomInput{Name: "x"})
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestUpdateParticipant_AllReady(t *testing.T) {
	rooms, members, _, _ := newServices(t)
	ctx := context.Background()

	room, creator, err := rooms.CreateRoom(ctx, validInput())
	require.NoError(t, err)
	guest, _, err := members.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Ravi"})
	require.NoError(t, err)

	ready := true
	upd, err := members.UpdateParticipant(ctx, room.ID, creator.ID.String(), domain.ParticipantPatch{IsReady: &ready})
	require.NoError(t, err)
	assert.True(t, upd.Participant.IsReady)
	assert.False(t, upd.AllReady)

	upd, err = members.UpdateParticipant(ctx, room.ID, guest.ID.String(), domain.ParticipantPatch{IsReady: &ready})
	require.NoError(t, err)
	assert.True(t, upd.AllReady)

	_, err = members.UpdateParticipant(ctx, room.ID, "42", domain.ParticipantPatch{IsReady: &ready})
	require.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestApplySnapshot(t *testing.T) {
	rooms, _, _, _ := newServices(t)
	ctx := context.Background()

	room, _, err := rooms.CreateRoom(ctx, validInput())
	require.NoError(t, err)

	snap := *room.Clone()
	snap.Topic = "Remote work"
	var relayed *domain.Room
	err = rooms.ApplySnapshot(ctx, room.ID, snap, func(stored *domain.Room) { relayed = stored })
	require.NoError(t, err)
	require.NotNil(t, relayed)
	assert.Equal(t, "Remote work", relayed.Topic)

	got, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Remote work", got.Topic)

	bad := *room.Clone()
	bad.MaxParticipants = 0
	called := false
	err = rooms.ApplySnapshot(ctx, room.ID, bad, func(*domain.Room) { called = true })
	require.Error(t, err)
	assert.False(t, called)
}

func TestAdvanceStatus(t *testing.T) {
	rooms, _, pub, _ := newServices(t)
	ctx := context.Background()

	room, _, err := rooms.CreateRoom(ctx, validInput())
	require.NoError(t, err)

	relays := 0
	relay := func() { relays++ }

	got, err := rooms.AdvanceStatus(ctx, room.ID, domain.StatusPreparing, relay)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	_, err = rooms.AdvanceStatus(ctx, room.ID, domain.StatusWaiting, relay)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, 2, relays)
	pub.AssertNumberOfCalls(t, "PublishRoom", 2)
}

func TestTeardown(t *testing.T) {
	rooms, _, _, repo := newServices(t)
	ctx := context.Background()

	room, _, err := rooms.CreateRoom(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, rooms.LiveRooms())

	rooms.Teardown(ctx, room.ID)
	_, err = rooms.GetRoom(ctx, room.ID)
	assert.True(t, errors.Is(err, domain.ErrRoomNotFound))
	assert.Zero(t, repo.Len())
	assert.Zero(t, rooms.LiveRooms())
}

func TestListRooms_ClampsLimit(t *testing.T) {
	rooms, _, _, _ := newServices(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := rooms.CreateRoom(ctx, validInput())
		require.NoError(t, err)
	}
	list, _, err := rooms.ListRooms(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSync(t *testing.T) {
	rooms, _, _, _ := newServices(t)
	ctx := context.Background()

	room, _, err := rooms.CreateRoom(ctx, validInput())
	require.NoError(t, err)

	var got *domain.Room
	require.NoError(t, rooms.Sync(ctx, strings.ToLower(room.ID), func(r *domain.Room) { got = r }))
	require.NotNil(t, got)
	assert.Equal(t, room.ID, got.ID)

	err = rooms.Sync(ctx, "NOPE00", func(*domain.Room) { t.Fatal("deliver called for missing room") })
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}
