package memstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

func seqIDs(ids ...string) IDGenerator {
	i := 0
	return func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func newRoom(max int) *domain.Room {
	return &domain.Room{
		MaxParticipants: max,
		TopicType:       "hr",
		Topic:           "Remote Work Culture",
		Duration:        300,
		Participants:    []domain.Participant{{ID: 1, Name: "Alice", IsAdmin: true}},
	}
}

func TestRandomID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 50; i++ {
		id, err := RandomID()
		require.NoError(t, err)
		assert.Regexp(t, re, id)
	}
}

func TestRoomRepository_CreateAndGet_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("ab12cd")))

	room := newRoom(4)
	require.NoError(t, repo.Create(ctx, room))
	assert.Equal(t, "AB12CD", room.ID)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	assert.False(t, room.CreatedAt.IsZero())

	lower, err := repo.Get(ctx, "ab12cd")
	require.NoError(t, err)
	upper, err := repo.Get(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, upper, lower)

	_, err = repo.Get(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_Create_RegeneratesOnCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("AAAAAA", "AAAAAA", "BBBBBB")))

	first := newRoom(2)
	require.NoError(t, repo.Create(ctx, first))
	second := newRoom(2)
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, "AAAAAA", first.ID)
	assert.Equal(t, "BBBBBB", second.ID)
}

func TestRoomRepository_Create_GivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("AAAAAA")), WithIDRetries(3))

	require.NoError(t, repo.Create(ctx, newRoom(2)))
	err := repo.Create(ctx, newRoom(2))
	assert.ErrorIs(t, err, domain.ErrRoomIDExhausted)
	assert.Equal(t, 1, repo.Len())
}

func TestRoomRepository_Create_GeneratorError(t *testing.T) {
	boom := errors.New("entropy")
	repo := NewRoomRepository(WithIDGenerator(func() (string, error) { return "", boom }))

	assert.ErrorIs(t, repo.Create(context.Background(), newRoom(2)), boom)
}

func TestRoomRepository_Join_RespectsCapacity(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	repo := NewRoomRepository(WithIDGenerator(seqIDs("CAP002")), WithClock(func() time.Time { return now }))

	room := newRoom(2)
	require.NoError(t, repo.Create(ctx, room))

	p, updated, err := repo.Join(ctx, "cap002", domain.Participant{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantID(now.UnixMilli()), p.ID)
	assert.False(t, p.IsAdmin)
	assert.Len(t, updated.Participants, 2)

	before, _ := repo.Get(ctx, "CAP002")
	_, _, err = repo.Join(ctx, "CAP002", domain.Participant{Name: "Carol"})
	assert.ErrorIs(t, err, domain.ErrRoomFull)

	after, _ := repo.Get(ctx, "CAP002")
	assert.Equal(t, before, after, "a rejected join must not mutate the room")

	_, _, err = repo.Join(ctx, "NOPE00", domain.Participant{Name: "Dan"})
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_UpdateParticipant(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("UPD001")))
	require.NoError(t, repo.Create(ctx, newRoom(3)))

	ready := true
	p, room, err := repo.UpdateParticipant(ctx, "upd001", "1", domain.ParticipantPatch{IsReady: &ready})
	require.NoError(t, err)
	assert.True(t, p.IsReady)
	assert.True(t, room.Participants[0].IsReady)
	assert.True(t, room.Participants[0].IsAdmin)

	_, _, err = repo.UpdateParticipant(ctx, "UPD001", "999", domain.ParticipantPatch{})
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)

	_, _, err = repo.UpdateParticipant(ctx, "NOPE00", "1", domain.ParticipantPatch{})
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("SNAP01")))
	orig := newRoom(3)
	require.NoError(t, repo.Create(ctx, orig))

	snapshot := domain.Room{
		ID:              "ignored",
		MaxParticipants: 3,
		TopicType:       "technical",
		Topic:           "Blockchain Applications",
		Duration:        600,
		Participants: []domain.Participant{
			{ID: 1, Name: "Alice", IsAdmin: true, IsReady: true},
			{ID: 2, Name: "Bob", HasStream: true},
		},
	}
	stored, err := repo.Replace(ctx, "snap01", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "SNAP01", stored.ID)
	assert.Equal(t, domain.StatusWaiting, stored.Status, "empty status keeps the stored one")
	assert.Equal(t, orig.CreatedAt, stored.CreatedAt)

	got, err := repo.Get(ctx, "SNAP01")
	require.NoError(t, err)
	assert.Equal(t, snapshot.Topic, got.Topic)
	assert.Equal(t, snapshot.Duration, got.Duration)
	assert.Equal(t, snapshot.Participants, got.Participants)

	over := snapshot
	over.MaxParticipants = 1
	_, err = repo.Replace(ctx, "SNAP01", over)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repo.Replace(ctx, "NOPE00", snapshot)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_Replace_StatusNeverMovesBack(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("BACK01")))
	require.NoError(t, repo.Create(ctx, newRoom(3)))
	_, err := repo.Advance(ctx, "BACK01", domain.StatusEnded)
	require.NoError(t, err)

	stale := *newRoom(3)
	stale.Status = domain.StatusWaiting
	stale.Topic = "Gig Economy"

	stored, err := repo.Replace(ctx, "BACK01", stale)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, stored.Status)
	assert.Equal(t, "Gig Economy", stored.Topic, "the rest of the snapshot still applies")

	got, err := repo.Get(ctx, "BACK01")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, got.Status)

	// forward moves through a snapshot are accepted
	repo = NewRoomRepository(WithIDGenerator(seqIDs("FWD001")))
	require.NoError(t, repo.Create(ctx, newRoom(3)))
	ahead := *newRoom(3)
	ahead.Status = domain.StatusInProgress
	stored, err = repo.Replace(ctx, "FWD001", ahead)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
}

func TestRoomRepository_Advance(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("ADV001")))
	require.NoError(t, repo.Create(ctx, newRoom(2)))

	room, err := repo.Advance(ctx, "ADV001", domain.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, room.Status)

	_, err = repo.Advance(ctx, "ADV001", domain.StatusWaiting)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRoomRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("COPY01")))
	require.NoError(t, repo.Create(ctx, newRoom(2)))

	got, _ := repo.Get(ctx, "COPY01")
	got.Participants[0].Name = "Mallory"

	again, _ := repo.Get(ctx, "COPY01")
	assert.Equal(t, "Alice", again.Participants[0].Name)
}

func TestRoomRepository_DeleteAndClose(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(WithIDGenerator(seqIDs("DEL001", "DEL002")))
	require.NoError(t, repo.Create(ctx, newRoom(2)))

	require.NoError(t, repo.Delete(ctx, "del001"))
	_, err := repo.Get(ctx, "DEL001")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	repo.Close()
	assert.Error(t, repo.Create(ctx, newRoom(2)))
	assert.NoError(t, repo.Delete(ctx, "DEL002"))
}

func TestRoomRepository_List_Paginates(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewRoomRepository(WithIDGenerator(seqIDs("ROOM01", "ROOM02", "ROOM03")))

	for i := 0; i < 3; i++ {
		room := newRoom(2)
		room.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, room))
	}

	page, next, err := repo.List(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ROOM03", page[0].ID)
	assert.Equal(t, "ROOM02", page[1].ID)
	require.NotEmpty(t, next)

	page, next, err = repo.List(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ROOM01", page[0].ID)
	assert.Empty(t, next)

	_, _, err = repo.List(ctx, 2, "%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
