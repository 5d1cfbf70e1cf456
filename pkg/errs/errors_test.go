package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

func TestToHTTP(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrRoomNotFound, http.StatusNotFound},
		{fmt.Errorf("repo: %w", domain.ErrParticipantNotFound), http.StatusNotFound},
		{domain.ErrRoomFull, http.StatusConflict},
		{fmt.Errorf("%w: duration", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("smtp: %w", ErrUpstream), http.StatusBadGateway},
		{ErrTooLarge, http.StatusRequestEntityTooLarge},
		{ErrUnsupported, http.StatusUnsupportedMediaType},
		{domain.ErrRoomIDExhausted, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToHTTP(tc.err), tc.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Room not found", Message(fmt.Errorf("get: %w", domain.ErrRoomNotFound)))
	assert.Equal(t, "Room is full", Message(domain.ErrRoomFull))
	assert.Equal(t, "invalid input: duration is required",
		Message(fmt.Errorf("%w: duration is required", domain.ErrInvalidInput)))
	assert.Equal(t, "Internal Server Error", Message(errors.New("dial tcp: secret host")))
}
