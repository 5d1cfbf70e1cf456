package errs

import (
	"errors"
	"net/http"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

var (
	// ErrUpstream marks a failure of an outside collaborator (mail relay,
	// scoring oracle, archive). It is logged and never retried.
	ErrUpstream    = errors.New("upstream error")
	ErrUnavailable = errors.New("service unavailable")
	ErrTooLarge    = errors.New("payload too large")
	ErrUnsupported = errors.New("unsupported media type")
)

func ToHTTP(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, domain.ErrRoomIDExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text shown to the caller. Internal failures get a generic
// text instead of the error chain.
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, domain.ErrParticipantNotFound):
		return "Participant not found"
	case errors.Is(err, domain.ErrRoomFull):
		return "Room is full"
	}
	if status := ToHTTP(err); status >= 500 {
		return http.StatusText(status)
	}
	return err.Error()
}
