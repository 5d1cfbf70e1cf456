package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/memstore"
	"github.com/arunjadaun2002/FlyPrep/internal/service"
	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
	"github.com/arunjadaun2002/FlyPrep/pkg/httputil"
)

type Handler struct {
	roomSvc   *service.RoomService
	memberSvc *service.MemberService
}

func NewHandler(room *service.RoomService, member *service.MemberService) *Handler {
	return &Handler{
		roomSvc:   room,
		memberSvc: member,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}

func writeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, memstore.ErrInvalidCursor) {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid_cursor")
		return
	}
	status := errs.ToHTTP(err)
	if status >= 500 {
		slog.Error(op, slog.Any("err", err))
	}
	httputil.Error(r.Context(), w, status, errs.Message(err))
}

// POST /api/rooms/create
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRoomInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	room, creator, err := h.roomSvc.CreateRoom(r.Context(), in)
	if err != nil {
		writeErr(w, r, "handler.CreateRoom", err)
		return
	}

	httputil.JSON(w, http.StatusCreated, CreateRoomResponse{
		RoomID:      room.ID,
		Participant: *creator,
		Room:        room,
	})
}

// GET /api/rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.roomSvc.ListRooms(r.Context(), limit, cursor)
	if err != nil {
		writeErr(w, r, "handler.ListRooms", err)
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}

	httputil.JSON(w, http.StatusOK, RoomsListResponse{Items: rooms, NextCursor: next})
}

// GET /api/rooms/{roomId}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		writeErr(w, r, "handler.GetRoom", err)
		return
	}

	httputil.JSON(w, http.StatusOK, room)
}

// POST /api/rooms/join/{roomId}
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var in service.JoinRoomInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	p, room, err := h.memberSvc.JoinRoom(r.Context(), chi.URLParam(r, "roomId"), in)
	if err != nil {
		writeErr(w, r, "handler.JoinRoom", err)
		return
	}

	httputil.JSON(w, http.StatusOK, JoinRoomResponse{Participant: *p, Room: room})
}

// PUT /api/rooms/participant/{roomId}/{participantId}
func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req UpdateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}
	if req.readOnlyOnly() {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "id, isAdmin and joinedAt cannot be updated")
		return
	}

	upd, err := h.memberSvc.UpdateParticipant(r.Context(),
		chi.URLParam(r, "roomId"), chi.URLParam(r, "participantId"), req.ParticipantPatch)
	if err != nil {
		writeErr(w, r, "handler.UpdateParticipant", err)
		return
	}

	httputil.JSON(w, http.StatusOK, UpdateParticipantResponse{
		Success:     true,
		Participant: *upd.Participant,
		Room:        upd.Room,
		AllReady:    upd.AllReady,
	})
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Rooms: h.roomSvc.LiveRooms()})
}

// GET /api/topics
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, TopicsResponse{
		TopicTypes:          domain.TopicCatalog(),
		Durations:           append([]int(nil), domain.DiscussionDurations...),
		PrepDurationSeconds: int(domain.PrepDuration.Seconds()),
	})
}
