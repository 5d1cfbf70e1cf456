package http

import (
	"encoding/json"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/interview"
)

type CreateRoomResponse struct {
	RoomID      string             `json:"roomId"`
	Participant domain.Participant `json:"participant"`
	Room        *domain.Room       `json:"room"`
}

type JoinRoomResponse struct {
	Participant domain.Participant `json:"participant"`
	Room        *domain.Room       `json:"room"`
}

// UpdateParticipantRequest is a merge patch. id, isAdmin and joinedAt are
// accepted on the wire but never applied.
type UpdateParticipantRequest struct {
	domain.ParticipantPatch

	ID       json.RawMessage `json:"id,omitempty"`
	IsAdmin  json.RawMessage `json:"isAdmin,omitempty"`
	JoinedAt json.RawMessage `json:"joinedAt,omitempty"`
}

func (r UpdateParticipantRequest) readOnlyOnly() bool {
	return r.ParticipantPatch.Empty() && (r.ID != nil || r.IsAdmin != nil || r.JoinedAt != nil)
}

type UpdateParticipantResponse struct {
	Success     bool               `json:"success"`
	Participant domain.Participant `json:"participant"`
	Room        *domain.Room       `json:"room"`
	AllReady    bool               `json:"allReady"`
}

type RoomsListResponse struct {
	Items      []domain.Room `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

type TopicsResponse struct {
	TopicTypes          []domain.TopicType `json:"topicTypes"`
	Durations           []int              `json:"durations"`
	PrepDurationSeconds int                `json:"prepDurationSeconds"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ResumeInfo struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Size int    `json:"size"`
}

type StartInterviewResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Resume    ResumeInfo           `json:"resume"`
	Questions []interview.Question `json:"questions"`
}

type AnalyzeRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SummaryRequest struct {
	Results []interview.Analysis `json:"results"`
}
