package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParticipantID encodes as a JSON number but also accepts numeric strings,
// since browser clients send both.
type ParticipantID int64

func (id ParticipantID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id *ParticipantID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("participant id %q: %w", string(b), err)
	}
	*id = ParticipantID(v)
	return nil
}

type Participant struct {
	ID        ParticipantID `json:"id"`
	Name      string        `json:"name"`
	IsLocal   bool          `json:"isLocal"`
	IsAdmin   bool          `json:"isAdmin"`
	IsReady   bool          `json:"isReady"`
	HasStream bool          `json:"hasStream"`
	JoinedAt  time.Time     `json:"joinedAt"`
}

// ParticipantPatch carries merge-patch fields; nil means "leave as is".
// id, isAdmin and joinedAt are not patchable.
type ParticipantPatch struct {
	Name      *string `json:"name,omitempty"`
	IsLocal   *bool   `json:"isLocal,omitempty"`
	IsReady   *bool   `json:"isReady,omitempty"`
	HasStream *bool   `json:"hasStream,omitempty"`
}

func (p ParticipantPatch) Empty() bool {
	return p.Name == nil && p.IsLocal == nil && p.IsReady == nil && p.HasStream == nil
}

func (p *Participant) Apply(patch ParticipantPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.IsLocal != nil {
		p.IsLocal = *patch.IsLocal
	}
	if patch.IsReady != nil {
		p.IsReady = *patch.IsReady
	}
	if patch.HasStream != nil {
		p.HasStream = *patch.HasStream
	}
}
