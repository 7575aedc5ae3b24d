package models

import (
	"github.com/goccy/go-json"
)

// Stream statuses reported by the luna-streams service.
const (
	StreamStatusActive   = "active"
	StreamStatusPause    = "pause"
	StreamStatusInactive = "inactive"
	StreamStatusError    = "error"
	StreamStatusFailed   = "failed"
)

// Stream is a camera/stream descriptor owned by the upstream streams
// service. It is read-only here and re-serialized verbatim.
type Stream struct {
	StreamID        FlexString      `json:"stream_id"`
	AccountID       string          `json:"account_id,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	Location        *Location       `json:"location,omitempty"`
	Status          string          `json:"status"`
	Version         FlexFloat       `json:"version"`
	CreateTime      string          `json:"create_time,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
	CreatedAtCamel  string          `json:"createdAt,omitempty"`
	UpdateTime      string          `json:"update_time,omitempty"`
	UpdatedTime     string          `json:"updated_time,omitempty"`
	UpdatedAt       string          `json:"updated_at,omitempty"`
	UpdatedAtCamel  string          `json:"updatedAt,omitempty"`
	ModifyTime      string          `json:"modify_time,omitempty"`
	ModifiedAt      string          `json:"modified_at,omitempty"`
	LastEventTime   string          `json:"last_event_time,omitempty"`
	LastEventTimeCC string          `json:"lastEventTime,omitempty"`
	Autorestart     *Autorestart    `json:"autorestart,omitempty"`

	raw json.RawMessage
}

type Autorestart struct {
	Restart         FlexFloat `json:"restart"`
	AttemptCount    FlexFloat `json:"attempt_count"`
	Delay           FlexFloat `json:"delay"`
	CurrentAttempt  FlexFloat `json:"current_attempt"`
	LastAttemptTime string    `json:"last_attempt_time,omitempty"`
	Status          string    `json:"status,omitempty"`
}

// StreamList is the envelope returned by the streams API.
type StreamList struct {
	Streams []Stream `json:"streams"`
}

func (s *Stream) UnmarshalJSON(data []byte) error {
	type alias Stream
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Stream(a)
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s Stream) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	type alias Stream
	return json.Marshal(alias(s))
}
