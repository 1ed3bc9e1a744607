package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// backend DateTime columns are serialized without an offset; they are UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339, or an ISO 8601 value without an offset
// which is read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Timestamp decodes backend timestamps with or without an offset
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (i *Invoice) UnmarshalJSON(b []byte) error {
	type plain Invoice
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	i.CreatedAt = aux.CreatedAt.Time
	return nil
}

func (s *ShiftSession) UnmarshalJSON(b []byte) error {
	type plain ShiftSession
	aux := struct {
		*plain
		OpenedAt Timestamp  `json:"opened_at"`
		ClosedAt *Timestamp `json:"closed_at,omitempty"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.OpenedAt = aux.OpenedAt.Time
	s.ClosedAt = nil
	if aux.ClosedAt != nil && !aux.ClosedAt.IsZero() {
		closed := aux.ClosedAt.Time
		s.ClosedAt = &closed
	}
	return nil
}
