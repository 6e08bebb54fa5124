package model

import (
	"fmt"
	"strings"
	"time"
)

// MeetingRequest is the validated payload for the book-meeting action.
// It is not persisted; its outcome is recorded as a ChatTurn.
type MeetingRequest struct {
	Title           string   `json:"title"`
	StartTime       string   `json:"start_time"` // ISO-8601 with UTC offset
	DurationMinutes int      `json:"duration_minutes"`
	Attendees       []string `json:"attendees"`
}

// Validate checks the format invariants before any external call is made.
// Naive timestamps (no UTC offset) are rejected here, never sent upstream.
func (m MeetingRequest) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title must be a non-empty string")
	}
	if m.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be a positive integer, got %d", m.DurationMinutes)
	}
	if len(m.Attendees) == 0 {
		return fmt.Errorf("attendees must contain at least one email address")
	}
	for _, a := range m.Attendees {
		if !strings.Contains(a, "@") {
			return fmt.Errorf("attendee %q does not look like an email address", a)
		}
	}
	if _, err := m.Start(); err != nil {
		return err
	}
	return nil
}

// Start parses StartTime, requiring an explicit UTC offset.
func (m MeetingRequest) Start() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, m.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_time must be ISO-8601 with a UTC offset: %w", err)
	}
	return t, nil
}

// End computes start + duration.
func (m MeetingRequest) End() (time.Time, error) {
	start, err := m.Start()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(m.DurationMinutes) * time.Minute), nil
}
