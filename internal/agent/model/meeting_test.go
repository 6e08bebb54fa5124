package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeeting() MeetingRequest {
	return MeetingRequest{
		Title:           "Planning",
		StartTime:       "2025-07-20T10:30:00+05:30",
		DurationMinutes: 60,
		Attendees:       []string{"a@x.com"},
	}
}

func TestMeetingRequest_Valid(t *testing.T) {
	assert.NoError(t, validMeeting().Validate())
}

func TestMeetingRequest_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MeetingRequest)
	}{
		{"empty title", func(m *MeetingRequest) { m.Title = "  " }},
		{"zero duration", func(m *MeetingRequest) { m.DurationMinutes = 0 }},
		{"negative duration", func(m *MeetingRequest) { m.DurationMinutes = -30 }},
		{"no attendees", func(m *MeetingRequest) { m.Attendees = nil }},
		{"attendee without at-sign", func(m *MeetingRequest) { m.Attendees = []string{"not-an-email"} }},
		{"naive start time", func(m *MeetingRequest) { m.StartTime = "2025-07-20T10:30:00" }},
		{"garbage start time", func(m *MeetingRequest) { m.StartTime = "next tuesday" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMeeting()
			tc.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestMeetingRequest_End(t *testing.T) {
	m := validMeeting()

	start, err := m.Start()
	require.NoError(t, err)
	end, err := m.End()
	require.NoError(t, err)
	assert.Equal(t, start.Add(60*time.Minute), end)
}
