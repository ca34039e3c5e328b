package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeeting_FeedbackOpen(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := &Meeting{FeedbackDeadline: &deadline}

	assert.True(t, m.FeedbackOpen(deadline.Add(-time.Second)))
	assert.True(t, m.FeedbackOpen(deadline), "deadline is inclusive")
	assert.False(t, m.FeedbackOpen(deadline.Add(time.Millisecond)))

	open := &Meeting{}
	assert.True(t, open.FeedbackOpen(deadline.Add(24*time.Hour)))
}

func TestMeeting_CanOwnerModifyFeedback(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := &Meeting{FeedbackDeadline: &deadline}

	assert.True(t, m.CanOwnerModifyFeedback(deadline, false))
	assert.False(t, m.CanOwnerModifyFeedback(deadline.Add(time.Millisecond), false))
	assert.True(t, m.CanOwnerModifyFeedback(deadline.Add(time.Hour), true))
}

func TestMeeting_StartsAtAndDefaultDeadline(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	m := &Meeting{Date: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), Time: "14:30"}
	start := m.StartsAt(paris)

	assert.True(t, time.Date(2025, 6, 20, 14, 30, 0, 0, paris).Equal(start))
	assert.True(t, time.Date(2025, 6, 18, 14, 30, 0, 0, paris).Equal(DefaultFeedbackDeadline(start)))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"9:05", "24:00", "12:60", "noon", ""} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestMeeting_Deletable(t *testing.T) {
	cases := []struct {
		status    MeetingStatus
		hasMinute bool
		want      bool
	}{
		{MeetingStatusPlanned, false, true},
		{MeetingStatusConvocationSent, false, true},
		{MeetingStatusPlanned, true, false},
		{MeetingStatusInProgress, false, false},
		{MeetingStatusCompleted, false, false},
		{MeetingStatusCancelled, false, false},
	}
	for _, tc := range cases {
		m := &Meeting{Status: tc.status}
		assert.Equal(t, tc.want, m.Deletable(tc.hasMinute), "%s minute=%v", tc.status, tc.hasMinute)
	}
}
