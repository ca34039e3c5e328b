package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinuteStatus_CanTransitionTo(t *testing.T) {
	legal := map[MinuteStatus]map[MinuteStatus]bool{
		MinuteStatusDraft:            {MinuteStatusDraft: true, MinuteStatusPendingSignature: true},
		MinuteStatusPendingSignature: {MinuteStatusPendingSignature: true, MinuteStatusDraft: true, MinuteStatusSigned: true},
		MinuteStatusSigned:           {MinuteStatusSigned: true, MinuteStatusPublished: true},
		MinuteStatusPublished:        {MinuteStatusPublished: true},
	}

	for _, from := range MinuteStatuses() {
		for _, to := range MinuteStatuses() {
			assert.Equal(t, legal[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestMinuteStatus_UnknownStatus(t *testing.T) {
	unknown := MinuteStatus("ARCHIVED")

	assert.False(t, unknown.Valid())
	assert.False(t, unknown.CanTransitionTo(MinuteStatusDraft))
	assert.False(t, MinuteStatusDraft.CanTransitionTo(unknown))
}

func TestMeetingMinute_Guards(t *testing.T) {
	for _, status := range MinuteStatuses() {
		m := &MeetingMinute{Status: status}
		assert.Equal(t, status == MinuteStatusDraft, m.ContentEditable(), status)
		assert.Equal(t, status != MinuteStatusPublished, m.Deletable(), status)
		assert.Equal(t, status == MinuteStatusPendingSignature, m.Signable(), status)
	}
}

func TestNewSignatureProgress(t *testing.T) {
	assert.False(t, NewSignatureProgress(1, 2).Complete)
	assert.True(t, NewSignatureProgress(2, 2).Complete)
	assert.True(t, NewSignatureProgress(3, 2).Complete)
	assert.False(t, NewSignatureProgress(0, 0).Complete)
}
