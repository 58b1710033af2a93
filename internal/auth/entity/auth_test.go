package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChallengeExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chal := Challenge{ExpiresAt: now}

	assert.False(t, chal.Expired(now.Add(-time.Second)))
	assert.False(t, chal.Expired(now), "expiry instant itself is still valid")
	assert.True(t, chal.Expired(now.Add(time.Second)))
}

func TestChallengeStatusString(t *testing.T) {
	assert.Equal(t, "Pending", ChallengeStatusPending.String())
	assert.Equal(t, "Verified", ChallengeStatusVerified.String())
	assert.Equal(t, "Unknown", ChallengeStatusUnknown.String())
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "email", ChannelEmail.String())
	assert.Equal(t, "phone", ChannelPhone.String())
	assert.Equal(t, "unknown", ChannelUnknown.String())
}
