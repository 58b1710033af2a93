package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
)

func TestOtpSend(t *testing.T) {
	ctx := context.Background()

	t.Run("EmailChannel", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		out, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		require.NoError(t, err)
		assert.Equal(t, entity.ChannelEmail, out.Channel)
		assert.Empty(t, out.DevOTP)

		require.Len(t, f.dispatcher.sentEmails, 1)
		assert.Equal(t, "alice@example.com", f.dispatcher.sentEmails[0].To)
		assert.Equal(t, "123456", f.dispatcher.sentEmails[0].Code)

		chal, ok := f.db.challenges["alice@example.com"]
		require.True(t, ok)
		assert.Equal(t, entity.ChallengeStatusPending, chal.Status)
		assert.Equal(t, f.now.Add(10*time.Minute), chal.ExpiresAt)
		assert.True(t, hash.NewHMACSHA256("test-secret").Verify(chal.CodeHash, "123456"))
	})

	t.Run("PhoneChannel", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		out, err := f.uc.OtpSend(ctx, OtpSendInput{Phone: "+15551234567"})

		require.NoError(t, err)
		assert.Equal(t, entity.ChannelPhone, out.Channel)
		require.Len(t, f.dispatcher.sentSMS, 1)
		assert.Equal(t, "+15551234567", f.dispatcher.sentSMS[0].To)
	})

	t.Run("EmailWinsWhenBothPresent", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		out, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com", Phone: "+15551234567"})

		require.NoError(t, err)
		assert.Equal(t, entity.ChannelEmail, out.Channel)
		assert.Empty(t, f.dispatcher.sentSMS)
	})

	t.Run("MissingIdentifier", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		_, err := f.uc.OtpSend(ctx, OtpSendInput{})

		requireBusinessError(t, err, "Email or phone required", goerror.CodeInvalidFormat)
	})

	t.Run("ReissueOverwritesVerifiedChallenge", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		f.verifiedChallenge(t, "alice@example.com", f.now.Add(5*time.Minute))

		_, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		require.NoError(t, err)
		chal := f.db.challenges["alice@example.com"]
		assert.Equal(t, entity.ChallengeStatusPending, chal.Status)
		assert.Equal(t, f.now.Add(10*time.Minute), chal.ExpiresAt)
	})

	t.Run("DispatchFailureKeepsChallenge", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		f.dispatcher.sendErr = assert.AnError

		_, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		requireBusinessError(t, err, "Failed to send OTP", goerror.CodeInternal)
		_, ok := f.db.challenges["alice@example.com"]
		assert.True(t, ok, "challenge should survive a dispatch failure")
	})

	t.Run("NoProviderWithoutEchoFails", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		f.dispatcher.emailReady = false

		_, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		requireBusinessError(t, err, "Failed to send OTP", goerror.CodeInternal)
	})

	t.Run("NoProviderWithEchoReturnsCode", func(t *testing.T) {
		f := newFixture(t, `
modules:
  auth:
    require_otp: true
    otp_ttl_minutes: 10
    otp_dev_echo: true
`)
		f.dispatcher.emailReady = false

		out, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		require.NoError(t, err)
		assert.Equal(t, "123456", out.DevOTP)
		assert.Empty(t, f.dispatcher.sentEmails)
	})

	t.Run("LocksPerIdentifier", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		_, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "alice@example.com"})

		require.NoError(t, err)
		assert.Equal(t, []string{"otp:alice@example.com"}, f.locker.acquired)
	})

	t.Run("InvalidEmailFormat", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		_, err := f.uc.OtpSend(ctx, OtpSendInput{Email: "not-an-email"})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())
	})
}
