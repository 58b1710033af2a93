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

func TestOtpVerify(t *testing.T) {
	ctx := context.Background()

	pendingChallenge := func(f *fixture, identifier string, expiresAt time.Time) {
		codeHash, err := hash.NewHMACSHA256("test-secret").Hash("123456")
		require.NoError(t, err)
		f.db.challenges[identifier] = entity.Challenge{
			Identifier: identifier,
			CodeHash:   string(codeHash),
			Status:     entity.ChallengeStatusPending,
			ExpiresAt:  expiresAt,
		}
	}

	t.Run("CorrectCodeMarksVerified", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		pendingChallenge(f, "alice@example.com", f.now.Add(5*time.Minute))

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "123456"})

		require.NoError(t, err)
		assert.Equal(t, entity.ChallengeStatusVerified, f.db.challenges["alice@example.com"].Status)
	})

	t.Run("VerifyDoesNotConsume", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		pendingChallenge(f, "alice@example.com", f.now.Add(5*time.Minute))

		require.NoError(t, f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "123456"}))
		require.NoError(t, f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "123456"}))

		assert.Equal(t, entity.ChallengeStatusVerified, f.db.challenges["alice@example.com"].Status)
	})

	t.Run("NoChallenge", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "123456"})

		requireBusinessError(t, err, "No OTP found. Please request a new one", goerror.CodeInvalidInput)
	})

	t.Run("ExpiredChallengeDeleted", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		pendingChallenge(f, "alice@example.com", f.now.Add(-time.Minute))

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "123456"})

		requireBusinessError(t, err, "OTP expired. Please request a new one", goerror.CodeInvalidInput)
		_, ok := f.db.challenges["alice@example.com"]
		assert.False(t, ok, "expired challenge should be deleted on sight")
	})

	t.Run("WrongCode", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		pendingChallenge(f, "alice@example.com", f.now.Add(5*time.Minute))

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "654321"})

		requireBusinessError(t, err, "Invalid OTP", goerror.CodeInvalidInput)
		assert.Equal(t, entity.ChallengeStatusPending, f.db.challenges["alice@example.com"].Status)
	})

	t.Run("MissingOTP", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com"})

		requireBusinessError(t, err, "OTP required", goerror.CodeInvalidFormat)
	})

	t.Run("MissingIdentifier", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{OTP: "123456"})

		requireBusinessError(t, err, "Email or phone required", goerror.CodeInvalidFormat)
	})

	t.Run("NonNumericCode", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		err := f.uc.OtpVerify(ctx, OtpVerifyInput{Email: "alice@example.com", OTP: "12345a"})

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())
	})
}
