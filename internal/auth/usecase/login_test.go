package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/goerror"
	"github.com/hartonodwi/authgate/internal/pkg/hash"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	seedUser := func(f *fixture, username, password string) {
		hashed, err := hash.NewBcrypt(4, "").Hash(password)
		require.NoError(t, err)
		f.db.users[username] = &entity.User{
			ID:       42,
			Username: username,
			Email:    username + "@example.com",
			Password: string(hashed),
		}
	}

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		seedUser(f, "alice", "secret123")

		out, err := f.uc.Login(ctx, LoginInput{Username: "alice", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, int64(42), out.ID)
		assert.Equal(t, "alice", out.Username)
		assert.Equal(t, "alice@example.com", out.Email)
	})

	t.Run("CaseInsensitiveUsername", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		seedUser(f, "alice", "secret123")

		out, err := f.uc.Login(ctx, LoginInput{Username: "ALICE", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "alice", out.Username, "stored casing is returned")
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		_, err := f.uc.Login(ctx, LoginInput{Username: "ghost", Password: "secret123"})

		requireBusinessError(t, err, "Invalid credentials", goerror.CodeUnauthorized)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)
		seedUser(f, "alice", "secret123")

		_, err := f.uc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})

		requireBusinessError(t, err, "Invalid credentials", goerror.CodeUnauthorized)
	})

	t.Run("MissingFields", func(t *testing.T) {
		f := newFixture(t, testConfigYAML)

		_, err := f.uc.Login(ctx, LoginInput{Username: "alice"})
		requireBusinessError(t, err, "Username and password required", goerror.CodeInvalidFormat)

		_, err = f.uc.Login(ctx, LoginInput{Password: "secret123"})
		requireBusinessError(t, err, "Username and password required", goerror.CodeInvalidFormat)
	})
}
