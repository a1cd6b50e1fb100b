package service

import (
	"context"
	"testing"
	"time"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	codec := token.NewCodec("authn-test-secret")

	user := &entity.User{Id: uuid.New(), Email: "alice@example.com", EmailVerified: true}
	s := newFakeStore()
	s.addUser(user)
	authn := NewAuthenticator(codec, newFakeFactory(s))

	sign := func(t *testing.T, sub string) string {
		t.Helper()
		tokenStr, err := codec.Sign(jwt.MapClaims{
			"sub": sub,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)
		return tokenStr
	}

	t.Run("resolves a uuid subject", func(t *testing.T) {
		got, err := authn.Authenticate(ctx, "Bearer "+sign(t, user.Id.String()))
		require.NoError(t, err)
		assert.Equal(t, user.Id, got.Id)
	})

	t.Run("resolves an email subject case-insensitively", func(t *testing.T) {
		got, err := authn.Authenticate(ctx, "Bearer "+sign(t, "ALICE@example.com"))
		require.NoError(t, err)
		assert.Equal(t, user.Id, got.Id)
	})

	t.Run("missing or malformed header", func(t *testing.T) {
		for _, header := range []string{
			"",
			"Bearer ",
			"Bearer",
			"bearer " + sign(t, user.Id.String()), // prefix is case-sensitive
			"Basic dXNlcjpwYXNz",
		} {
			_, err := authn.Authenticate(ctx, header)
			assert.ErrorIs(t, err, ErrMissingCredential, "header %q", header)
		}
	})

	t.Run("verification failures pass through", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "Bearer not.a.token")
		assert.ErrorIs(t, err, token.ErrInvalidEncoding)

		otherCodec := token.NewCodec("different-secret")
		foreign, signErr := otherCodec.Sign(jwt.MapClaims{"sub": user.Id.String()})
		require.NoError(t, signErr)
		_, err = authn.Authenticate(ctx, "Bearer "+foreign)
		assert.ErrorIs(t, err, token.ErrInvalidSignature)
	})

	t.Run("valid token for a deleted user", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "Bearer "+sign(t, uuid.New().String()))
		assert.ErrorIs(t, err, ErrPrincipalNotFound)
	})

	t.Run("non-uuid non-email subject", func(t *testing.T) {
		_, err := authn.Authenticate(ctx, "Bearer "+sign(t, "not-a-uuid"))
		assert.ErrorIs(t, err, ErrPrincipalNotFound)
	})

	t.Run("repeated calls hit the identity cache", func(t *testing.T) {
		cacheStore := newFakeStore()
		cached := &entity.User{Id: uuid.New(), Email: "bob@example.com"}
		cacheStore.addUser(cached)
		cachedAuthn := NewAuthenticator(codec, newFakeFactory(cacheStore))

		header := "Bearer " + sign(t, cached.Id.String())
		first, err := cachedAuthn.Authenticate(ctx, header)
		require.NoError(t, err)

		// Remove from the backing store; the cache keeps the identity alive
		// for its short TTL.
		delete(cacheStore.users, cached.Id)
		second, err := cachedAuthn.Authenticate(ctx, header)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
