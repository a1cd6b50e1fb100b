package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tokenStr, err := NewCodec(secret).Sign(claims)
	require.NoError(t, err)
	return tokenStr
}

func segment(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func TestDecode(t *testing.T) {
	codec := NewCodec(testSecret)

	tests := []struct {
		name     string
		tokenStr string
		wantErr  error
	}{
		{name: "two segments", tokenStr: "abc.def", wantErr: ErrMalformedToken},
		{name: "four segments", tokenStr: "a.b.c.d", wantErr: ErrMalformedToken},
		{name: "empty string", tokenStr: "", wantErr: ErrMalformedToken},
		{name: "bad base64 header", tokenStr: "!!!." + segment(`{}`) + ".sig", wantErr: ErrInvalidEncoding},
		{name: "bad base64 payload", tokenStr: segment(`{"alg":"HS256"}`) + ".!!!.sig", wantErr: ErrInvalidEncoding},
		{name: "non-object header", tokenStr: segment(`"HS256"`) + "." + segment(`{}`) + ".sig", wantErr: ErrInvalidEncoding},
		{name: "non-object payload", tokenStr: segment(`{"alg":"HS256"}`) + "." + segment(`[1,2]`) + ".sig", wantErr: ErrInvalidEncoding},
		{name: "null header", tokenStr: segment(`null`) + "." + segment(`{}`) + ".sig", wantErr: ErrInvalidEncoding},
		{name: "null payload", tokenStr: segment(`{"alg":"HS256"}`) + "." + segment(`null`) + ".sig", wantErr: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.tokenStr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("valid token decodes", func(t *testing.T) {
		tokenStr := signedToken(t, testSecret, jwt.MapClaims{"sub": "alice"})
		decoded, err := codec.Decode(tokenStr)
		require.NoError(t, err)
		assert.Equal(t, "HS256", decoded.Header.Alg)
		assert.Equal(t, "alice", decoded.Claims["sub"])
	})
}

func TestVerifySignature(t *testing.T) {
	codec := NewCodec(testSecret)

	t.Run("valid signature passes", func(t *testing.T) {
		decoded, err := codec.Decode(signedToken(t, testSecret, jwt.MapClaims{"sub": "alice"}))
		require.NoError(t, err)
		assert.NoError(t, codec.VerifySignature(decoded))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		decoded, err := codec.Decode(signedToken(t, "other-secret", jwt.MapClaims{"sub": "alice"}))
		require.NoError(t, err)
		assert.ErrorIs(t, codec.VerifySignature(decoded), ErrInvalidSignature)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		tokenStr := signedToken(t, testSecret, jwt.MapClaims{"sub": "alice"})
		parts := strings.Split(tokenStr, ".")
		parts[1] = segment(`{"sub":"mallory"}`)
		decoded, err := codec.Decode(strings.Join(parts, "."))
		require.NoError(t, err)
		assert.ErrorIs(t, codec.VerifySignature(decoded), ErrInvalidSignature)
	})

	t.Run("alg none is rejected before any comparison", func(t *testing.T) {
		tokenStr := segment(`{"alg":"none","typ":"JWT"}`) + "." + segment(`{"sub":"alice"}`) + "."
		decoded, err := codec.Decode(tokenStr)
		require.NoError(t, err)
		assert.ErrorIs(t, codec.VerifySignature(decoded), ErrUnsupportedAlgorithm)
	})

	t.Run("foreign algorithm is rejected", func(t *testing.T) {
		tokenStr := segment(`{"alg":"RS256","typ":"JWT"}`) + "." + segment(`{"sub":"alice"}`) + ".c2ln"
		decoded, err := codec.Decode(tokenStr)
		require.NoError(t, err)
		assert.ErrorIs(t, codec.VerifySignature(decoded), ErrUnsupportedAlgorithm)
	})
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodecWithClock(testSecret, fixedClock(now))

	decode := func(t *testing.T, claims jwt.MapClaims) *Decoded {
		decoded, err := codec.Decode(signedToken(t, testSecret, claims))
		require.NoError(t, err)
		return decoded
	}

	t.Run("future exp passes", func(t *testing.T) {
		d := decode(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(time.Hour).Unix()})
		assert.NoError(t, codec.CheckExpiry(d))
	})

	t.Run("past exp fails", func(t *testing.T) {
		d := decode(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(-time.Second).Unix()})
		assert.ErrorIs(t, codec.CheckExpiry(d), ErrTokenExpired)
	})

	t.Run("exp exactly now fails", func(t *testing.T) {
		d := decode(t, jwt.MapClaims{"sub": "alice", "exp": now.Unix()})
		assert.ErrorIs(t, codec.CheckExpiry(d), ErrTokenExpired)
	})

	t.Run("absent exp never expires", func(t *testing.T) {
		d := decode(t, jwt.MapClaims{"sub": "alice"})
		assert.NoError(t, codec.CheckExpiry(d))
	})

	t.Run("malformed exp fails", func(t *testing.T) {
		d := decode(t, jwt.MapClaims{"sub": "alice", "exp": "not-a-number"})
		assert.ErrorIs(t, codec.CheckExpiry(d), ErrTokenExpired)
	})
}

func TestExtractSubject(t *testing.T) {
	codec := NewCodec(testSecret)

	decode := func(t *testing.T, claims jwt.MapClaims) *Decoded {
		decoded, err := codec.Decode(signedToken(t, testSecret, claims))
		require.NoError(t, err)
		return decoded
	}

	t.Run("string subject", func(t *testing.T) {
		sub, err := codec.ExtractSubject(decode(t, jwt.MapClaims{"sub": "alice@example.com"}))
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", sub)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := codec.ExtractSubject(decode(t, jwt.MapClaims{"aud": "x"}))
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("empty subject", func(t *testing.T) {
		_, err := codec.ExtractSubject(decode(t, jwt.MapClaims{"sub": ""}))
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("non-string subject", func(t *testing.T) {
		_, err := codec.ExtractSubject(decode(t, jwt.MapClaims{"sub": 42}))
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestVerifyPipeline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodecWithClock(testSecret, fixedClock(now))

	t.Run("happy path", func(t *testing.T) {
		tokenStr := signedToken(t, testSecret, jwt.MapClaims{
			"sub": "alice",
			"exp": now.Add(time.Hour).Unix(),
		})
		sub, err := codec.Verify(tokenStr)
		require.NoError(t, err)
		assert.Equal(t, "alice", sub)
	})

	t.Run("signature is checked before expiry", func(t *testing.T) {
		// Expired AND wrongly signed: the signature error must win.
		tokenStr := signedToken(t, "other-secret", jwt.MapClaims{
			"sub": "alice",
			"exp": now.Add(-time.Hour).Unix(),
		})
		_, err := codec.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("expired token fails even with valid signature", func(t *testing.T) {
		tokenStr := signedToken(t, testSecret, jwt.MapClaims{
			"sub": "alice",
			"exp": now.Add(-time.Hour).Unix(),
		})
		_, err := codec.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}
