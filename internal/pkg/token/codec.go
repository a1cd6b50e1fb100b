package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for each verification stage. The HTTP layer collapses all of
// them into one generic 401; the distinction exists for server-side logs only.
var (
	ErrMalformedToken       = errors.New("malformed token")
	ErrInvalidEncoding      = errors.New("invalid token encoding")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrTokenExpired         = errors.New("token expired")
	ErrMissingSubject       = errors.New("missing token subject")
)

const algHS256 = "HS256"

// Decoded holds the parsed segments of a compact header.payload.signature token.
type Decoded struct {
	Header Header
	Claims jwt.MapClaims

	signingString string
	signatureSeg  string
}

type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Codec verifies and issues HS256 bearer tokens. The secret and clock are
// injected so verification stays pure and testable.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return NewCodecWithClock(secret, time.Now)
}

func NewCodecWithClock(secret string, now func() time.Time) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    now,
	}
}

// Decode splits and base64url/JSON-decodes the header and payload segments.
// The signature segment is kept raw for VerifySignature.
func (c *Codec) Decode(tokenStr string) (*Decoded, error) {
	segments := strings.Split(tokenStr, ".")
	if len(segments) != 3 {
		return nil, ErrMalformedToken
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return nil, ErrInvalidEncoding
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, ErrInvalidEncoding
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, ErrInvalidEncoding
	}
	// A segment of JSON null unmarshals into either target without error but
	// carries no object.
	if bytes.Equal(bytes.TrimSpace(headerBytes), []byte("null")) || claims == nil {
		return nil, ErrInvalidEncoding
	}

	return &Decoded{
		Header:        header,
		Claims:        claims,
		signingString: segments[0] + "." + segments[1],
		signatureSeg:  segments[2],
	}, nil
}

// VerifySignature recomputes the HMAC over header.payload and compares in
// constant time. Any declared algorithm other than HS256 is rejected outright,
// which closes the alg:none bypass.
func (c *Codec) VerifySignature(d *Decoded) error {
	if d.Header.Alg != algHS256 {
		return ErrUnsupportedAlgorithm
	}

	sig, err := base64.RawURLEncoding.DecodeString(d.signatureSeg)
	if err != nil {
		return ErrInvalidSignature
	}

	if err := jwt.SigningMethodHS256.Verify(d.signingString, sig, c.secret); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// CheckExpiry rejects a past exp claim. A payload without exp never expires;
// our issuance path always sets one.
func (c *Codec) CheckExpiry(d *Decoded) error {
	exp, err := d.Claims.GetExpirationTime()
	if err != nil {
		return ErrTokenExpired
	}
	if exp == nil {
		return nil
	}
	if !c.now().Before(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}

// ExtractSubject returns the sub claim, rejecting absent, non-string or empty
// values.
func (c *Codec) ExtractSubject(d *Decoded) (string, error) {
	raw, ok := d.Claims["sub"]
	if !ok {
		return "", ErrMissingSubject
	}
	sub, ok := raw.(string)
	if !ok || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// Verify runs the full pipeline in order: decode, signature, expiry, subject.
// Each stage short-circuits on failure.
func (c *Codec) Verify(tokenStr string) (string, error) {
	decoded, err := c.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	if err := c.VerifySignature(decoded); err != nil {
		return "", err
	}
	if err := c.CheckExpiry(decoded); err != nil {
		return "", err
	}
	return c.ExtractSubject(decoded)
}

// Sign issues a compact HS256 token for the given claims.
func (c *Codec) Sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}
