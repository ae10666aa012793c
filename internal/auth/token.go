package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
)

// Kind labels what a credential may be used for.
type Kind string

const (
	KindAccess        Kind = "access"
	KindRefresh       Kind = "refresh"
	KindVerifyEmail   Kind = "verify_email"
	KindPasswordReset Kind = "password_reset"
)

var (
	// ErrTokenExpired is carried by verifications whose credential is sound but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is carried by verifications that failed for any other reason.
	ErrTokenInvalid = errors.New("token invalid")
)

// Status is the outcome tag of a verification.
type Status int

const (
	StatusInvalid Status = iota
	StatusValid
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Kind   Kind        `json:"typ"`
	PairID string      `json:"pid,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the identity payload embedded in the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

// Verification is the typed result of Codec.Verify. Claims is set for
// Valid and Expired results, never for Invalid ones.
type Verification struct {
	Status Status
	Claims *Claims
	Err    error
}

// Codec signs and verifies HS256 credentials. It holds only immutable
// configuration and is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock overrides the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a codec for the given signing secret.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now reports the codec clock.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Sign stamps issued-at, expiry and a unique id on claims and signs them.
func (c *Codec) Sign(claims Claims, lifetime time.Duration) (string, time.Time, error) {
	if lifetime <= 0 {
		return "", time.Time{}, errors.New("lifetime must be greater than zero")
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", time.Time{}, errors.New("subject id is required")
	}
	if claims.Kind == "" {
		return "", time.Time{}, errors.New("credential kind is required")
	}

	now := c.now().Truncate(jwt.TimePrecision)
	expiresAt := now.Add(lifetime)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, structure, kind and expiry. Expiry is evaluated
// against the codec clock only after the signature has been accepted, so a
// tampered credential never reports as expired.
func (c *Codec) Verify(tokenStr string, kind Kind) Verification {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return invalid(errors.New("empty token"))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return invalid(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return invalid(errors.New("invalid token claims"))
	}
	if claims.Kind != kind {
		return invalid(errors.New("unexpected credential kind"))
	}
	if claims.ExpiresAt == nil {
		return invalid(errors.New("expiry missing"))
	}
	if c.now().After(claims.ExpiresAt.Time) {
		return Verification{Status: StatusExpired, Claims: claims, Err: ErrTokenExpired}
	}
	return Verification{Status: StatusValid, Claims: claims}
}

func invalid(cause error) Verification {
	return Verification{Status: StatusInvalid, Err: errors.Join(ErrTokenInvalid, cause)}
}
