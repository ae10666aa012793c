package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/ids"
)

// Pair is an access/refresh credential pair minted from one identity.
type Pair struct {
	Access           string    `json:"access_token"`
	Refresh          string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Issuer mints credential pairs and single-use tokens.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer builds an issuer with distinct lifetimes per credential class.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("codec is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("credential lifetimes must be positive")
	}
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// Codec exposes the codec the issuer signs with.
func (i *Issuer) Codec() *Codec {
	return i.codec
}

// IssuePair signs an access and a refresh credential for the same identity.
// Both members share a pair id so renewal can refuse mixed pairs.
func (i *Issuer) IssuePair(identity domain.Identity) (Pair, error) {
	pairID := ids.New()

	access, accessExp, err := i.codec.Sign(claimsFor(identity, KindAccess, pairID), i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := i.codec.Sign(claimsFor(identity, KindRefresh, pairID), i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueSingleUseToken signs a standalone token such as an email verification link.
func (i *Issuer) IssueSingleUseToken(identity domain.Identity, kind Kind, lifetime time.Duration) (string, time.Time, error) {
	if kind == KindAccess || kind == KindRefresh {
		return "", time.Time{}, fmt.Errorf("kind %q is reserved for credential pairs", kind)
	}
	return i.codec.Sign(claimsFor(identity, kind, ""), lifetime)
}

func claimsFor(identity domain.Identity, kind Kind, pairID string) Claims {
	return Claims{
		UserID: identity.ID,
		Name:   identity.Name,
		Email:  identity.Email,
		Role:   identity.Role,
		Kind:   kind,
		PairID: pairID,
	}
}
