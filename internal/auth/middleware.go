package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// LoggedOutMessage is returned when a session is terminated.
const LoggedOutMessage = "You have logged out"

// Gate outcomes, one per request.
const (
	OutcomeNoCredentials  = "no_credentials"
	OutcomeNoAccess       = "no_access"
	OutcomeAccessValid    = "access_valid"
	OutcomeAccessInvalid  = "access_invalid"
	OutcomeExpiredNoRenew = "access_expired_no_refresh"
	OutcomeRenewed        = "renewed"
	OutcomeRefreshInvalid = "refresh_invalid"
	OutcomeRefreshReused  = "refresh_reused"
	OutcomeLoggedOut      = "logged_out"
	OutcomeForbidden      = "forbidden"
	OutcomeInternal       = "internal_error"
)

// OutcomeRecorder counts gate outcomes.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// GateDependencies bundles the collaborators of the Gate.
type GateDependencies struct {
	Issuer  *Issuer
	Source  TokenSource
	Session SessionWriter
	// Guard, when set, allows each refresh credential to renew only once.
	Guard   OnceStore
	Logger  *zap.Logger
	Metrics OutcomeRecorder
}

// Gate authenticates requests, renews expired access credentials and enforces roles.
type Gate struct {
	codec   *Codec
	issuer  *Issuer
	source  TokenSource
	session SessionWriter
	guard   OnceStore
	logger  *zap.Logger
	metrics OutcomeRecorder
}

// NewGate constructs the gate.
func NewGate(deps GateDependencies) (*Gate, error) {
	if deps.Issuer == nil {
		return nil, errors.New("issuer is required")
	}
	if deps.Source == nil || deps.Session == nil {
		return nil, errors.New("token source and session writer are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		codec:   deps.Issuer.Codec(),
		issuer:  deps.Issuer,
		source:  deps.Source,
		session: deps.Session,
		guard:   deps.Guard,
		logger:  logger,
		metrics: deps.Metrics,
	}, nil
}

// Authenticate returns a guard admitting callers whose role is in allowed.
// No roles means any authenticated identity.
func (g *Gate) Authenticate(allowed ...domain.Role) fiber.Handler {
	roles := newRoleSet(allowed)

	return func(c *fiber.Ctx) error {
		creds := g.source.Extract(c)

		if creds.Access == "" {
			if creds.Refresh == "" {
				return g.reject(OutcomeNoCredentials, apperrors.NewUnauthenticated(""))
			}
			return g.reject(OutcomeNoAccess, apperrors.NewUnauthenticated(""))
		}

		access := g.codec.Verify(creds.Access, KindAccess)
		switch access.Status {
		case StatusValid:
			if access.Claims.UserID == "" {
				return g.reject(OutcomeAccessInvalid, apperrors.NewAuthenticationFailed("Invalid authentication token"))
			}
			return g.admit(c, access.Claims.Identity(), roles, OutcomeAccessValid)
		case StatusExpired:
			if creds.Refresh == "" {
				return g.reject(OutcomeExpiredNoRenew, apperrors.NewUnauthenticated(""))
			}
			return g.renew(c, access.Claims, creds.Refresh, roles)
		default:
			g.logger.Debug("access token rejected", zap.Error(access.Err))
			return g.reject(OutcomeAccessInvalid, apperrors.NewAuthenticationFailed(""))
		}
	}
}

func (g *Gate) renew(c *fiber.Ctx, expired *Claims, refreshToken string, roles roleSet) error {
	refresh := g.codec.Verify(refreshToken, KindRefresh)
	switch refresh.Status {
	case StatusExpired:
		return g.logout(c, refresh.Claims.UserID)
	case StatusInvalid:
		g.logger.Debug("refresh token rejected", zap.Error(refresh.Err))
		return g.reject(OutcomeRefreshInvalid, apperrors.NewUnauthenticated(""))
	}

	claims := refresh.Claims
	if claims.UserID == "" || claims.UserID != expired.UserID || claims.PairID != expired.PairID {
		g.logger.Debug("refresh token does not belong to access token",
			zap.String("user_id", expired.UserID))
		return g.reject(OutcomeRefreshInvalid, apperrors.NewUnauthenticated(""))
	}

	if g.guard != nil {
		ttl := claims.ExpiresAt.Sub(g.codec.Now())
		first, err := g.guard.Claim(c.UserContext(), "renew:"+claims.ID, ttl)
		if err != nil {
			g.logger.Error("renewal guard unavailable", zap.Error(err))
			return g.reject(OutcomeInternal, apperrors.NewInternalError(err))
		}
		if !first {
			g.logger.Info("refresh token reused", zap.String("user_id", claims.UserID))
			return g.reject(OutcomeRefreshReused, apperrors.NewUnauthenticated(""))
		}
	}

	identity := claims.Identity()
	pair, err := g.issuer.IssuePair(identity)
	if err != nil {
		g.logger.Error("issue renewed pair", zap.Error(err))
		return g.reject(OutcomeInternal, apperrors.NewInternalError(err))
	}
	if err := g.session.SetTokens(c, pair); err != nil {
		g.logger.Error("write renewed pair", zap.Error(err))
		return g.reject(OutcomeInternal, apperrors.NewInternalError(err))
	}

	g.logger.Info("session renewed", zap.String("user_id", identity.ID))
	return g.admit(c, identity, roles, OutcomeRenewed)
}

func (g *Gate) admit(c *fiber.Ctx, identity domain.Identity, roles roleSet, outcome string) error {
	if !roles.permits(identity.Role) {
		return g.reject(OutcomeForbidden, apperrors.NewForbidden(""))
	}
	g.record(outcome)
	c.Locals(identityKey, &identity)
	return c.Next()
}

func (g *Gate) logout(c *fiber.Ctx, userID string) error {
	if err := g.session.ClearTokens(c); err != nil {
		g.logger.Error("clear session", zap.Error(err))
		return g.reject(OutcomeInternal, apperrors.NewInternalError(err))
	}
	g.record(OutcomeLoggedOut)
	g.logger.Info("session expired; logged out", zap.String("user_id", userID))
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"statusCode": http.StatusOK,
		"success":    true,
		"message":    LoggedOutMessage,
		"data":       nil,
	})
}

func (g *Gate) reject(outcome string, err error) error {
	g.record(outcome)
	return err
}

func (g *Gate) record(outcome string) {
	if g.metrics != nil {
		g.metrics.RecordAuthOutcome(outcome)
	}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
