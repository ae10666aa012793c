package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const (
	msgInvalidLogin          = "Invalid email or password"
	msgVerificationExpired   = "Your verification link has expired. Please request a new one."
	msgVerificationMalformed = "Invalid or malformed verification token"
	msgTokenUsed             = "This link has already been used"
	msgResetExpired          = "Your password reset link has expired. Please request a new one."
	msgResetMalformed        = "Invalid or malformed password reset token"
)

// AuthService coordinates registration, login and credential-adjacent account flows.
type AuthService struct {
	users           repository.UserRepository
	issuer          *auth.Issuer
	consumed        auth.OnceStore
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	passwords       auth.PasswordHasher
	verificationTTL time.Duration
	resetTTL        time.Duration
	publicURL       string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Issuer     *auth.Issuer
	Consumed   auth.OnceStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:           deps.UserRepo,
		issuer:          deps.Issuer,
		consumed:        deps.Consumed,
		dispatcher:      deps.Dispatcher,
		logger:          logger,
		passwords:       auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		verificationTTL: cfg.Auth.VerificationTTL(),
		resetTTL:        cfg.Auth.PasswordResetTTL(),
		publicURL:       strings.TrimRight(cfg.App.PublicURL, "/"),
	}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, auth.Pair, error) {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, auth.Pair{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.Pair{}, apperrors.MapError(err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, auth.Pair{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, auth.Pair{}, apperrors.NewConflict("email already registered", nil)
		}
		return nil, auth.Pair{}, apperrors.MapError(err)
	}

	pair, err := s.issuer.IssuePair(user.Identity())
	if err != nil {
		return nil, auth.Pair{}, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserRegistered, user, nil)
	return user, pair, nil
}

// Login authenticates by email and password and issues a fresh pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.Pair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.Pair{}, apperrors.NewAuthenticationFailed(msgInvalidLogin)
		}
		return nil, auth.Pair{}, apperrors.MapError(err)
	}
	if err := s.passwords.Compare(user.PasswordHash, password); err != nil {
		return nil, auth.Pair{}, apperrors.NewAuthenticationFailed(msgInvalidLogin)
	}
	if user.Status != domain.UserStatusActive {
		return nil, auth.Pair{}, apperrors.NewForbidden("account suspended")
	}

	pair, err := s.issuer.IssuePair(user.Identity())
	if err != nil {
		return nil, auth.Pair{}, apperrors.NewInternalError(err)
	}
	return user, pair, nil
}

// Profile returns the account behind an identity.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// RequestEmailVerification mails a single-use verification link.
func (s *AuthService) RequestEmailVerification(ctx context.Context, identity domain.Identity) (time.Time, error) {
	user, err := s.Profile(ctx, identity.ID)
	if err != nil {
		return time.Time{}, err
	}
	if user.EmailVerified {
		return time.Time{}, apperrors.NewConflict("email already verified", nil)
	}

	token, expiresAt, err := s.issuer.IssueSingleUseToken(user.Identity(), auth.KindVerifyEmail, s.verificationTTL)
	if err != nil {
		return time.Time{}, apperrors.NewInternalError(err)
	}

	link := events.LinkPayload{URL: s.link("/api/v1/auth/verify-email", token), ExpiresAt: expiresAt}
	if err := s.dispatch(ctx, events.EventEmailVerificationRequested, user, link); err != nil {
		return time.Time{}, apperrors.NewDomainError("MAIL_FAILED", "Failed to send email. Please try again later.", 500, nil)
	}
	return expiresAt, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewValidationError("Verification token is required", nil)
	}
	claims, err := s.verifySingleUse(token, auth.KindVerifyEmail, msgVerificationExpired, msgVerificationMalformed)
	if err != nil {
		return nil, err
	}

	// Spend the token only after the idempotent write lands.
	if err := s.users.MarkEmailVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.claimOnce(ctx, claims); err != nil {
		return nil, err
	}
	return s.Profile(ctx, claims.UserID)
}

// RequestPasswordReset mails a reset link. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return apperrors.MapError(err)
	}

	token, expiresAt, err := s.issuer.IssueSingleUseToken(user.Identity(), auth.KindPasswordReset, s.resetTTL)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	link := events.LinkPayload{URL: s.link("/reset-password", token), ExpiresAt: expiresAt}
	if err := s.dispatch(ctx, events.EventPasswordResetRequested, user, link); err != nil {
		return apperrors.NewDomainError("MAIL_FAILED", "Failed to send email. Please try again later.", 500, nil)
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.verifySingleUse(token, auth.KindPasswordReset, msgResetExpired, msgResetMalformed)
	if err != nil {
		return err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	user, err := s.Profile(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if err := s.claimOnce(ctx, claims); err != nil {
		return err
	}
	return s.storePassword(ctx, user, hash)
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	user, err := s.Profile(ctx, identity.ID)
	if err != nil {
		return err
	}
	if err := s.passwords.Compare(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewAuthenticationFailed("current password is incorrect")
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("new password must differ from the current one", nil)
	}
	return s.setPassword(ctx, user, newPassword)
}

// ListUsers returns accounts for staff views.
func (s *AuthService) ListUsers(ctx context.Context, filter repository.UserListFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ChangeRole assigns a role to another account.
func (s *AuthService) ChangeRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if actor.ID == userID {
		return apperrors.NewForbidden("cannot change your own role")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("role changed",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	return s.storePassword(ctx, user, hash)
}

func (s *AuthService) storePassword(ctx context.Context, user *domain.User, hash string) error {
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventPasswordChanged, user, nil)
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := s.passwords.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password must be at most 72 bytes", nil)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

// verifySingleUse checks a mailed token without spending it.
func (s *AuthService) verifySingleUse(token string, kind auth.Kind, expiredMsg, invalidMsg string) (*auth.Claims, error) {
	result := s.issuer.Codec().Verify(token, kind)
	switch result.Status {
	case auth.StatusExpired:
		return nil, apperrors.NewAuthenticationFailed(expiredMsg)
	case auth.StatusInvalid:
		return nil, apperrors.NewAuthenticationFailed(invalidMsg)
	}
	return result.Claims, nil
}

// claimOnce spends a verified token so it cannot be replayed.
func (s *AuthService) claimOnce(ctx context.Context, claims *auth.Claims) error {
	if s.consumed == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.issuer.Codec().Now())
	first, err := s.consumed.Claim(ctx, "consumed:"+claims.ID, ttl)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !first {
		return apperrors.NewAuthenticationFailed(msgTokenUsed)
	}
	return nil
}

func (s *AuthService) link(path, token string) string {
	return s.publicURL + path + "?token=" + url.QueryEscape(token)
}

func (s *AuthService) dispatch(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Recipient: events.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// publish dispatches a best-effort notification; failures are logged only.
func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if err := s.dispatch(ctx, eventType, user, payload); err != nil {
		s.logger.Warn("notification failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
