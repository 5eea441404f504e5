package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/common"
	"alumni_connect/internal/common/security"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Invalid login credentials"
	msgInvalidRefresh     = "Invalid Refresh Token"
	recoverySessionTTL    = time.Hour
)

// AuthService is the self-hosted identity service: Postgres accounts, Redis sessions.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	mailbox     *MailboxService
	tokens      *security.TokenManager
	refreshTTL  time.Duration
	appBaseURL  string
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, mailbox *MailboxService,
	tokens *security.TokenManager, refreshTTL time.Duration, appBaseURL string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		mailbox:     mailbox,
		tokens:      tokens,
		refreshTTL:  refreshTTL,
		appBaseURL:  strings.TrimRight(appBaseURL, "/"),
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string, profile model.Profile) (*model.Session, error) {
	if email == "" || password == "" || profile.FullName == "" {
		return nil, common.Invalid(forms.MsgFillRequired)
	}
	if len(password) < forms.MinPasswordLength {
		return nil, common.Invalid(forms.MsgPasswordTooShort)
	}
	if !profile.Role.IsValid() {
		return nil, common.Invalid(forms.MsgInvalidRole)
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	fullName := profile.FullName
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          strings.ToLower(email),
		FullName:       &fullName,
		HashedPassword: hashedPassword,
		Role:           profile.Role,
	}
	if profile.Department != "" {
		dept := profile.Department
		user.Department = &dept
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Public(common.ErrConflict, "User already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.newSession(ctx, user, false)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Public(common.ErrUnauthorized, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.Public(common.ErrUnauthorized, msgInvalidCredentials)
	}
	return s.newSession(ctx, user, false)
}

// SignOut deletes the session behind accessToken; tokens bound to it stop working.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.VerifyToken(accessToken)
	if err != nil {
		return common.ErrUnauthorized
	}
	return s.sessionRepo.Delete(ctx, claims.SessionID)
}

// SendPasswordReset answers nil for unknown addresses as well.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("INFO: password reset requested for unknown address")
			return nil
		}
		return fmt.Errorf("error finding user by email: %w", err)
	}

	sess, err := s.newSession(ctx, user, true)
	if err != nil {
		return err
	}
	if _, err := s.mailbox.EnqueuePasswordReset(ctx, user.Email, s.ResetLink(sess)); err != nil {
		return err
	}
	return nil
}

// ResetLink is the page the reset mail points to.
func (s *AuthService) ResetLink(sess *model.Session) string {
	q := url.Values{}
	q.Set("access_token", sess.AccessToken)
	q.Set("refresh_token", sess.RefreshToken)
	q.Set("type", "recovery")
	return s.appBaseURL + "/reset-password?" + q.Encode()
}

// SetSession keeps the pair while the access token is bound to a live session and rotates
// the refresh token otherwise.
func (s *AuthService) SetSession(ctx context.Context, accessToken, refreshToken string) (*model.Session, error) {
	if accessToken != "" {
		user, claims, err := s.authenticate(ctx, accessToken)
		if err == nil {
			return &model.Session{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "bearer",
				ExpiresIn:    int64(time.Until(claims.ExpiresAt).Seconds()),
				ExpiresAt:    claims.ExpiresAt,
				User:         user,
			}, nil
		}
	}
	if refreshToken == "" {
		return nil, common.ErrUnauthorized
	}
	return s.RefreshSession(ctx, refreshToken)
}

// RefreshSession rotates: the old session is deleted before the new one is returned.
func (s *AuthService) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	rec, err := s.sessionRepo.FindByRefreshHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Public(common.ErrUnauthorized, msgInvalidRefresh)
		}
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Public(common.ErrUnauthorized, msgInvalidRefresh)
		}
		return nil, fmt.Errorf("error finding user by id: %w", err)
	}
	if err := s.sessionRepo.Delete(ctx, rec.ID); err != nil {
		return nil, err
	}
	return s.newSession(ctx, user, rec.Recovery)
}

func (s *AuthService) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	user, _, err := s.authenticate(ctx, accessToken)
	return user, err
}

// UpdatePassword ends the session it was called with, so a reset link works only once.
func (s *AuthService) UpdatePassword(ctx context.Context, accessToken, password string) error {
	user, claims, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	if len(password) < forms.MinPasswordLength {
		return common.Invalid(forms.MsgPasswordTooShort)
	}
	if security.CheckPasswordHash(password, user.HashedPassword) {
		return common.Invalid("New password should be different from the old password.")
	}
	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		log.Printf("WARN: password updated but session %s not revoked: %v", claims.SessionID, err)
	}
	return nil
}

func (s *AuthService) authenticate(ctx context.Context, accessToken string) (*model.User, *security.AccessClaims, error) {
	claims, err := s.tokens.VerifyToken(accessToken)
	if err != nil {
		return nil, nil, common.ErrUnauthorized
	}
	rec, err := s.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, err
	}
	if rec.UserID != claims.UserID {
		return nil, nil, common.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("error finding user by id: %w", err)
	}
	return user, claims, nil
}

func (s *AuthService) newSession(ctx context.Context, user *model.User, recovery bool) (*model.Session, error) {
	refreshToken, err := security.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	ttl := s.refreshTTL
	if recovery {
		ttl = recoverySessionTTL
	}
	now := time.Now().UTC()
	rec := &model.SessionRecord{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		RefreshHash: security.HashToken(refreshToken),
		Recovery:    recovery,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.sessionRepo.Save(ctx, rec); err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.GenerateToken(user.ID, string(user.Role), rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &model.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}
