package service

import (
	"context"
	"log"
	"sync"
	"time"

	"alumni_connect/internal/app/session"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"
)

const mirrorRefreshInterval = 15 * time.Minute

// MirroredIdentity wraps an external identity service and keeps a local users/profiles row for
// every user it resolves, so dashboards and job authorship work against Postgres. Mirroring is
// best effort: a failed upsert is logged and never fails the call.
type MirroredIdentity struct {
	session.IdentityService
	userRepo repository.UserRepository

	mu     sync.Mutex
	synced map[string]time.Time
}

func NewMirroredIdentity(identity session.IdentityService, userRepo repository.UserRepository) *MirroredIdentity {
	return &MirroredIdentity{IdentityService: identity, userRepo: userRepo, synced: map[string]time.Time{}}
}

func (m *MirroredIdentity) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := m.IdentityService.SignIn(ctx, email, password)
	m.mirrorSession(ctx, sess, err)
	return sess, err
}

func (m *MirroredIdentity) SignUp(ctx context.Context, email, password string, profile model.Profile) (*model.Session, error) {
	sess, err := m.IdentityService.SignUp(ctx, email, password, profile)
	m.mirrorSession(ctx, sess, err)
	return sess, err
}

func (m *MirroredIdentity) SetSession(ctx context.Context, accessToken, refreshToken string) (*model.Session, error) {
	sess, err := m.IdentityService.SetSession(ctx, accessToken, refreshToken)
	m.mirrorSession(ctx, sess, err)
	return sess, err
}

func (m *MirroredIdentity) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	sess, err := m.IdentityService.RefreshSession(ctx, refreshToken)
	m.mirrorSession(ctx, sess, err)
	return sess, err
}

// GetUser runs on every authenticated request, so it only re-mirrors a user after
// mirrorRefreshInterval.
func (m *MirroredIdentity) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	user, err := m.IdentityService.GetUser(ctx, accessToken)
	if err == nil && user != nil && m.stale(user.ID) {
		m.mirror(ctx, user)
	}
	return user, err
}

func (m *MirroredIdentity) mirrorSession(ctx context.Context, sess *model.Session, err error) {
	if err != nil || sess == nil || sess.User == nil {
		return
	}
	m.mirror(ctx, sess.User)
}

func (m *MirroredIdentity) stale(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.synced[userID]
	return !ok || time.Since(last) > mirrorRefreshInterval
}

func (m *MirroredIdentity) mirror(ctx context.Context, user *model.User) {
	if !user.Role.IsValid() {
		log.Printf("WARN: not mirroring user %s without a valid role", user.ID)
		return
	}
	if err := m.userRepo.Upsert(ctx, user); err != nil {
		log.Printf("WARN: failed to mirror user %s: %v", user.ID, err)
		return
	}
	m.mu.Lock()
	m.synced[user.ID] = time.Now()
	m.mu.Unlock()
}
