// Package session owns the current-user state of one client context.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/platform/metrics"
)

// IdentityService is the external system holding credentials and sessions.
type IdentityService interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignUp(ctx context.Context, email, password string, profile model.Profile) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email string) error
	SetSession(ctx context.Context, accessToken, refreshToken string) (*model.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error)
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
	UpdatePassword(ctx context.Context, accessToken, password string) error
}

// View is the read-only projection handed to handlers.
type View struct {
	User          *model.User `json:"user"`
	Role          model.Role  `json:"role"`
	Loading       bool        `json:"loading"`
	Authenticated bool        `json:"authenticated"`
}

type Provider struct {
	identity IdentityService

	mu      sync.Mutex
	session *model.Session
	user    *model.User
	loading bool
}

func NewProvider(identity IdentityService) *Provider {
	return &Provider{identity: identity, loading: true}
}

// Bootstrap resolves the user behind accessToken. An empty or rejected token leaves the
// provider signed out; only identity outages are returned.
func (p *Provider) Bootstrap(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() { p.loading = false }()

	if accessToken == "" {
		return nil
	}
	user, err := p.identity.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("bootstrap session: %w", err)
	}
	p.session = &model.Session{AccessToken: accessToken, TokenType: "bearer", User: user}
	p.user = user
	return nil
}

func (p *Provider) SignIn(ctx context.Context, form forms.SignIn) (*model.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	sess, err := p.identity.SignIn(ctx, form.Email, form.Password)
	metrics.AuthAttempts.WithLabelValues("signin", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	p.establish(sess)
	return sess, nil
}

// SignUp validates locally before the identity service is contacted.
func (p *Provider) SignUp(ctx context.Context, form forms.SignUp) (*model.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	sess, err := p.identity.SignUp(ctx, form.Email, form.Password, form.Profile())
	metrics.AuthAttempts.WithLabelValues("signup", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	if sess.AccessToken != "" {
		p.establish(sess)
	}
	return sess, nil
}

// SignOut is a no-op without a session.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}
	err := p.identity.SignOut(ctx, p.session.AccessToken)
	metrics.AuthAttempts.WithLabelValues("signout", metrics.Outcome(err)).Inc()
	p.session = nil
	p.user = nil
	if err != nil && !errors.Is(err, common.ErrUnauthorized) && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// ResetPassword never tells whether the email is registered.
func (p *Provider) ResetPassword(ctx context.Context, form forms.ForgotPassword) error {
	if err := form.Validate(); err != nil {
		return err
	}
	err := p.identity.SendPasswordReset(ctx, form.Email)
	metrics.AuthAttempts.WithLabelValues("reset", metrics.Outcome(err)).Inc()
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	if refreshToken == "" {
		return nil, common.Invalid("refresh_token is required")
	}
	sess, err := p.identity.RefreshSession(ctx, refreshToken)
	metrics.AuthAttempts.WithLabelValues("refresh", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	p.establish(sess)
	return sess, nil
}

func (p *Provider) establish(sess *model.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = sess
	p.user = sess.User
	p.loading = false
}

func (p *Provider) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := View{User: p.user, Loading: p.loading}
	if p.user != nil {
		v.Role = p.user.Role
		v.Authenticated = true
	}
	return v
}

func (p *Provider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ""
	}
	return p.session.AccessToken
}

func (p *Provider) Identity() IdentityService { return p.identity }

type ctxKey struct{}

func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns nil when no provider was installed.
func FromContext(ctx context.Context) *Provider {
	p, _ := ctx.Value(ctxKey{}).(*Provider)
	return p
}

// CurrentUser is a convenience for handlers behind RequireUser.
func CurrentUser(ctx context.Context) *model.User {
	p := FromContext(ctx)
	if p == nil {
		log.Println("WARN: no session provider in request context")
		return nil
	}
	return p.View().User
}
