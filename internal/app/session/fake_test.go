package session

import (
	"context"
	"sync"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

type fakeIdentity struct {
	mu       sync.Mutex
	users    map[string]*model.User // by access token
	calls    map[string]int
	signInFn func(email, password string) (*model.Session, error)
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]*model.User{}, calls: map[string]int{}}
}

func (f *fakeIdentity) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeIdentity) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*model.Session, error) {
	f.record("signin")
	if f.signInFn != nil {
		return f.signInFn(email, password)
	}
	user := &model.User{ID: "u-" + email, Email: email, Role: model.RoleStudent}
	f.users["at-"+email] = user
	return &model.Session{AccessToken: "at-" + email, RefreshToken: "rt-" + email, User: user}, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string, profile model.Profile) (*model.Session, error) {
	f.record("signup")
	name := profile.FullName
	user := &model.User{ID: "u-" + email, Email: email, FullName: &name, Role: profile.Role}
	f.users["at-"+email] = user
	return &model.Session{AccessToken: "at-" + email, User: user}, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, accessToken string) error {
	f.record("signout")
	delete(f.users, accessToken)
	return nil
}

func (f *fakeIdentity) SendPasswordReset(context.Context, string) error {
	f.record("reset")
	return nil
}

func (f *fakeIdentity) SetSession(_ context.Context, accessToken, refreshToken string) (*model.Session, error) {
	f.record("set_session")
	user, ok := f.users[accessToken]
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return &model.Session{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

func (f *fakeIdentity) RefreshSession(_ context.Context, refreshToken string) (*model.Session, error) {
	f.record("refresh")
	return nil, common.ErrUnauthorized
}

func (f *fakeIdentity) GetUser(_ context.Context, accessToken string) (*model.User, error) {
	f.record("get_user")
	user, ok := f.users[accessToken]
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

func (f *fakeIdentity) UpdatePassword(context.Context, string, string) error {
	f.record("update_password")
	return nil
}
