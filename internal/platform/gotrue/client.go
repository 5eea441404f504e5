package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

// Client talks to a GoTrue compatible identity service over its REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type userMetadata struct {
	FullName   string `json:"full_name,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

type userPayload struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         *userPayload `json:"user"`
}

// signupPayload covers both answers of /signup: a session, or a bare user awaiting confirmation.
type signupPayload struct {
	sessionPayload
	userPayload
}

type errorPayload struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error_code"`
}

func (p *errorPayload) text() string {
	for _, s := range []string{p.ErrorDescription, p.Msg, p.Message, p.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (u *userPayload) toModel() *model.User {
	user := &model.User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if role, ok := model.ParseRole(u.UserMetadata.Role); ok {
		user.Role = role
	}
	if u.UserMetadata.FullName != "" {
		name := u.UserMetadata.FullName
		user.FullName = &name
	}
	if u.UserMetadata.Department != "" {
		dept := u.UserMetadata.Department
		user.Department = &dept
	}
	return user
}

func (s *sessionPayload) toModel() *model.Session {
	sess := &model.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
	}
	if s.ExpiresAt > 0 {
		sess.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	} else if s.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if s.User != nil {
		sess.User = s.User.toModel()
	}
	return sess
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	var out sessionPayload
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

// SignUp returns a session without tokens when the service requires email confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string, profile model.Profile) (*model.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data": userMetadata{
			FullName:   profile.FullName,
			Role:       string(profile.Role),
			Department: profile.Department,
		},
	}
	var out signupPayload
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken != "" {
		return out.sessionPayload.toModel(), nil
	}
	return &model.Session{User: out.userPayload.toModel()}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": email}, nil)
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	var out sessionPayload
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

// SetSession keeps the pair when the access token is still accepted and refreshes otherwise.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*model.Session, error) {
	if accessToken != "" {
		if user, err := c.GetUser(ctx, accessToken); err == nil {
			return &model.Session{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "bearer",
				User:         user,
			}, nil
		}
	}
	if refreshToken == "" {
		return nil, common.ErrUnauthorized
	}
	return c.RefreshSession(ctx, refreshToken)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, password string) error {
	return c.do(ctx, http.MethodPut, "/user", accessToken, map[string]string{"password": password}, nil)
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gotrue %s marshal: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gotrue %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue %s: %v: %w", path, err, common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errorFromResponse(path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gotrue %s decode: %w", path, err)
	}
	return nil
}

func errorFromResponse(path string, resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.text()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = common.ErrServiceUnavailable
	case resp.StatusCode == http.StatusUnprocessableEntity && isDuplicate(payload, msg):
		kind = common.ErrConflict
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return common.Invalid(msg)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = common.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = common.ErrNotFound
	case resp.StatusCode >= 500:
		log.Printf("ERROR: gotrue %s returned %d: %s", path, resp.StatusCode, msg)
		return fmt.Errorf("gotrue %s: status %d: %w", path, resp.StatusCode, common.ErrServiceUnavailable)
	default:
		kind = common.ErrUpstream
	}
	return common.Public(kind, msg)
}

func isDuplicate(p errorPayload, msg string) bool {
	return p.ErrorCode == "user_already_exists" || strings.Contains(strings.ToLower(msg), "already registered")
}
