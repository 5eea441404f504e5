package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key", 5*time.Second)
}

func TestSignInMapsSessionAndProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Fatalf("missing apikey header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "s@example.com" || body["password"] != "secret1" {
			t.Fatalf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,
			"user":{"id":"u1","email":"s@example.com","user_metadata":{"full_name":"Sam Student","role":"student"}}}`))
	})

	sess, err := client.SignIn(context.Background(), "s@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.AccessToken != "at" || sess.RefreshToken != "rt" {
		t.Fatalf("unexpected tokens %+v", sess)
	}
	if sess.User == nil || sess.User.Role != model.RoleStudent || sess.User.DisplayName() != "Sam Student" {
		t.Fatalf("unexpected user %+v", sess.User)
	}
	if time.Until(sess.ExpiresAt) <= 0 {
		t.Fatalf("expected expiry derived from expires_in")
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignIn(context.Background(), "s@example.com", "wrong")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if common.PublicMessage(err) != "Invalid login credentials" {
		t.Fatalf("unexpected message %q", common.PublicMessage(err))
	}
}

func TestSignUpDuplicateAndConfirmation(t *testing.T) {
	duplicate := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	})
	_, err := duplicate.SignUp(context.Background(), "s@example.com", "secret1", model.Profile{FullName: "Sam", Role: model.RoleStudent})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	pending := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data userMetadata `json:"data"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Data.Role != "alumni" || body.Data.FullName != "Alex Alumni" {
			t.Fatalf("profile not sent in data: %+v", body.Data)
		}
		w.Write([]byte(`{"id":"u2","email":"a@example.com","user_metadata":{"full_name":"Alex Alumni","role":"alumni"}}`))
	})
	sess, err := pending.SignUp(context.Background(), "a@example.com", "secret1", model.Profile{FullName: "Alex Alumni", Role: model.RoleAlumni})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if sess.AccessToken != "" || sess.User == nil || sess.User.ID != "u2" {
		t.Fatalf("expected user without tokens, got %+v", sess)
	}
}

func TestSetSessionFallsBackToRefresh(t *testing.T) {
	var refreshed bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/user":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"JWT expired"}`))
		case r.URL.Path == "/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			refreshed = true
			w.Write([]byte(`{"access_token":"at2","refresh_token":"rt2","expires_in":60,"user":{"id":"u1","email":"s@example.com"}}`))
		default:
			t.Fatalf("unexpected request %s", r.URL)
		}
	})

	sess, err := client.SetSession(context.Background(), "stale", "rt1")
	if err != nil {
		t.Fatalf("set session: %v", err)
	}
	if !refreshed || sess.AccessToken != "at2" {
		t.Fatalf("expected refreshed session, got %+v", sess)
	}
}

func TestTransportFailureIsServiceUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second)
	err := client.SendPasswordReset(context.Background(), "s@example.com")
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
