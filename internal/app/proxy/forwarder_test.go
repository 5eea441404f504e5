package proxy

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHandleMentorshipForwardsOnce(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("unexpected body %q", body)
		}
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("svc:s3cret"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":{"sys_id":"abc"}}`))
	}))
	defer upstream.Close()

	f := NewForwarder(upstream.URL, "svc", "s3cret", 5*time.Second)
	rec := httptest.NewRecorder()
	f.HandleMentorship(rec, httptest.NewRequest(http.MethodPost, "/mentorship", strings.NewReader(`{"a":1}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `{"result":{"sys_id":"abc"}}` {
		t.Fatalf("body not relayed: %s", rec.Body.String())
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one upstream call, got %d", n)
	}
}

func TestHandleMentorshipRelaysUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"User Not Authorized"}}`))
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	NewForwarder(upstream.URL, "u", "p", time.Second).
		HandleMentorship(rec, httptest.NewRequest(http.MethodPost, "/mentorship", strings.NewReader(`{}`)))
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "User Not Authorized") {
		t.Fatalf("unexpected relay %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandleMentorshipFailures(t *testing.T) {
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer html.Close()

	for name, url := range map[string]string{
		"unreachable": "http://127.0.0.1:1/api/now/table/u_mentorship_requests",
		"non-json":    html.URL,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewForwarder(url, "u", "p", time.Second).
				HandleMentorship(rec, httptest.NewRequest(http.MethodPost, "/mentorship", strings.NewReader(`{"a":1}`)))
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d", rec.Code)
			}
			if strings.TrimSpace(rec.Body.String()) != `{"error":"Proxy failure"}` {
				t.Fatalf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestHandleMentorshipRejectsMalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	NewForwarder("http://127.0.0.1:1", "u", "p", time.Second).
		HandleMentorship(rec, httptest.NewRequest(http.MethodPost, "/mentorship", strings.NewReader(`{"a":`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
