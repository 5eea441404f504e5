package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

var testStudent = &model.User{ID: "u1", Email: "sam@example.com", FullName: strPtr("Sam Student"), Role: model.RoleStudent}

func TestMentorshipSubmitBuildsTicket(t *testing.T) {
	var got model.MentorshipRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":{"number":"MR0001"}}`))
	}))
	defer upstream.Close()

	svc := NewMentorshipService(upstream.URL, upstream.Client(), newTestLocker(t))
	res, err := svc.Submit(context.Background(), testStudent, forms.Mentorship{
		StudentName: "Sam Student", AlumniName: "Venkat Polisetti", Topic: "Career Guidance", PreferredDate: "2026-11-02",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != http.StatusCreated || string(res.Body) != `{"result":{"number":"MR0001"}}` {
		t.Fatalf("unexpected result %d %s", res.Status, res.Body)
	}
	want := model.MentorshipRequest{StudentName: "Sam Student", AlumniName: "Venkat Polisetti", Topic: "Career Guidance",
		RequestedDate: "2026-11-02", ConfirmedDate: "2026-11-02"}
	if got != want {
		t.Fatalf("ticket = %+v, want %+v", got, want)
	}
}

func TestMentorshipNonJSONAnswerIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer upstream.Close()

	svc := NewMentorshipService(upstream.URL, upstream.Client(), newTestLocker(t))
	_, err := svc.Submit(context.Background(), testStudent, forms.Mentorship{
		StudentName: "Sam", AlumniName: "Venkat", Topic: "Resume", PreferredDate: "2026-11-02",
	})
	if common.HTTPStatusFromError(err) != http.StatusBadGateway || common.PublicMessage(err) != msgMentorshipFailed {
		t.Fatalf("expected 502 %q, got %v", msgMentorshipFailed, err)
	}
}

func TestMentorshipSubmitGuards(t *testing.T) {
	locker := newTestLocker(t)
	svc := NewMentorshipService("http://127.0.0.1:1/mentorship", &http.Client{Timeout: time.Second}, locker)
	valid := forms.Mentorship{StudentName: "Sam", AlumniName: "Venkat", Topic: "Resume", PreferredDate: "2026-11-02"}

	if _, err := svc.Submit(context.Background(), testStudent, forms.Mentorship{}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	release, err := locker.Acquire(context.Background(), "inflight:mentorship:"+testStudent.ID)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := svc.Submit(context.Background(), testStudent, valid); !errors.Is(err, common.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	release()

	_, err = svc.Submit(context.Background(), testStudent, valid)
	if !errors.Is(err, common.ErrUpstream) || common.PublicMessage(err) != msgMentorshipFailed {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestReferralRequest(t *testing.T) {
	var got model.ReferralRequest
	var auth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/referrals" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"r1"}`))
	}))
	defer upstream.Close()

	svc := NewReferralService(upstream.URL+"/", "ref-token", upstream.Client(), seededAlumni(), newTestLocker(t))
	res, err := svc.Request(context.Background(), testStudent, forms.Referral{
		AlumniID: "al-2", ResumeLink: "https://drive.example.com/cv", ProfileURL: "https://linkedin.example.com/sam",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Message != "Referral request sent to Venkat Polisetti successfully!" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if auth != "Bearer ref-token" {
		t.Fatalf("unexpected Authorization %q", auth)
	}
	want := model.ReferralRequest{StudentName: "Sam Student", AlumniAssigned: "Venkat Polisetti",
		JobRole: "ServiceNow Technical Support Engineer Intern", ResumeLink: "https://drive.example.com/cv",
		ProfileURL: "https://linkedin.example.com/sam", Status: model.ReferralPending}
	if got != want {
		t.Fatalf("referral = %+v, want %+v", got, want)
	}
}

func TestReferralUpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Alumni has reached the referral limit"}`, "Alumni has reached the referral limit"},
		{"no error field", `{"detail":"nope"}`, msgReferralFallback},
		{"not json", `oops`, msgReferralFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}))
			defer upstream.Close()

			svc := NewReferralService(upstream.URL, "", upstream.Client(), seededAlumni(), newTestLocker(t))
			_, err := svc.Request(context.Background(), testStudent, forms.Referral{AlumniID: "al-1", ResumeLink: "r", ProfileURL: "p"})
			if !errors.Is(err, common.ErrUpstream) || common.PublicMessage(err) != tc.want {
				t.Fatalf("got %v (%q), want %q", err, common.PublicMessage(err), tc.want)
			}
		})
	}
}

func TestReferralTransportAndUnknownAlumni(t *testing.T) {
	svc := NewReferralService("http://127.0.0.1:1", "", &http.Client{Timeout: time.Second}, seededAlumni(), newTestLocker(t))
	_, err := svc.Request(context.Background(), testStudent, forms.Referral{AlumniID: "al-1", ResumeLink: "r", ProfileURL: "p"})
	if common.PublicMessage(err) != msgReferralTransport || common.HTTPStatusFromError(err) != http.StatusBadGateway {
		t.Fatalf("unexpected transport error %v", err)
	}

	_, err = svc.Request(context.Background(), testStudent, forms.Referral{AlumniID: "missing", ResumeLink: "r", ProfileURL: "p"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for unknown alumni, got %v", err)
	}
}
