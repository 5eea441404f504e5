package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/platform/metrics"
	"alumni_connect/internal/platform/queue"
)

const msgMentorshipFailed = "Failed to submit mentorship request."

// MentorshipResult is the proxy answer relayed to the caller.
type MentorshipResult struct {
	Status int
	Body   []byte
}

// MentorshipService submits session requests through the credential proxy.
type MentorshipService struct {
	proxyURL   string
	httpClient *http.Client
	locker     *queue.Locker
}

func NewMentorshipService(proxyURL string, httpClient *http.Client, locker *queue.Locker) *MentorshipService {
	return &MentorshipService{proxyURL: proxyURL, httpClient: httpClient, locker: locker}
}

// Submit allows one outstanding request per user; a concurrent one fails with common.ErrInFlight.
func (s *MentorshipService) Submit(ctx context.Context, user *model.User, form forms.Mentorship) (*MentorshipResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, "inflight:mentorship:"+user.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	payload, err := json.Marshal(form.Ticket())
	if err != nil {
		return nil, fmt.Errorf("marshal mentorship ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.proxyURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build mentorship request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	metrics.OutboundRequests.WithLabelValues("mentorship_proxy", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Printf("ERROR: mentorship proxy unreachable: %v", err)
		return nil, &common.UpstreamError{Message: msgMentorshipFailed}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || !json.Valid(body) {
		log.Printf("ERROR: mentorship proxy returned unreadable body (status %d): %v", resp.StatusCode, err)
		return nil, &common.UpstreamError{Message: msgMentorshipFailed}
	}
	if resp.StatusCode >= 300 {
		log.Printf("WARN: mentorship proxy answered %d for user %s", resp.StatusCode, user.ID)
	}
	return &MentorshipResult{Status: resp.StatusCode, Body: body}, nil
}
