package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"
	"alumni_connect/internal/platform/metrics"
	"alumni_connect/internal/platform/queue"
)

const (
	msgReferralTransport = "Failed to send referral request."
	msgReferralFallback  = "Something went wrong"
)

// ReferralService posts referral requests to the referral backend.
type ReferralService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	alumniRepo repository.AlumniRepository
	locker     *queue.Locker
}

func NewReferralService(baseURL, token string, httpClient *http.Client, alumniRepo repository.AlumniRepository, locker *queue.Locker) *ReferralService {
	return &ReferralService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		alumniRepo: alumniRepo,
		locker:     locker,
	}
}

type ReferralResult struct {
	Message  string                 `json:"message"`
	Referral *model.ReferralRequest `json:"referral"`
}

func (s *ReferralService) Request(ctx context.Context, user *model.User, form forms.Referral) (*ReferralResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	alumni, err := s.alumniRepo.FindAlumniByID(ctx, form.AlumniID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Invalid("Selected alumni was not found")
		}
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, "inflight:referral:"+user.ID+":"+alumni.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	referral := &model.ReferralRequest{
		StudentName:    user.DisplayName(),
		AlumniAssigned: alumni.Name,
		JobRole:        alumni.ReferredJobRole,
		ResumeLink:     form.ResumeLink,
		ProfileURL:     form.ProfileURL,
		Status:         model.ReferralPending,
	}
	if err := s.post(ctx, referral); err != nil {
		return nil, err
	}
	return &ReferralResult{
		Message:  fmt.Sprintf("Referral request sent to %s successfully!", alumni.Name),
		Referral: referral,
	}, nil
}

func (s *ReferralService) post(ctx context.Context, referral *model.ReferralRequest) error {
	payload, err := json.Marshal(referral)
	if err != nil {
		return fmt.Errorf("marshal referral: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/referrals", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build referral request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	metrics.OutboundRequests.WithLabelValues("referral_api", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Printf("ERROR: referral API unreachable: %v", err)
		return &common.UpstreamError{Message: msgReferralTransport}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := msgReferralFallback
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	log.Printf("WARN: referral API answered %d: %s", resp.StatusCode, msg)
	return &common.UpstreamError{Message: msg}
}
