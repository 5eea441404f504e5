package handler

import (
	"encoding/json"
	"net/http"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/app/service"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"

	"github.com/go-chi/chi/v5"
)

// StudentHandler serves the outbound requests a student can make.
type StudentHandler struct {
	mentorshipService *service.MentorshipService
	referralService   *service.ReferralService
}

func NewStudentHandler(mentorshipService *service.MentorshipService, referralService *service.ReferralService) *StudentHandler {
	return &StudentHandler{mentorshipService: mentorshipService, referralService: referralService}
}

func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/mentorship", h.requestMentorship)
	r.Post("/referrals", h.requestReferral)
}

// requestMentorship relays whatever the proxy answered, status included.
func (h *StudentHandler) requestMentorship(w http.ResponseWriter, r *http.Request) {
	var req forms.Mentorship
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := h.mentorshipService.Submit(r.Context(), session.CurrentUser(r.Context()), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithRawJSON(w, res.Status, res.Body)
}

func (h *StudentHandler) requestReferral(w http.ResponseWriter, r *http.Request) {
	var req forms.Referral
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	res, err := h.referralService.Request(r.Context(), session.CurrentUser(r.Context()), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, res)
}
