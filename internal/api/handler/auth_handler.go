package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/app/reset"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"

	"github.com/go-chi/chi/v5"
)

const msgResetSent = "Password reset email sent! Please check your inbox."

type AuthHandler struct {
	resetRedirectDelay time.Duration
}

func NewAuthHandler(resetRedirectDelay time.Duration) *AuthHandler {
	return &AuthHandler{resetRedirectDelay: resetRedirectDelay}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/signin", h.signin)
	r.Post("/signout", h.signout)
	r.Post("/password/forgot", h.forgotPassword)
	r.Get("/password/reset", h.checkResetLink)
	r.Post("/password/reset", h.resetPassword)
	r.Post("/token/refresh", h.refresh)
	r.Get("/session", h.currentSession)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req forms.SignUp
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess, err := session.FromContext(r.Context()).SignUp(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req forms.SignIn
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess, err := session.FromContext(r.Context()).SignIn(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) signout(w http.ResponseWriter, r *http.Request) {
	if err := session.FromContext(r.Context()).SignOut(r.Context()); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Signed out"})
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forms.ForgotPassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := session.FromContext(r.Context()).ResetPassword(r.Context(), req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: msgResetSent})
}

func (h *AuthHandler) newFlow(r *http.Request) *reset.Flow {
	return reset.NewFlow(session.FromContext(r.Context()).Identity(), h.resetRedirectDelay)
}

// checkResetLink only exchanges the link tokens.
func (h *AuthHandler) checkResetLink(w http.ResponseWriter, r *http.Request) {
	snap := h.newFlow(r).Begin(r.Context(), r.URL.Query())
	common.RespondWithJSON(w, resetStatus(snap), snap)
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req forms.NewPassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	flow := h.newFlow(r)
	if snap := flow.Begin(r.Context(), r.URL.Query()); snap.State == reset.Failed {
		common.RespondWithJSON(w, resetStatus(snap), snap)
		return
	}
	snap := flow.Submit(r.Context(), req)
	common.RespondWithJSON(w, resetStatus(snap), snap)
}

func resetStatus(snap reset.Snapshot) int {
	switch {
	case snap.State == reset.Failed:
		return http.StatusUnauthorized
	case snap.Error != "":
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess, err := session.FromContext(r.Context()).Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) currentSession(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, session.FromContext(r.Context()).View())
}
