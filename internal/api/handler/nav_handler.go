package handler

import (
	"net/http"

	"alumni_connect/internal/app/nav"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"

	"github.com/go-chi/chi/v5"
)

type NavHandler struct{}

func NewNavHandler() *NavHandler {
	return &NavHandler{}
}

func (h *NavHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.header)
	r.Get("/dashboard", h.dashboard)
}

func (h *NavHandler) header(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, nav.HeaderFor(session.CurrentUser(r.Context())))
}

// dashboard always answers 200; a missing user or unknown role yields navigate=false.
func (h *NavHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, nav.Dashboard(session.CurrentUser(r.Context())))
}
