package handler

import (
	"net/http"

	"alumni_connect/internal/api/middleware"
	"alumni_connect/internal/app/service"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(model.RoleStudent)).Get("/student", h.student)
	r.With(middleware.RequireRole(model.RoleAlumni)).Get("/alumni", h.alumni)
	r.With(middleware.RequireRole(model.RoleAdmin)).Get("/admin", h.admin)
}

func (h *DashboardHandler) student(w http.ResponseWriter, r *http.Request) {
	tab := service.StudentTab(r.URL.Query().Get("tab"))
	resp, err := h.dashboardService.Student(r.Context(), session.CurrentUser(r.Context()), tab)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *DashboardHandler) alumni(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboardService.Alumni(r.Context(), session.CurrentUser(r.Context()))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *DashboardHandler) admin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboardService.Admin(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
