package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"alumni_connect/internal/api/middleware"
	"alumni_connect/internal/app/service"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type JobHandler struct {
	jobService *service.JobService
}

func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listJobs)
	r.Get("/{jobSlug}", h.getJob)
	r.With(middleware.RequireRole(model.RoleAdmin, model.RoleAlumni)).Post("/", h.createJob)
}

func (h *JobHandler) createJob(w http.ResponseWriter, r *http.Request) {
	var req service.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	job, err := h.jobService.CreateJob(r.Context(), session.CurrentUser(r.Context()).ID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, job)
}

func (h *JobHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	jobType := model.JobType(r.URL.Query().Get("type"))

	resp, err := h.jobService.ListJobs(r.Context(), page, pageSize, jobType, r.URL.Query().Get("q"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *JobHandler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetJob(r.Context(), chi.URLParam(r, "jobSlug"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}

// ListAlumni serves the alumni directory.
func (h *JobHandler) ListAlumni(w http.ResponseWriter, r *http.Request) {
	alumni, err := h.jobService.ListAlumni(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, alumni)
}
