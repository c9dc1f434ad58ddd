package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/staff-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type SubmissionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	MyDashboard(w http.ResponseWriter, r *http.Request)
	UserDashboard(w http.ResponseWriter, r *http.Request)
	ListUserSummaries(w http.ResponseWriter, r *http.Request)
	ExportByDate(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)
}

type submissionHandlerImpl struct {
	submissionService attendance.SubmissionService
}

func NewSubmissionHandler(submissionService attendance.SubmissionService) SubmissionHandler {
	return &submissionHandlerImpl{
		submissionService: submissionService,
	}
}

// Submit implements SubmissionHandler.
func (h *submissionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmissionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.submissionService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance submitted successfully", result)
}

// MyDashboard implements SubmissionHandler.
func (h *submissionHandlerImpl) MyDashboard(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	dashboard, err := h.submissionService.GetDashboard(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, dashboard)
}

// UserDashboard implements SubmissionHandler.
func (h *submissionHandlerImpl) UserDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.submissionService.GetDashboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, dashboard)
}

// ListUserSummaries implements SubmissionHandler.
func (h *submissionHandlerImpl) ListUserSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.submissionService.ListUserSummaries(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, summaries, len(summaries))
}

// ExportByDate implements SubmissionHandler.
func (h *submissionHandlerImpl) ExportByDate(w http.ResponseWriter, r *http.Request) {
	export, err := h.submissionService.ExportByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.Content)
}

// ListTypes implements SubmissionHandler.
func (h *submissionHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]map[string]interface{}, 0, len(attendance.SubmissionTypes))
	for _, t := range attendance.SubmissionTypes {
		types = append(types, map[string]interface{}{
			"name":            t,
			"requires_reason": attendance.RequiresReason(t),
		})
	}
	response.Success(w, types)
}
