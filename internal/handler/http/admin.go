package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/handler/http/response"
)

type AdminHandler interface {
	Reset(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	resetService attendance.ResetService
}

func NewAdminHandler(resetService attendance.ResetService) AdminHandler {
	return &adminHandlerImpl{
		resetService: resetService,
	}
}

// Reset implements AdminHandler.
func (h *adminHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResetRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.resetService.Reset(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All attendance data has been reset", nil)
}
