package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize bounds the multipart body of an upload.
const maxUploadSize = 32 << 20

type AttendanceHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	ListDates(w http.ResponseWriter, r *http.Request)
	GetDailyReport(w http.ResponseWriter, r *http.Request)
	GetRangeSummary(w http.ResponseWriter, r *http.Request)
	ExportRecords(w http.ResponseWriter, r *http.Request)
	ExportDailySummary(w http.ResponseWriter, r *http.Request)
	ExportRangeSummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// parseUpload reads the date field and the file and od_file parts. The
// returned func closes the opened parts.
func parseUpload(w http.ResponseWriter, r *http.Request) (attendance.UploadRequest, func(), bool) {
	var req attendance.UploadRequest
	cleanup := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return req, cleanup, false
	}

	req.Date = strings.TrimSpace(r.FormValue("date"))

	file, fileHeader, err := r.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return req, cleanup, false
	}
	if file != nil {
		req.File = file
		req.Filename = fileHeader.Filename
	}

	odFile, odHeader, err := r.FormFile("od_file")
	if err != nil && err != http.ErrMissingFile {
		if file != nil {
			file.Close()
		}
		slog.Error("Failed to get OD file from form", "error", err)
		response.BadRequest(w, "Invalid OD file upload", nil)
		return req, cleanup, false
	}
	if odFile != nil {
		req.ODFile = odFile
		req.ODFilename = odHeader.Filename
	}

	cleanup = func() {
		if file != nil {
			file.Close()
		}
		if odFile != nil {
			odFile.Close()
		}
	}
	return req, cleanup, true
}

// Preview implements AttendanceHandler.
func (h *attendanceHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := parseUpload(w, r)
	defer cleanup()
	if !ok {
		return
	}

	result, err := h.attendanceService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Save implements AttendanceHandler.
func (h *attendanceHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := parseUpload(w, r)
	defer cleanup()
	if !ok {
		return
	}

	result, err := h.attendanceService.SaveSnapshot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance saved successfully", result)
}

// ListDates implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.attendanceService.ListSnapshotDates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, dates, len(dates))
}

// recordFilter reads department, search and a comma separated status list.
func recordFilter(r *http.Request) attendance.RecordFilter {
	q := r.URL.Query()
	filter := attendance.RecordFilter{
		Department: q.Get("department"),
		Search:     q.Get("search"),
	}
	for _, values := range q["status"] {
		for _, status := range strings.Split(values, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	return filter
}

func rangeRequest(r *http.Request) attendance.RangeRequest {
	return attendance.RangeRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
}

// GetDailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	filter := recordFilter(r)
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.attendanceService.GetDailyReport(r.Context(), chi.URLParam(r, "date"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// GetRangeSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetRangeSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendanceService.GetRangeSummary(r.Context(), rangeRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// ExportRecords implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportRecords(w http.ResponseWriter, r *http.Request) {
	export, err := h.attendanceService.ExportRecords(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.Content)
}

// ExportDailySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportDailySummary(w http.ResponseWriter, r *http.Request) {
	export, err := h.attendanceService.ExportDailySummary(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.Content)
}

// ExportRangeSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportRangeSummary(w http.ResponseWriter, r *http.Request) {
	export, err := h.attendanceService.ExportRangeSummary(r.Context(), rangeRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.Content)
}
