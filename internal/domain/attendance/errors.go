package attendance

import "errors"

// Attendance domain errors
var (
	// Upload errors
	ErrNoRecognizableTable = errors.New("no recognizable attendance table found in file")
	ErrOverrideSchema      = errors.New("override file must have identifier and status columns")
	ErrUnsupportedFile     = errors.New("unsupported file type: only xlsx, xls, csv allowed")
	ErrEmptyWorksheet      = errors.New("worksheet is empty")
	ErrNoWorksheet         = errors.New("no worksheet found")

	// Query errors
	ErrSnapshotNotFound = errors.New("no attendance data recorded for this date")
	ErrInvalidDateRange = errors.New("start date must be before or equal to end date")

	// Submission errors
	ErrReasonRequired = errors.New("a reason is required for this attendance type")
)
