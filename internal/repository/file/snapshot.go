// Package file stores attendance data as flat files in a directory: one
// erp_<date>.csv per snapshot, an optional od_<date>.csv beside it, users.json,
// and one attendance_<date>.csv per day of form submissions.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/sheet"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
)

var snapshotFileRegex = regexp.MustCompile(`^(erp|od)_(\d{4}-\d{2}-\d{2})\.csv$`)

func erpFile(date time.Time) string { return "erp_" + date.Format("2006-01-02") + ".csv" }
func odFile(date time.Time) string  { return "od_" + date.Format("2006-01-02") + ".csv" }

type snapshotRepositoryImpl struct {
	storage storage.FileStorage
}

func NewSnapshotRepository(fs storage.FileStorage) attendance.SnapshotRepository {
	return &snapshotRepositoryImpl{storage: fs}
}

// readGrid returns nil, nil when the file does not exist.
func readGrid(ctx context.Context, fs storage.FileStorage, path string) (sheet.Grid, error) {
	rc, err := fs.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()

	grid, err := sheet.Read(rc, path)
	if err != nil {
		if errors.Is(err, sheet.ErrEmptyWorksheet) {
			return sheet.Grid{}, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return grid, nil
}

func writeGrid(ctx context.Context, fs storage.FileStorage, path string, header []string, rows [][]string) error {
	content, err := sheet.WriteCSV(header, rows)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := fs.Put(ctx, path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// previousContent returns the current bytes of path, or nil when the file
// does not exist.
func previousContent(ctx context.Context, fs storage.FileStorage, path string) ([]byte, error) {
	exists, err := fs.Exists(ctx, path)
	if err != nil || !exists {
		return nil, err
	}
	rc, err := fs.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// restore puts back the content captured by previousContent.
func restore(ctx context.Context, fs storage.FileStorage, path string, content []byte) error {
	if content == nil {
		return fs.Delete(ctx, path)
	}
	return fs.Put(ctx, path, bytes.NewReader(content))
}

// Save implements attendance.SnapshotRepository. The override file is written
// first; if the record file then fails, the previous override file is put back
// so the stored pair stays consistent.
func (r *snapshotRepositoryImpl) Save(ctx context.Context, date time.Time, snapshot attendance.Snapshot) error {
	date = normalize.DateOf(date)

	prevOD, err := previousContent(ctx, r.storage, odFile(date))
	if err != nil {
		return fmt.Errorf("failed to read current override file: %w", err)
	}

	if len(snapshot.Overrides) > 0 {
		rows := make([][]string, 0, len(snapshot.Overrides))
		for _, o := range snapshot.Overrides {
			rows = append(rows, o.Values())
		}
		if err := writeGrid(ctx, r.storage, odFile(date), attendance.OverrideHeader, rows); err != nil {
			return err
		}
	} else if err := r.storage.Delete(ctx, odFile(date)); err != nil {
		return fmt.Errorf("failed to remove stale override file: %w", err)
	}

	rows := make([][]string, 0, len(snapshot.Records))
	for _, rec := range snapshot.Records {
		rows = append(rows, rec.PersistValues())
	}
	if err := writeGrid(ctx, r.storage, erpFile(date), attendance.PersistHeader, rows); err != nil {
		if restoreErr := restore(ctx, r.storage, odFile(date), prevOD); restoreErr != nil {
			return errors.Join(err, fmt.Errorf("failed to restore override file: %w", restoreErr))
		}
		return err
	}
	return nil
}

// Load implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Load(ctx context.Context, date time.Time) (*attendance.Snapshot, error) {
	date = normalize.DateOf(date)

	grid, err := readGrid(ctx, r.storage, erpFile(date))
	if err != nil {
		return nil, err
	}
	if grid == nil {
		return nil, nil
	}

	snapshot := &attendance.Snapshot{Date: date}
	if len(grid) > 0 {
		cols := attendance.MapColumns(grid[0])
		for _, row := range grid[1:] {
			rec := attendance.RecordFromRow(cols, row)
			if normalize.IsPlaceholderID(rec.PersonID) {
				continue
			}
			if rec.Date == nil {
				d := date
				rec.Date = &d
			}
			snapshot.Records = append(snapshot.Records, rec)
		}
	}

	odGrid, err := readGrid(ctx, r.storage, odFile(date))
	if err != nil {
		return nil, err
	}
	if len(odGrid) > 0 {
		cols := attendance.MapColumns(odGrid[0])
		for _, row := range odGrid[1:] {
			o := attendance.Override{
				PersonID: normalize.Identifier(cols.Value(row, attendance.FieldPersonID)),
				Name:     normalize.Name(cols.Value(row, attendance.FieldName)),
				Date:     normalize.Date(cols.Value(row, attendance.FieldDate)),
				Status:   normalize.Status(cols.Value(row, attendance.FieldStatus)),
			}
			if o.Date == nil {
				d := date
				o.Date = &d
			}
			snapshot.Overrides = append(snapshot.Overrides, o)
		}
	}

	return snapshot, nil
}

// ListDates implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) ListDates(ctx context.Context) ([]time.Time, error) {
	names, err := r.storage.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	for _, name := range names {
		m := snapshotFileRegex.FindStringSubmatch(name)
		if m == nil || m[1] != "erp" {
			continue
		}
		d, err := time.Parse("2006-01-02", m[2])
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// DeleteAll implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) DeleteAll(ctx context.Context) error {
	return deleteMatching(ctx, r.storage, snapshotFileRegex)
}

func deleteMatching(ctx context.Context, fs storage.FileStorage, pattern *regexp.Regexp) error {
	names, err := fs.List(ctx, "")
	if err != nil {
		return err
	}
	for _, name := range names {
		if !pattern.MatchString(name) {
			continue
		}
		if err := fs.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// readAll is a small helper for JSON documents kept in storage.
func readAll(ctx context.Context, fs storage.FileStorage, path string) ([]byte, error) {
	rc, err := fs.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return data, nil
}
