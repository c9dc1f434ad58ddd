// Package cli holds the attendancectl commands. Each command runs against the
// attendance service bound in Context.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
)

type Context struct {
	Ctx        context.Context
	Attendance attendance.AttendanceService
	Out        io.Writer
	Now        func() time.Time
}

// App is the root command line of attendancectl.
type App struct {
	Version  kong.VersionFlag
	Store    string `help:"Snapshot store: a directory, or a SQLite file ending in .db." default:"./data" env:"STORAGE_PATH"`
	Verbose  bool   `help:"Log debug output to stderr." short:"v"`
	Start    string `help:"Workday start (HH:MM)." default:"09:00" env:"WORKDAY_START"`
	Duration int    `help:"Workday length in minutes." default:"360" env:"WORKDAY_DURATION_MINUTES"`

	Extract ExtractCmd `cmd:"" help:"Parse an upload and print the reconciled records without saving."`
	Save    SaveCmd    `cmd:"" help:"Parse an upload and store it as the snapshot of its date."`
	Dates   DatesCmd   `cmd:"" help:"List stored snapshot dates."`
	Report  ReportCmd  `cmd:"" help:"Show the stored records of one day."`
	Summary SummaryCmd `cmd:"" help:"Summarize stored days in a date range."`
}

// resolveDate accepts YYYY-MM-DD or 'today'.
func (c *Context) resolveDate(value string) (string, error) {
	if strings.EqualFold(value, "today") {
		return c.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return value, nil
}

// upload opens the attendance file and the optional OD file. The returned func
// closes both.
func upload(date, path, odPath string) (attendance.UploadRequest, func(), error) {
	req := attendance.UploadRequest{Date: date, Filename: path}
	f, err := os.Open(path)
	if err != nil {
		return req, func() {}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	req.File = f

	if odPath == "" {
		return req, func() { f.Close() }, nil
	}
	od, err := os.Open(odPath)
	if err != nil {
		f.Close()
		return req, func() {}, fmt.Errorf("failed to open %s: %w", odPath, err)
	}
	req.ODFile = od
	req.ODFilename = odPath
	return req, func() {
		f.Close()
		od.Close()
	}, nil
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func recordTable(records []attendance.RecordResponse) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.PersonID,
			r.Name,
			r.Department,
			r.Status,
			r.InTime,
			optional(r.DelayMinutes),
			optional(r.TotalDurationMin),
			r.Remarks,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DEPARTMENT", "STATUS", "IN", "DELAY", "DURATION", "REMARKS").
		Rows(rows...).
		String()
}

func metricsLine(m attendance.Metrics) string {
	return fmt.Sprintf("staff %d  present %d  absent %d  od %d  late %d  permission %d",
		m.StaffShown, m.Present, m.Absent, m.OD, m.Late, m.WithPermission)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type ExtractCmd struct {
	File   string `arg:"" help:"Attendance workbook (.xlsx, .xls or .csv)." type:"existingfile"`
	OD     string `help:"OD override workbook." name:"od" type:"existingfile"`
	Date   string `help:"Attendance date (YYYY-MM-DD or 'today')." default:"today"`
	Format string `help:"Output format." enum:"table,json" default:"table"`
}

func (c *ExtractCmd) Run(ctx *Context) error {
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}
	req, closeFiles, err := upload(date, c.File, c.OD)
	if err != nil {
		return err
	}
	defer closeFiles()

	result, err := ctx.Attendance.Preview(ctx.Ctx, req)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		return writeJSON(ctx.Out, result)
	}
	fmt.Fprintln(ctx.Out, recordTable(result.Records))
	fmt.Fprintln(ctx.Out, metricsLine(result.Metrics))
	fmt.Fprintf(ctx.Out, "overrides applied %d\n", result.OverridesApplied)
	return nil
}

type SaveCmd struct {
	File string `arg:"" help:"Attendance workbook (.xlsx, .xls or .csv)." type:"existingfile"`
	OD   string `help:"OD override workbook." name:"od" type:"existingfile"`
	Date string `help:"Attendance date (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *SaveCmd) Run(ctx *Context) error {
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}
	req, closeFiles, err := upload(date, c.File, c.OD)
	if err != nil {
		return err
	}
	defer closeFiles()

	saved, err := ctx.Attendance.SaveSnapshot(ctx.Ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Saved %s: %d records, %d overrides\n", saved.Date, saved.Records, saved.Overrides)
	return nil
}

type DatesCmd struct{}

func (c *DatesCmd) Run(ctx *Context) error {
	dates, err := ctx.Attendance.ListSnapshotDates(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		fmt.Fprintln(ctx.Out, "No snapshots stored.")
		return nil
	}
	for _, d := range dates {
		fmt.Fprintln(ctx.Out, d)
	}
	return nil
}

type ReportCmd struct {
	Date       string   `arg:"" optional:"" help:"Snapshot date (YYYY-MM-DD or 'today')." default:"today"`
	Department string   `help:"Only this department."`
	Search     string   `help:"Match identifier or name."`
	Status     []string `help:"Only these statuses." sep:","`
	Export     string   `help:"Write the day's records as CSV to this path instead." type:"path"`
	Format     string   `help:"Output format." enum:"table,json" default:"table"`
}

func (c *ReportCmd) Run(ctx *Context) error {
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	if c.Export != "" {
		export, err := ctx.Attendance.ExportRecords(ctx.Ctx, date)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.Export, export.Content, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(ctx.Out, "Wrote %s\n", c.Export)
		return nil
	}

	report, err := ctx.Attendance.GetDailyReport(ctx.Ctx, date, attendance.RecordFilter{
		Department: c.Department,
		Search:     c.Search,
		Statuses:   c.Status,
	})
	if err != nil {
		return err
	}

	if c.Format == "json" {
		return writeJSON(ctx.Out, report)
	}
	fmt.Fprintln(ctx.Out, recordTable(report.Records))
	fmt.Fprintln(ctx.Out, metricsLine(report.Metrics))
	return nil
}

type SummaryCmd struct {
	From   string `help:"First day (YYYY-MM-DD)." required:""`
	To     string `help:"Last day (YYYY-MM-DD or 'today')." default:"today"`
	Export string `help:"Write the summary as CSV to this path instead." type:"path"`
}

func (c *SummaryCmd) Run(ctx *Context) error {
	to, err := ctx.resolveDate(c.To)
	if err != nil {
		return err
	}
	req := attendance.RangeRequest{From: c.From, To: to}

	if c.Export != "" {
		export, err := ctx.Attendance.ExportRangeSummary(ctx.Ctx, req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.Export, export.Content, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(ctx.Out, "Wrote %s\n", c.Export)
		return nil
	}

	summary, err := ctx.Attendance.GetRangeSummary(ctx.Ctx, req)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(summary.People))
	for _, p := range summary.People {
		rows = append(rows, []string{
			p.PersonID,
			p.Name,
			p.Department,
			fmt.Sprintf("%d", p.AttendedDays),
			fmt.Sprintf("%.1f%%", p.AttendanceRate),
			fmt.Sprintf("%d", p.CurrentStreak),
			fmt.Sprintf("%d", p.LongestStreak),
		})
	}
	fmt.Fprintln(ctx.Out, table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DEPARTMENT", "ATTENDED", "RATE", "STREAK", "BEST").
		Rows(rows...).
		String())
	fmt.Fprintf(ctx.Out, "%d days from %s to %s\n", summary.TotalDays, req.From, req.To)
	return nil
}
