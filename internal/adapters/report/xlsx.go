// Package report exports sync reports as XLSX workbooks.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary   = "Summary"
	SheetErrors    = "Errors"
	SheetHierarchy = "Hierarchy"
)

var (
	summaryHeader   = []any{"Run ID", "User", "Company", "Table", "Inserted", "Updated", "Failed", "Started", "Finished", "Cancelled"}
	errorsHeader    = []any{"Run ID", "User", "Company", "Table", "GUID", "Kind", "Message"}
	hierarchyHeader = []any{"Run ID", "User", "Company", "Issue", "Kind", "Name", "Detail", "GUIDs"}
)

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) append(values []any) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

// Build renders reports into a workbook with a summary, an error and a
// hierarchy sheet.
func Build(reports []*domain.SyncReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetErrors, SheetHierarchy} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	summary := &sheetWriter{f: f, sheet: SheetSummary}
	errs := &sheetWriter{f: f, sheet: SheetErrors}
	hierarchy := &sheetWriter{f: f, sheet: SheetHierarchy}
	for _, w := range []struct {
		sw     *sheetWriter
		header []any
	}{{summary, summaryHeader}, {errs, errorsHeader}, {hierarchy, hierarchyHeader}} {
		if err := w.sw.append(w.header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, r := range reports {
		if r == nil {
			continue
		}
		if err := writeReport(r, summary, errs, hierarchy); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to export run %s: %w", r.RunID, err)
		}
	}
	return f, nil
}

func writeReport(r *domain.SyncReport, summary, errs, hierarchy *sheetWriter) error {
	prefix := []any{r.RunID, r.Tenant.UserID, r.Tenant.CompanyName}
	row := func(values ...any) []any {
		return append(append([]any{}, prefix...), values...)
	}

	for _, table := range r.Tables() {
		c := r.Counts[table]
		if err := summary.append(row(table, c.Inserted, c.Updated, c.Failed,
			r.StartedAt.Format(time.RFC3339), r.FinishedAt.Format(time.RFC3339), r.Cancelled)); err != nil {
			return err
		}
	}
	for _, e := range r.Errors {
		if err := errs.append(row(e.Table, e.GUID, e.Kind, e.Message)); err != nil {
			return err
		}
	}
	if r.Hierarchy == nil {
		return nil
	}
	for _, u := range r.Hierarchy.Unresolved {
		if err := hierarchy.append(row("unresolved_parent", string(u.Kind), u.Name, u.Parent, u.GUID)); err != nil {
			return err
		}
	}
	for _, c := range r.Hierarchy.Cycles {
		if err := hierarchy.append(row("cycle", string(c.Kind), strings.Join(c.Names, " > "), "", strings.Join(c.GUIDs, ","))); err != nil {
			return err
		}
	}
	for _, d := range r.Hierarchy.Duplicates {
		if err := hierarchy.append(row("duplicate_name", string(d.Kind), d.Name, "", strings.Join(d.GUIDs, ","))); err != nil {
			return err
		}
	}
	return nil
}

// Write streams the workbook for reports to w.
func Write(w io.Writer, reports []*domain.SyncReport) error {
	f, err := Build(reports)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Save writes the workbook for reports to path.
func Save(path string, reports []*domain.SyncReport) error {
	f, err := Build(reports)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
