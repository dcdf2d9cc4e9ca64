package excel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"asistencia-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// ErrRowNotFound is returned when a write addresses a row past the end of the sheet
var ErrRowNotFound = errors.New("attendance row not found")

// Workbook stores the roster and attendance sheets in a single .xlsx file.
// Every call opens the file, works on it and saves it while holding mu, so
// the file on disk is the only state.
type Workbook struct {
	path            string
	rosterSheet     string
	attendanceSheet string

	mu sync.Mutex
}

func NewWorkbook(path, rosterSheet, attendanceSheet string) *Workbook {
	return &Workbook{path: path, rosterSheet: rosterSheet, attendanceSheet: attendanceSheet}
}

func (w *Workbook) Roster(ctx context.Context) ([]models.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(w.rosterSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", w.rosterSheet, err)
	}
	return ParseRoster(w.rosterSheet, rows)
}

// Records returns every attendance row in the workbook. A workbook without
// an attendance sheet has no records yet.
func (w *Workbook) Records(ctx context.Context, _ string) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(w.attendanceSheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(w.attendanceSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", w.attendanceSheet, err)
	}
	records, _, err := ParseAttendance(w.attendanceSheet, rows)
	return records, err
}

func (w *Workbook) Append(ctx context.Context, rec models.AttendanceRecord) error {
	return w.modify(ctx, func(f *excelize.File, rows [][]string, cols Columns) error {
		next := len(rows) + 1
		for i, v := range RecordCells(cols, rec) {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, next)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(w.attendanceSheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Workbook) SetTime(ctx context.Context, rowID string, field models.TimeField, value string) error {
	header, err := FieldHeader(field)
	if err != nil {
		return err
	}
	return w.modify(ctx, func(f *excelize.File, rows [][]string, cols Columns) error {
		row, err := w.rowNumber(rowID, rows)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(cols.Index(header)+1, row)
		if err != nil {
			return err
		}
		return f.SetCellStr(w.attendanceSheet, cell, value)
	})
}

func (w *Workbook) Delete(ctx context.Context, rowID string) error {
	return w.modify(ctx, func(f *excelize.File, rows [][]string, _ Columns) error {
		row, err := w.rowNumber(rowID, rows)
		if err != nil {
			return err
		}
		return f.RemoveRow(w.attendanceSheet, row)
	})
}

// modify opens the workbook, makes sure the attendance sheet exists with a
// valid header, applies fn and saves.
func (w *Workbook) modify(ctx context.Context, fn func(f *excelize.File, rows [][]string, cols Columns) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := w.ensureAttendanceSheet(f); err != nil {
		return err
	}

	rows, err := f.GetRows(w.attendanceSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", w.attendanceSheet, err)
	}
	_, cols, err := ParseAttendance(w.attendanceSheet, rows)
	if err != nil {
		return err
	}

	if err := fn(f, rows, cols); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) ensureAttendanceSheet(f *excelize.File) error {
	if idx, _ := f.GetSheetIndex(w.attendanceSheet); idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(w.attendanceSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", w.attendanceSheet, err)
	}
	header := make([]interface{}, len(AttendanceHeaders))
	for i, h := range AttendanceHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(w.attendanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (w *Workbook) rowNumber(rowID string, rows [][]string) (int, error) {
	row, err := strconv.Atoi(rowID)
	if err != nil || row < 2 || row > len(rows) {
		return 0, ErrRowNotFound
	}
	return row, nil
}

// CreateWorkbook writes a new workbook with a roster sheet and an empty
// attendance sheet. Used to bootstrap a deployment and in tests.
func CreateWorkbook(path, rosterSheet, attendanceSheet string, roster []models.Technician) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), rosterSheet); err != nil {
		return err
	}
	header := make([]interface{}, len(RosterHeaders))
	for i, h := range RosterHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(rosterSheet, "A1", &header); err != nil {
		return err
	}
	for i, t := range roster {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{t.Cedula, t.Nombre, t.Supervisor, t.Cargo, t.Ciudad}
		if err := f.SetSheetRow(rosterSheet, cell, &values); err != nil {
			return err
		}
	}

	wb := &Workbook{attendanceSheet: attendanceSheet}
	if err := wb.ensureAttendanceSheet(f); err != nil {
		return err
	}
	return f.SaveAs(path)
}
