package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"asistencia-backend/internal/excel"
	"asistencia-backend/internal/models"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var (
	// ErrNotAuthorized is returned until a credential has been attached to the store
	ErrNotAuthorized = errors.New("google sheets access not authorized")
	// ErrRowNotFound is returned when a write addresses an invalid row
	ErrRowNotFound = errors.New("attendance row not found")
)

// Store keeps the roster and attendance sheets in a Google spreadsheet.
// Row ids are 1-based sheet row numbers, re-read on every operation.
type Store struct {
	spreadsheetID   string
	rosterSheet     string
	attendanceSheet string

	mu  sync.RWMutex
	svc *gsheets.Service

	// writeMu serializes sheet creation and writes from this process
	writeMu sync.Mutex
}

func New(spreadsheetID, rosterSheet, attendanceSheet string) *Store {
	return &Store{spreadsheetID: spreadsheetID, rosterSheet: rosterSheet, attendanceSheet: attendanceSheet}
}

// Connect builds the Sheets client. It can be called again to swap credentials.
func (s *Store) Connect(ctx context.Context, opts ...option.ClientOption) error {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create sheets client: %w", err)
	}
	s.mu.Lock()
	s.svc = svc
	s.mu.Unlock()
	return nil
}

// ConnectServiceAccount authorizes the store with a service-account key file
func (s *Store) ConnectServiceAccount(ctx context.Context, credentialsFile string) error {
	return s.Connect(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
}

// Authorized reports whether a client is attached
func (s *Store) Authorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc != nil
}

func (s *Store) service() (*gsheets.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.svc == nil {
		return nil, ErrNotAuthorized
	}
	return s.svc, nil
}

func (s *Store) Roster(ctx context.Context) ([]models.Technician, error) {
	rows, err := s.readRange(ctx, a1(s.rosterSheet, "A:F"))
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.rosterSheet, err)
	}
	return excel.ParseRoster(s.rosterSheet, rows)
}

// Records returns every attendance row; a missing attendance sheet reads as empty
func (s *Store) Records(ctx context.Context, _ string) ([]models.AttendanceRecord, error) {
	if _, ok, err := s.sheetID(ctx, s.attendanceSheet); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	rows, err := s.readRange(ctx, a1(s.attendanceSheet, "A:G"))
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.attendanceSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records, _, err := excel.ParseAttendance(s.attendanceSheet, rows)
	return records, err
}

func (s *Store) Append(ctx context.Context, rec models.AttendanceRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	svc, err := s.service()
	if err != nil {
		return err
	}
	_, cols, err := s.ensureAttendanceSheet(ctx)
	if err != nil {
		return err
	}

	cells := excel.RecordCells(cols, rec)
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	_, err = svc.Spreadsheets.Values.Append(s.spreadsheetID, a1(s.attendanceSheet, "A:G"), &gsheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append attendance: %w", err)
	}
	return nil
}

// SetTime writes a single cell through a structured GridRange update
func (s *Store) SetTime(ctx context.Context, rowID string, field models.TimeField, value string) error {
	header, err := excel.FieldHeader(field)
	if err != nil {
		return err
	}
	row, err := parseRow(rowID)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sheetID, cols, err := s.ensureAttendanceSheet(ctx)
	if err != nil {
		return err
	}
	col := int64(cols.Index(header))

	req := &gsheets.Request{
		UpdateCells: &gsheets.UpdateCellsRequest{
			Range: &gsheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    row - 1,
				EndRowIndex:      row,
				StartColumnIndex: col,
				EndColumnIndex:   col + 1,
			},
			Rows: []*gsheets.RowData{{
				Values: []*gsheets.CellData{timeCell(value)},
			}},
			Fields: "userEnteredValue",
		},
	}
	if err := s.batchUpdate(ctx, req); err != nil {
		return fmt.Errorf("update %s: %w", header, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, rowID string) error {
	row, err := parseRow(rowID)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sheetID, ok, err := s.sheetID(ctx, s.attendanceSheet)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRowNotFound
	}

	req := &gsheets.Request{
		DeleteDimension: &gsheets.DeleteDimensionRequest{
			Range: &gsheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: row - 1,
				EndIndex:   row,
			},
		},
	}
	if err := s.batchUpdate(ctx, req); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	return nil
}

// ensureAttendanceSheet creates the attendance sheet and its header row when
// missing, and returns the sheet id with the validated column map.
func (s *Store) ensureAttendanceSheet(ctx context.Context) (int64, excel.Columns, error) {
	svc, err := s.service()
	if err != nil {
		return 0, nil, err
	}

	sheetID, ok, err := s.sheetID(ctx, s.attendanceSheet)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		resp, err := svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{Title: s.attendanceSheet},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return 0, nil, fmt.Errorf("create sheet %s: %w", s.attendanceSheet, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
			sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
	}

	rows, err := s.readRange(ctx, a1(s.attendanceSheet, "1:1"))
	if err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		header := make([]interface{}, len(excel.AttendanceHeaders))
		for i, h := range excel.AttendanceHeaders {
			header[i] = h
		}
		_, err := svc.Spreadsheets.Values.Update(s.spreadsheetID, a1(s.attendanceSheet, "A1"), &gsheets.ValueRange{
			Values: [][]interface{}{header},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return 0, nil, fmt.Errorf("write header: %w", err)
		}
		rows = [][]string{excel.AttendanceHeaders}
	}

	cols, err := excel.MapAttendanceColumns(s.attendanceSheet, rows[0])
	if err != nil {
		return 0, nil, err
	}
	return sheetID, cols, nil
}

func (s *Store) sheetID(ctx context.Context, title string) (int64, bool, error) {
	svc, err := s.service()
	if err != nil {
		return 0, false, err
	}
	ss, err := svc.Spreadsheets.Get(s.spreadsheetID).
		Fields(googleapi.Field("sheets.properties(sheetId,title)")).
		Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) readRange(ctx context.Context, rng string) ([][]string, error) {
	svc, err := s.service()
	if err != nil {
		return nil, err
	}
	// Unformatted reads give serial dates and day fractions instead of
	// locale-formatted display strings.
	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return stringRows(resp.Values), nil
}

func (s *Store) batchUpdate(ctx context.Context, reqs ...*gsheets.Request) error {
	svc, err := s.service()
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	return err
}

func stringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows
}

// cellString renders an unformatted cell value. Numbers keep their plain
// decimal form so ids and serial dates never come back in exponent notation.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// timeCell writes value as text; an empty value clears the cell
func timeCell(value string) *gsheets.CellData {
	if value == "" {
		return &gsheets.CellData{}
	}
	return &gsheets.CellData{UserEnteredValue: &gsheets.ExtendedValue{StringValue: &value}}
}

func parseRow(rowID string) (int64, error) {
	row, err := strconv.ParseInt(rowID, 10, 64)
	if err != nil || row < 2 {
		return 0, ErrRowNotFound
	}
	return row, nil
}

func a1(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", sheet, cells)
}
