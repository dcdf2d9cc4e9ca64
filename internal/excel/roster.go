package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"asistencia-backend/internal/models"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how far a legacy sheet is scanned
const maxXLSRows = 100000

// ReadRoster loads the named roster sheet from an .xlsx or legacy .xls file
func ReadRoster(path, sheet string) ([]models.Technician, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		rows, err = readXLSRows(path, sheet)
	default:
		rows, err = readXLSXRows(path, sheet)
	}
	if err != nil {
		return nil, err
	}
	return ParseRoster(sheet, rows)
}

func readXLSXRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", sheet)
	}
	return rows, nil
}

func readXLSRows(path, sheet string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	var ws *xls.WorkSheet
	for i := 0; i < workbook.NumSheets(); i++ {
		if s := workbook.GetSheet(i); s != nil && strings.EqualFold(strings.TrimSpace(s.Name), sheet) {
			ws = s
			break
		}
	}
	// Single-sheet exports rarely carry the expected name
	if ws == nil && workbook.NumSheets() == 1 {
		ws = workbook.GetSheet(0)
	}
	if ws == nil {
		return nil, fmt.Errorf("worksheet %s not found", sheet)
	}

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow) && i < maxXLSRows; i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", sheet)
	}
	return rows, nil
}
