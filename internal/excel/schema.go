package excel

import (
	"fmt"
	"strconv"
	"strings"

	"asistencia-backend/internal/models"
)

// Header names as they appear in the workbook. Matching ignores case and
// treats underscores as spaces, so "NOMBRE TECNICO" and "NOMBRE_TECNICO" are
// the same column.
const (
	HeaderCedula      = "CEDULA"
	HeaderNombre      = "NOMBRE_TECNICO"
	HeaderSupervisor  = "SUPERVISOR"
	HeaderCargo       = "CARGO"
	HeaderCiudad      = "CIUDAD"
	HeaderFecha       = "FECHA"
	HeaderHoraEntrada = "HORA_ENTRADA"
	HeaderHoraSalida  = "HORA_SALIDA"
	HeaderObservacion = "OBSERVACION"
)

// AttendanceHeaders is the header row written when the attendance sheet is created
var AttendanceHeaders = []string{
	HeaderCedula, HeaderNombre, HeaderSupervisor, HeaderFecha,
	HeaderHoraEntrada, HeaderHoraSalida, HeaderObservacion,
}

// RosterHeaders is the column order of a roster sheet
var RosterHeaders = []string{HeaderCedula, HeaderNombre, HeaderSupervisor, HeaderCargo, HeaderCiudad}

var (
	rosterRequired     = []string{HeaderCedula, HeaderNombre}
	attendanceRequired = []string{HeaderCedula, HeaderFecha, HeaderHoraEntrada, HeaderHoraSalida}
)

// SchemaError reports required headers missing from a sheet
type SchemaError struct {
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheet %s is missing required columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
}

// Columns maps a normalized header name to its zero-based column index
type Columns map[string]int

// MapColumns reads a header row and checks that every required header is present
func MapColumns(sheet string, header []string, required []string) (Columns, error) {
	cols := make(Columns, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	var missing []string
	for _, r := range required {
		if _, ok := cols[normalizeHeader(r)]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Sheet: sheet, Missing: missing}
	}
	return cols, nil
}

// Index returns the column index for a header, -1 when absent
func (c Columns) Index(header string) int {
	if i, ok := c[normalizeHeader(header)]; ok {
		return i
	}
	return -1
}

// Value reads a trimmed cell from row by header name
func (c Columns) Value(row []string, header string) string {
	return cellValue(row, c.Index(header))
}

// Width is one past the highest mapped column
func (c Columns) Width() int {
	w := 0
	for _, i := range c {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// MapAttendanceColumns validates an attendance header row
func MapAttendanceColumns(sheet string, header []string) (Columns, error) {
	return MapColumns(sheet, header, attendanceRequired)
}

// ParseRoster turns a roster sheet (header row first) into technicians.
// Rows with neither cedula nor name are skipped.
func ParseRoster(sheet string, rows [][]string) ([]models.Technician, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Sheet: sheet, Missing: rosterRequired}
	}
	cols, err := MapColumns(sheet, rows[0], rosterRequired)
	if err != nil {
		return nil, err
	}

	roster := make([]models.Technician, 0, len(rows)-1)
	for _, row := range rows[1:] {
		t := models.Technician{
			Cedula:     cols.Value(row, HeaderCedula),
			Nombre:     cols.Value(row, HeaderNombre),
			Supervisor: cols.Value(row, HeaderSupervisor),
			Cargo:      cols.Value(row, HeaderCargo),
			Ciudad:     cols.Value(row, HeaderCiudad),
		}
		if t.Cedula == "" && t.Nombre == "" {
			continue
		}
		roster = append(roster, t)
	}
	return roster, nil
}

// ParseAttendance turns an attendance sheet into records. RowID is the
// 1-based sheet row number, which is what targeted writes address.
func ParseAttendance(sheet string, rows [][]string) ([]models.AttendanceRecord, Columns, error) {
	if len(rows) == 0 {
		return nil, nil, &SchemaError{Sheet: sheet, Missing: attendanceRequired}
	}
	cols, err := MapColumns(sheet, rows[0], attendanceRequired)
	if err != nil {
		return nil, nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := models.AttendanceRecord{
			RowID:       strconv.Itoa(i + 2),
			Cedula:      cols.Value(row, HeaderCedula),
			Nombre:      cols.Value(row, HeaderNombre),
			Supervisor:  cols.Value(row, HeaderSupervisor),
			Fecha:       cols.Value(row, HeaderFecha),
			HoraEntrada: cols.Value(row, HeaderHoraEntrada),
			HoraSalida:  cols.Value(row, HeaderHoraSalida),
			Observacion: cols.Value(row, HeaderObservacion),
		}
		if rec.Cedula == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, cols, nil
}

// RecordCells lays a record out in the column order described by cols
func RecordCells(cols Columns, rec models.AttendanceRecord) []string {
	cells := make([]string, cols.Width())
	set := func(header, v string) {
		if i := cols.Index(header); i >= 0 {
			cells[i] = v
		}
	}
	set(HeaderCedula, rec.Cedula)
	set(HeaderNombre, rec.Nombre)
	set(HeaderSupervisor, rec.Supervisor)
	set(HeaderFecha, rec.Fecha)
	set(HeaderHoraEntrada, rec.HoraEntrada)
	set(HeaderHoraSalida, rec.HoraSalida)
	set(HeaderObservacion, rec.Observacion)
	return cells
}

// FieldHeader returns the header a time field is stored under
func FieldHeader(field models.TimeField) (string, error) {
	switch field {
	case models.FieldEntrada:
		return HeaderHoraEntrada, nil
	case models.FieldSalida:
		return HeaderHoraSalida, nil
	}
	return "", fmt.Errorf("unknown time field %q", field)
}

func normalizeHeader(header string) string {
	h := strings.ToUpper(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
