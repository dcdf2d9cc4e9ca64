package attendance

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DayLayout is the calendar-day key every date is normalized to
const DayLayout = "2006-01-02"

// ClockLayout is the canonical clock time stored for entries and exits
const ClockLayout = "15:04:05"

// Month-first layouts are tried before day-first ones, matching how the
// spreadsheets were historically parsed.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
}

var clockLayouts = []string{
	ClockLayout,
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
	"2006-1-2 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// NormalizeDate reduces a date-like value to its calendar day (YYYY-MM-DD).
// It reports false when the value cannot be read as a date.
func NormalizeDate(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	// Excel serial day numbers, as exported by some sheet tools.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format(DayLayout), true
			}
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DayLayout), true
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DayLayout), true
		}
	}
	return "", false
}

// NormalizeClock reduces a clock value to HH:MM:SS. Values that cannot be
// read as a time of day come back empty.
func NormalizeClock(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	// Excel stores times of day as a fraction of 24h.
	if frac, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(frac) || frac < 0 || frac >= 1 {
			return ""
		}
		secs := int(math.Round(frac * 86400))
		if secs >= 86400 {
			secs = 86399
		}
		return time.Date(0, 1, 1, 0, 0, secs, 0, time.UTC).Format(ClockLayout)
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return t.Format(ClockLayout)
		}
	}
	return ""
}

// NormalizeID trims an identifier and drops the ".0" suffix left behind when
// a numeric cell was read as a float.
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if strings.HasSuffix(id, ".0") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(id, ".0"), 10, 64); err == nil {
			id = strings.TrimSuffix(id, ".0")
		}
	}
	return id
}

// Today returns the calendar-day key for now in loc
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DayLayout)
}
