package export

import (
	"fmt"
	"time"
)

// Dataset defines tabular export content shared by the CSV and PDF renderers.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Filename builds a timestamped export filename such as
// "ncc_attendance_report_2026-08-31.csv".
func Filename(prefix, extension string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("2006-01-02"), extension)
}
