package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	telemetry "machine-insights/internal/telemetry/domain"
)

const timeLayout = time.RFC3339

// WriteRawCSV dumps raw log rows with an id_var, real_date, value header.
func WriteRawCSV(w io.Writer, rows []telemetry.RawRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id_var", "real_date", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			strconv.FormatInt(row.VariableID, 10),
			row.At.UTC().Format(timeLayout),
			rawValue(row),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func rawValue(row telemetry.RawRow) string {
	switch {
	case row.Numeric != nil:
		return formatFloat(*row.Numeric)
	case row.Text != nil:
		return *row.Text
	default:
		return ""
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
