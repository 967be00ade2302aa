package alarms

import (
	"strconv"
	"strings"
	"time"
)

// Entry is one decoded alarm. Either all four fields are set, or none is
// (a placeholder kept for a malformed element).
type Entry struct {
	Code    *int64  `json:"code" msgpack:"code"`
	Message *string `json:"message" msgpack:"message"`
	PLCUnit *int64  `json:"plc_unit" msgpack:"plc_unit"`
	Line    *int64  `json:"line" msgpack:"line"`
}

// IsPlaceholder reports whether the entry stands in for a malformed element.
func (e Entry) IsPlaceholder() bool {
	return e.Code == nil || e.Message == nil || e.PLCUnit == nil || e.Line == nil
}

// Encode renders the entry back into the list literal form it was decoded from.
func (e Entry) Encode() string {
	if e.IsPlaceholder() {
		return "[None, None, None, None]"
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strconv.FormatInt(*e.Code, 10))
	b.WriteString(", ")
	b.WriteString(strconv.Quote(*e.Message))
	b.WriteString(", ")
	b.WriteString(strconv.FormatInt(*e.PLCUnit, 10))
	b.WriteString(", ")
	b.WriteString(strconv.FormatInt(*e.Line, 10))
	b.WriteByte(']')
	return b.String()
}

// Record is a decoded alarm stamped with the time of its snapshot.
type Record struct {
	Entry
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// SummaryRow counts occurrences of one (code, message) pair.
type SummaryRow struct {
	Code        int64  `json:"code" msgpack:"code"`
	Message     string `json:"message" msgpack:"message"`
	Occurrences int    `json:"occurrences" msgpack:"occurrences"`
}

// TimelinePoint places one alarm on the category axis.
type TimelinePoint struct {
	Timestamp  time.Time `json:"timestamp" msgpack:"timestamp"`
	CategoryID int       `json:"category_id" msgpack:"category_id"`
	Code       int64     `json:"code" msgpack:"code"`
	Message    string    `json:"message" msgpack:"message"`
}

// HourCount is the number of alarms raised within one hour.
type HourCount struct {
	Hour  time.Time `json:"hour" msgpack:"hour"`
	Count int       `json:"count" msgpack:"count"`
}
