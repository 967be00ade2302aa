package alarms

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

type summaryKey struct {
	code    int64
	message string
}

// Summarize counts records per exact (code, message) pair, most frequent first.
// Records without code or message are ignored. Ties keep first-seen order.
func Summarize(records []Record) []SummaryRow {
	counts := make(map[summaryKey]int)
	order := make([]summaryKey, 0)
	for _, record := range records {
		if record.Code == nil || record.Message == nil {
			continue
		}
		k := summaryKey{code: *record.Code, message: *record.Message}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	rows := lo.Map(order, func(k summaryKey, _ int) SummaryRow {
		return SummaryRow{Code: k.code, Message: k.message, Occurrences: counts[k]}
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Occurrences > rows[j].Occurrences })
	return rows
}

// TotalOccurrences sums the counts of a summary.
func TotalOccurrences(rows []SummaryRow) int {
	return lo.SumBy(rows, func(row SummaryRow) int { return row.Occurrences })
}

// Categories returns the distinct messages in lexicographic order. The index of a
// message is its category id.
func Categories(records []Record) []string {
	messages := lo.FilterMap(records, func(record Record, _ int) (string, bool) {
		if record.Message == nil {
			return "", false
		}
		return *record.Message, true
	})
	messages = lo.Uniq(messages)
	sort.Strings(messages)
	return messages
}

// CategorizeForTimeline assigns a dense id to each distinct message, in sorted order,
// so the same messages always get the same ids regardless of arrival order.
func CategorizeForTimeline(records []Record) map[string]int {
	categories := Categories(records)
	ids := make(map[string]int, len(categories))
	for i, message := range categories {
		ids[message] = i
	}
	return ids
}

// Timeline places every complete record on its category axis, ordered by time.
func Timeline(records []Record) ([]string, []TimelinePoint) {
	ids := CategorizeForTimeline(records)
	categories := make([]string, len(ids))
	for message, id := range ids {
		categories[id] = message
	}

	points := make([]TimelinePoint, 0, len(records))
	for _, record := range records {
		if record.IsPlaceholder() {
			continue
		}
		points = append(points, TimelinePoint{
			Timestamp:  record.Timestamp,
			CategoryID: ids[*record.Message],
			Code:       *record.Code,
			Message:    *record.Message,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Timestamp.Equal(points[j].Timestamp) {
			return points[i].Timestamp.Before(points[j].Timestamp)
		}
		return points[i].CategoryID < points[j].CategoryID
	})
	return categories, points
}

// HourlyCounts counts complete records per hour of [start, end). Every hour of the
// window is present, empty hours with a zero count.
func HourlyCounts(records []Record, start, end time.Time) []HourCount {
	if !end.After(start) {
		return nil
	}
	hours := int(end.Sub(start) / time.Hour)
	if end.Sub(start)%time.Hour != 0 {
		hours++
	}
	counts := make([]HourCount, hours)
	for i := range counts {
		counts[i].Hour = start.Add(time.Duration(i) * time.Hour)
	}
	for _, record := range records {
		if record.IsPlaceholder() || record.Timestamp.Before(start) || !record.Timestamp.Before(end) {
			continue
		}
		counts[int(record.Timestamp.Sub(start)/time.Hour)].Count++
	}
	return counts
}
