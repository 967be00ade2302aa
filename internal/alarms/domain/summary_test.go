package alarms

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(at time.Time, code int64, message string) Record {
	plc, line := int64(1), int64(1)
	return Record{
		Entry:     Entry{Code: &code, Message: &message, PLCUnit: &plc, Line: &line},
		Timestamp: at,
	}
}

func sampleRecords() []Record {
	base := time.Date(2020, time.December, 29, 0, 0, 0, 0, time.UTC)
	return []Record{
		record(base.Add(10*time.Minute), 50332149, "EMERGENCIA EXTERNA"),
		record(base.Add(10*time.Minute), 50332205, "Puerta abierta"),
		record(base.Add(70*time.Minute), 50332149, "EMERGENCIA EXTERNA"),
		record(base.Add(75*time.Minute), 50332149, "emergencia externa"),
		{Timestamp: base.Add(80 * time.Minute)},
		record(base.Add(5*time.Hour), 50332149, "EMERGENCIA EXTERNA"),
	}
}

func TestSummarizeCountsAndOrders(t *testing.T) {
	rows := Summarize(sampleRecords())
	require.Len(t, rows, 3)

	assert.Equal(t, SummaryRow{Code: 50332149, Message: "EMERGENCIA EXTERNA", Occurrences: 3}, rows[0])
	// ties keep first-seen order; pair identity is case-sensitive
	assert.Equal(t, SummaryRow{Code: 50332205, Message: "Puerta abierta", Occurrences: 1}, rows[1])
	assert.Equal(t, SummaryRow{Code: 50332149, Message: "emergencia externa", Occurrences: 1}, rows[2])
	assert.Equal(t, 5, TotalOccurrences(rows))
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Empty(t, Summarize([]Record{{}}))
}

func TestSummarizeOrderIndependent(t *testing.T) {
	records := sampleRecords()
	want := Summarize(records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.ElementsMatch(t, want, Summarize(shuffled))
	}
}

func TestCategorizeForTimelineIsSorted(t *testing.T) {
	records := sampleRecords()
	ids := CategorizeForTimeline(records)
	assert.Equal(t, map[string]int{
		"EMERGENCIA EXTERNA": 0,
		"Puerta abierta":     1,
		"emergencia externa": 2,
	}, ids)

	reversed := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		reversed = append(reversed, records[i])
	}
	assert.Equal(t, ids, CategorizeForTimeline(reversed))
}

func TestTimelineSkipsPlaceholders(t *testing.T) {
	categories, points := Timeline(sampleRecords())
	assert.Equal(t, []string{"EMERGENCIA EXTERNA", "Puerta abierta", "emergencia externa"}, categories)
	ids := CategorizeForTimeline(sampleRecords())
	for id, message := range categories {
		assert.Equal(t, id, ids[message])
	}
	require.Len(t, points, 5)
	assert.Equal(t, 0, points[0].CategoryID)
	assert.Equal(t, 1, points[1].CategoryID)
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].Timestamp.Before(points[i-1].Timestamp))
	}
}

func TestHourlyCounts(t *testing.T) {
	start := time.Date(2020, time.December, 29, 0, 0, 0, 0, time.UTC)
	counts := HourlyCounts(sampleRecords(), start, start.Add(24*time.Hour))
	require.Len(t, counts, 24)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, 1, counts[5].Count)
	assert.Equal(t, 0, counts[23].Count)
	assert.True(t, counts[5].Hour.Equal(start.Add(5*time.Hour)))
}
