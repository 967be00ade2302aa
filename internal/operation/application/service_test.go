package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	telemetry "machine-insights/internal/telemetry/domain"
	"machine-insights/internal/telemetry/infrastructure/memory"
)

var testVariables = Variables{MachineInOperation: 597, RecentRun: 890, Zones: []int64{806, 884, 798, 877}}

func TestDayTimeline(t *testing.T) {
	reader := memory.NewLogReader()
	day := time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC)
	reader.AddFloat(597, day.Add(6*time.Hour), telemetry.Float(0))
	reader.AddFloat(597, day.Add(7*time.Hour), telemetry.Float(1))
	reader.AddFloat(597, day.Add(8*time.Hour), telemetry.Float(1))
	reader.AddFloat(597, day.Add(12*time.Hour), nil)

	service, err := NewService(reader, testVariables)
	require.NoError(t, err)

	window := telemetry.NewDayWindow(day, time.UTC)
	timeline, err := service.DayTimeline(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, timeline.Intervals, 3)
	assert.Equal(t, "IDLE", timeline.Intervals[0].State.String())
	assert.True(t, timeline.Intervals[2].End.Equal(window.DayEnd))
	assert.Equal(t, 5*3600.0, timeline.Totals["ON"])
	assert.Equal(t, 3600.0, timeline.Totals["IDLE"])
	assert.InDelta(t, 5.0/(18-1.0/3600), timeline.Utilization, 1e-9)
}

func TestDayTimelineNoData(t *testing.T) {
	service, err := NewService(memory.NewLogReader(), testVariables)
	require.NoError(t, err)
	_, err = service.DayTimeline(context.Background(), telemetry.NewDayWindow(time.Now(), time.UTC))
	assert.True(t, telemetry.IsMissingVariable(err))
}

func TestActiveZones(t *testing.T) {
	reader := memory.NewLogReader()
	now := time.Date(2021, 1, 12, 10, 0, 0, 0, time.UTC)
	reader.AddFloat(806, now, telemetry.Float(0))
	reader.AddFloat(806, now.Add(time.Minute), telemetry.Float(1))
	reader.AddFloat(884, now, telemetry.Float(1))
	reader.AddFloat(884, now.Add(time.Minute), telemetry.Float(0))
	reader.AddFloat(798, now, telemetry.Float(-2))

	service, err := NewService(reader, testVariables)
	require.NoError(t, err)
	zones, err := service.ActiveZones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, zones)
}

func TestRecentRuns(t *testing.T) {
	reader := memory.NewLogReader()
	now := time.Date(2021, 1, 12, 10, 0, 0, 0, time.UTC)
	reader.AddString(890, now, telemetry.String("O1000"))
	reader.AddString(890, now.Add(time.Hour), telemetry.String("O2000"))

	service, err := NewService(reader, testVariables)
	require.NoError(t, err)

	run, err := service.RecentRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "O2000", run.Value)

	runs, err := service.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	empty, err := NewService(memory.NewLogReader(), testVariables)
	require.NoError(t, err)
	_, err = empty.RecentRun(context.Background())
	assert.True(t, telemetry.IsMissingVariable(err))
}
