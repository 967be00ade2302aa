package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	telemetry "machine-insights/internal/telemetry/domain"
	"machine-insights/internal/telemetry/infrastructure/memory"
)

const alarmVar int64 = 447

func TestAnalyzeDay(t *testing.T) {
	reader := memory.NewLogReader()
	day := time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC)
	reader.AddString(alarmVar, day.Add(8*time.Hour), telemetry.String(`[[101, "Door open", 1, 3], [205, "Low oil", 2, 7]]`))
	reader.AddString(alarmVar, day.Add(8*time.Hour+30*time.Minute), telemetry.String(`[[101, "Door open", 1, 3]]`))
	reader.AddString(alarmVar, day.Add(9*time.Hour), telemetry.String(`[[101, "Door open"`))
	reader.AddString(alarmVar, day.Add(10*time.Hour), telemetry.String(`[]`))
	reader.AddString(alarmVar, day.Add(26*time.Hour), telemetry.String(`[[999, "Tomorrow", 1, 1]]`))

	service, err := NewService(reader, alarmVar, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	report, err := service.AnalyzeDay(context.Background(), telemetry.NewDayWindow(day, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2021-01-12", report.Day)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Summary, 2)
	assert.Equal(t, int64(101), report.Summary[0].Code)
	assert.Equal(t, 2, report.Summary[0].Occurrences)
	assert.Equal(t, []string{"Door open", "Low oil"}, report.Categories)
	assert.Len(t, report.Points, 3)
	require.Len(t, report.Hourly, 24)
	assert.Equal(t, 3, report.Hourly[8].Count)
}

func TestAnalyzeDayMissing(t *testing.T) {
	service, err := NewService(memory.NewLogReader(), alarmVar)
	require.NoError(t, err)

	_, err = service.AnalyzeDay(context.Background(), telemetry.NewDayWindow(time.Now(), time.UTC))
	assert.True(t, telemetry.IsMissingVariable(err))
}

func TestAnalyzeDayStoreError(t *testing.T) {
	reader := memory.NewLogReader()
	reader.FailWith(errors.New("connection refused"))
	service, err := NewService(reader, alarmVar)
	require.NoError(t, err)

	_, err = service.AnalyzeDay(context.Background(), telemetry.NewDayWindow(time.Now(), time.UTC))
	require.Error(t, err)
	assert.False(t, telemetry.IsMissingVariable(err))
}

func TestLatest(t *testing.T) {
	reader := memory.NewLogReader()
	base := time.Date(2021, 1, 12, 8, 0, 0, 0, time.UTC)
	reader.AddString(alarmVar, base, telemetry.String(`[[101, "Door open", 1, 3]]`))
	reader.AddString(alarmVar, base.Add(time.Minute), telemetry.String(`[oops`))
	reader.AddString(alarmVar, base.Add(2*time.Minute), nil)

	service, err := NewService(reader, alarmVar)
	require.NoError(t, err)

	latest, err := service.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.Empty(t, latest[0].Alarms)
	assert.NotEmpty(t, latest[1].Error)
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(nil, alarmVar)
	assert.Error(t, err)
	_, err = NewService(memory.NewLogReader(), 0)
	assert.Error(t, err)
}
