package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	window, err := ParseDay("2021-01-12", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2021, 1, 13, 0, 0, 0, 0, time.UTC), window.End)
	assert.Equal(t, time.Date(2021, 1, 12, 23, 59, 59, 0, time.UTC), window.DayEnd)
	assert.Equal(t, "2021-01-12", window.Label())

	other, err := ParseDay("2021-01-12 17:45:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, window, other)
}

func TestParseDayInLocation(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	window, err := ParseDay("2021-03-28", madrid)
	require.NoError(t, err)
	assert.Equal(t, 23.0, window.Hours())
	assert.Equal(t, "2021-03-27T23:00:00Z", window.Start.UTC().Format(time.RFC3339))
}

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = ParseDay("not a day", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDay)
}
