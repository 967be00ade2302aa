package resample

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	telemetry "machine-insights/internal/telemetry/domain"
)

var day = time.Date(2021, time.January, 12, 0, 0, 0, 0, time.UTC)

func sample(id int64, offset time.Duration, value *float64) telemetry.Sample {
	return telemetry.Sample{VariableID: id, Timestamp: day.Add(offset), Value: value}
}

func TestResampleMeanAndMax(t *testing.T) {
	samples := []telemetry.Sample{
		sample(449, 5*time.Minute, telemetry.Float(40)),
		sample(449, 10*time.Minute, telemetry.Float(44)),
		sample(449, 20*time.Minute, nil),
		sample(449, 35*time.Minute, telemetry.Float(50)),
		sample(449, 95*time.Minute, telemetry.Float(48)),
	}

	buckets, err := Resample(samples, 30*time.Minute, []Stat{StatMean, StatMax})
	require.NoError(t, err)
	require.Len(t, buckets, 4)

	assert.True(t, buckets[0].Start.Equal(day))
	assert.InDelta(t, 42, *buckets[0].Mean, 1e-9)
	assert.InDelta(t, 44, *buckets[0].Max, 1e-9)
	assert.Equal(t, 2, buckets[0].Count)

	assert.InDelta(t, 50, *buckets[1].Mean, 1e-9)

	assert.True(t, buckets[2].Start.Equal(day.Add(time.Hour)))
	assert.Nil(t, buckets[2].Mean)
	assert.Nil(t, buckets[2].Max)
	assert.Equal(t, 0, buckets[2].Count)

	assert.InDelta(t, 48, *buckets[3].Max, 1e-9)
}

func TestResampleAlignsToFirstSample(t *testing.T) {
	samples := []telemetry.Sample{
		sample(1, 7*time.Hour+12*time.Minute, telemetry.Float(1)),
		sample(1, 8*time.Hour+1*time.Minute, telemetry.Float(3)),
	}
	buckets, err := Resample(samples, time.Hour, []Stat{StatMean})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.True(t, buckets[0].Start.Equal(day.Add(7*time.Hour)))
	assert.Nil(t, buckets[0].Max)

	padded, err := Resample(samples, time.Hour, []Stat{StatMean}, Options{Origin: day})
	require.NoError(t, err)
	require.Len(t, padded, 9)
	assert.True(t, padded[0].Start.Equal(day))
	assert.Nil(t, padded[0].Mean)
	assert.InDelta(t, 1, *padded[7].Mean, 1e-9)
}

func TestResampleWideBucketIsPlainMean(t *testing.T) {
	samples := []telemetry.Sample{
		sample(1, time.Minute, telemetry.Float(1)),
		sample(1, 2*time.Minute, telemetry.Float(math.NaN())),
		sample(1, 3*time.Minute, telemetry.Float(2)),
		sample(1, 4*time.Minute, nil),
		sample(1, 5*time.Minute, telemetry.Float(6)),
	}
	buckets, err := Resample(samples, 48*time.Hour, []Stat{StatMean, StatMax})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.InDelta(t, 3, *buckets[0].Mean, 1e-9)
	assert.InDelta(t, 6, *buckets[0].Max, 1e-9)
}

func TestResampleInvalid(t *testing.T) {
	_, err := Resample([]telemetry.Sample{sample(1, 0, telemetry.Float(1))}, 0, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrInvalidWidth)

	buckets, err := Resample(nil, time.Minute, []Stat{StatMean})
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestResampleRejectsTooManyBuckets(t *testing.T) {
	samples := []telemetry.Sample{
		sample(449, 0, telemetry.Float(1)),
		sample(449, 23*time.Hour, telemetry.Float(2)),
	}
	_, err := Resample(samples, time.Nanosecond, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrTooManyBuckets)

	_, err = Resample(samples, time.Millisecond, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrTooManyBuckets)

	_, err = ResampleByVariable(samples, time.Nanosecond, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrTooManyBuckets)

	buckets, err := Resample(samples, 23*time.Hour/(MaxBuckets-1), []Stat{StatMean})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(buckets), MaxBuckets)
}

func TestResampleRejectsReversedInput(t *testing.T) {
	samples := []telemetry.Sample{
		sample(449, 23*time.Hour, telemetry.Float(2)),
		sample(449, 0, telemetry.Float(1)),
	}
	_, err := Resample(samples, 30*time.Minute, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = ResampleByVariable(samples, 30*time.Minute, []Stat{StatMean})
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestResampleByVariableKeepsSeriesApart(t *testing.T) {
	samples := []telemetry.Sample{
		sample(449, time.Minute, telemetry.Float(10)),
		sample(453, 2*time.Minute, telemetry.Float(100)),
		sample(449, 3*time.Minute, telemetry.Float(20)),
	}
	result, err := ResampleByVariable(samples, 30*time.Minute, []Stat{StatMean})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.InDelta(t, 15, *result[449][0].Mean, 1e-9)
	assert.InDelta(t, 100, *result[453][0].Mean, 1e-9)
}

func TestStepEnergy(t *testing.T) {
	samples := []telemetry.Sample{
		sample(630, 0, telemetry.Float(50)),
		sample(630, 30*time.Minute, telemetry.Float(100)),
		sample(630, 90*time.Minute, nil),
		sample(630, 2*time.Hour, telemetry.Float(10)),
	}
	result := StepEnergy(samples, 37)
	require.Len(t, result.Segments, 4)

	assert.InDelta(t, 18.5, result.Segments[0].PowerKW, 1e-9)
	assert.InDelta(t, 9.25, result.Segments[0].EnergyKWh, 1e-9)
	assert.InDelta(t, 37, result.Segments[1].EnergyKWh, 1e-9)
	assert.InDelta(t, 0, result.Segments[2].EnergyKWh, 1e-9)
	assert.True(t, result.Segments[3].End.Equal(result.Segments[3].Start))
	assert.InDelta(t, 46.25, result.TotalKWh, 1e-9)
}

func TestHourlyMeanPower(t *testing.T) {
	samples := []telemetry.Sample{
		sample(630, 0, telemetry.Float(50)),
		sample(630, 30*time.Minute, telemetry.Float(100)),
		sample(630, 70*time.Minute, telemetry.Float(0)),
	}
	buckets, err := HourlyMeanPower(samples, 37)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.InDelta(t, 27.75, *buckets[0].Mean, 1e-9)
	assert.InDelta(t, 0, *buckets[1].Mean, 1e-9)
	assert.InDelta(t, 18.5, PowerKW(50, 37), 1e-9)
}
