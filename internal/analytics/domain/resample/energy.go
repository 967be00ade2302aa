package resample

import (
	"time"

	telemetry "machine-insights/internal/telemetry/domain"
)

// PowerKW converts a percent-of-max load reading into power.
func PowerKW(percent, maxPowerKW float64) float64 {
	return percent / 100.0 * maxPowerKW
}

// Segment is one step of a step signal: the sample's power held until the next sample.
type Segment struct {
	Start     time.Time `json:"start" msgpack:"start"`
	End       time.Time `json:"end" msgpack:"end"`
	PowerKW   float64   `json:"power_kw" msgpack:"power_kw"`
	EnergyKWh float64   `json:"energy_kwh" msgpack:"energy_kwh"`
}

// EnergyResult is the step integral of a load signal.
type EnergyResult struct {
	Segments []Segment `json:"segments" msgpack:"segments"`
	TotalKWh float64   `json:"total_kwh" msgpack:"total_kwh"`
}

// StepEnergy integrates a percent-load signal as a step function: each sample holds
// its power until the next sample. The final sample has nothing after it and
// contributes a zero-length segment. Missing values carry no power.
func StepEnergy(samples []telemetry.Sample, maxPowerKW float64) EnergyResult {
	result := EnergyResult{Segments: make([]Segment, 0, len(samples))}
	for i, sample := range samples {
		end := sample.Timestamp
		if i+1 < len(samples) {
			end = samples[i+1].Timestamp
		}
		power := 0.0
		if sample.HasValue() {
			power = PowerKW(*sample.Value, maxPowerKW)
		}
		energy := power * end.Sub(sample.Timestamp).Hours()
		result.Segments = append(result.Segments, Segment{
			Start:     sample.Timestamp,
			End:       end,
			PowerKW:   power,
			EnergyKWh: energy,
		})
		result.TotalKWh += energy
	}
	return result
}

// PowerSamples derives power samples from percent-load samples. Missing values stay missing.
func PowerSamples(samples []telemetry.Sample, maxPowerKW float64) []telemetry.Sample {
	result := make([]telemetry.Sample, 0, len(samples))
	for _, sample := range samples {
		derived := sample
		if sample.HasValue() {
			derived.Value = telemetry.Float(PowerKW(*sample.Value, maxPowerKW))
		} else {
			derived.Value = nil
		}
		result = append(result, derived)
	}
	return result
}

// HourlyMeanPower averages derived power per hour.
func HourlyMeanPower(samples []telemetry.Sample, maxPowerKW float64, opts ...Options) ([]Bucket, error) {
	return Resample(PowerSamples(samples, maxPowerKW), time.Hour, []Stat{StatMean}, opts...)
}
