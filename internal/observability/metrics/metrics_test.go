package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestObserversAreSafeBeforeInit(t *testing.T) {
	if httpRequests != nil {
		t.Skip("metrics already registered")
	}
	assert.NotPanics(t, func() {
		ObserveHTTP("/x", 200, time.Millisecond)
		ObserveStoreQuery("float", nil, time.Millisecond)
		IncStoreRetry("float")
		IncAlarmDecodeFailure(2)
		ObserveAnalysis("alarms", "", time.Millisecond)
	})
}

func TestCountersAfterInit(t *testing.T) {
	Init(nil, zerolog.Nop())
	Init(nil, zerolog.Nop())

	ObserveStoreQuery("string", errors.New("boom"), time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(storeQueries.WithLabelValues("string", ResultError)))

	before := testutil.ToFloat64(alarmDecodeFailures)
	IncAlarmDecodeFailure(3)
	IncAlarmDecodeFailure(0)
	assert.Equal(t, before+3, testutil.ToFloat64(alarmDecodeFailures))

	ObserveAnalysis("energy", ResultNoData, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(analysisTotal.WithLabelValues("energy", ResultNoData)))
}
