package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveSave(t *testing.T) {
	before := testutil.ToFloat64(saves.WithLabelValues("debounce", "error"))
	ObserveSave("debounce", time.Millisecond, errors.New("boom"))
	require.Equal(t, before+1, testutil.ToFloat64(saves.WithLabelValues("debounce", "error")))
}

func TestObserveSnapshot(t *testing.T) {
	created := testutil.ToFloat64(versions.WithLabelValues("created"))
	dup := testutil.ToFloat64(versions.WithLabelValues("duplicate"))
	ObserveSnapshot(true, nil)
	ObserveSnapshot(false, nil)
	require.Equal(t, created+1, testutil.ToFloat64(versions.WithLabelValues("created")))
	require.Equal(t, dup+1, testutil.ToFloat64(versions.WithLabelValues("duplicate")))
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState("persist", 2)
	require.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("persist")))
}
