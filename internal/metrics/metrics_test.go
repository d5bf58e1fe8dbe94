package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/reps", 200, time.Millisecond)
		m.ObserveUpstream("postcodes", "ok")
		m.ObserveLookup("UK", "ok", time.Second)
		m.ObserveSync("france", true, 3)
		m.ObserveLetter("gemini", "ok")
	})
}

func TestObserveSync(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSync("france", true, 577)
	m.ObserveSync("sweden", false, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("france", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("sweden", "failure")))
	assert.Equal(t, 577.0, testutil.ToFloat64(m.SyncDatasetRecords.WithLabelValues("france")))
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("/reps", 404, 10*time.Millisecond)
	m.ObserveHTTP("/reps", 404, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/reps", "404")))
}
