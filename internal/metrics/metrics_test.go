package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jask/machineconfig/internal/session"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		LookupRequestsTotal,
		LookupDuration,
		ItemsLoaded,
		ConfigurationsCompleted,
		StaleResponsesDropped,
	}
	for _, c := range collectors {
		require.NotNil(t, c)
	}
}

func TestRecordLookup(t *testing.T) {
	okBefore := testutil.ToFloat64(LookupRequestsTotal.WithLabelValues("metrics-test", StatusOK))
	errBefore := testutil.ToFloat64(LookupRequestsTotal.WithLabelValues("metrics-test", StatusError))

	RecordLookup("metrics-test", 20*time.Millisecond, nil)
	RecordLookup("metrics-test", 30*time.Millisecond, errors.New("boom"))
	RecordLookup("metrics-test", 10*time.Millisecond, nil)

	require.Equal(t, okBefore+2, testutil.ToFloat64(LookupRequestsTotal.WithLabelValues("metrics-test", StatusOK)))
	require.Equal(t, errBefore+1, testutil.ToFloat64(LookupRequestsTotal.WithLabelValues("metrics-test", StatusError)))
}

func TestObserveCountsCompletions(t *testing.T) {
	catalog, err := session.NewCatalog([]string{"metrics-kw"}, nil, "")
	require.NoError(t, err)
	s := session.New(catalog)
	Observe(s)

	before := testutil.ToFloat64(ConfigurationsCompleted.WithLabelValues("metrics-kw"))

	id, err := s.SelectMachine("metrics-kw")
	require.NoError(t, err)
	require.NoError(t, s.ApplyFetch(id, []session.ConfigurableItem{{Text: "A"}, {Text: "B"}, {Text: "C"}}))
	require.Equal(t, 3.0, testutil.ToFloat64(ItemsLoaded.WithLabelValues("metrics-kw")))

	s.SetProjectNumber("P1")
	require.NoError(t, s.ToggleItemSelection(0))
	_, err = s.CompleteConfiguration()
	require.NoError(t, err)

	require.Equal(t, before+1, testutil.ToFloat64(ConfigurationsCompleted.WithLabelValues("metrics-kw")))
}
