package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSnapshot(t *testing.T) {
	before := testutil.ToFloat64(ProgressComputed.WithLabelValues("api"))
	alertBefore := testutil.ToFloat64(ProgressAlerts.WithLabelValues("Sessions exhausted"))

	ObserveSnapshot("api", []string{"Sessions exhausted"})
	ObserveSnapshot("api", nil)

	assert.Equal(t, before+2, testutil.ToFloat64(ProgressComputed.WithLabelValues("api")))
	assert.Equal(t, alertBefore+1, testutil.ToFloat64(ProgressAlerts.WithLabelValues("Sessions exhausted")))
}
