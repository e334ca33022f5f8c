package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(MigrationRecords.WithLabelValues("person"))
	MigrationRecords.WithLabelValues("person").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MigrationRecords.WithLabelValues("person")))

	before = testutil.ToFloat64(CacheLoadFailures.WithLabelValues("people_v2"))
	CacheLoadFailures.WithLabelValues("people_v2").Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(CacheLoadFailures.WithLabelValues("people_v2")))
}
