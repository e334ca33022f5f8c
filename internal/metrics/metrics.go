// Package metrics holds the prometheus counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocstoreOperations counts document store calls.
	// Labels: backend (memory, sqlite, postgres, mysql, badger), op, result (ok, not_found, error)
	DocstoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Subsystem: "docstore",
		Name:      "operations_total",
		Help:      "Total document store operations",
	}, []string{"backend", "op", "result"})

	// CacheLoadFailures counts collection loads that left the cache stale.
	// Labels: collection
	CacheLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Subsystem: "cache",
		Name:      "load_failures_total",
		Help:      "Total failed cache collection loads",
	}, []string{"collection"})

	// MigrationRecords counts records created by legacy migration.
	// Labels: kind (person, family, relationship)
	MigrationRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Subsystem: "migration",
		Name:      "records_total",
		Help:      "Total records created by legacy migration",
	}, []string{"kind"})

	// HTTPRequests counts served requests.
	// Labels: route (the matched pattern), code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytree",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"route", "code"})
)
