package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// StoreFetchTotal counts bulk reads from the record store by outcome.
	StoreFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safety",
		Subsystem: "violationlog",
		Name:      "store_fetch_total",
		Help:      "Total bulk fetches against the record store, labeled by result.",
	}, []string{"result"})

	// StoreWriteTotal counts writes to the record store by action and outcome.
	StoreWriteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safety",
		Subsystem: "violationlog",
		Name:      "store_write_total",
		Help:      "Total writes against the record store, labeled by action and result.",
	}, []string{"action", "result"})

	// BlankRowsDropped counts placeholder rows (no description) discarded on fetch.
	BlankRowsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "safety",
		Subsystem: "violationlog",
		Name:      "store_blank_rows_dropped_total",
		Help:      "Rows fetched from the record store and dropped for having no description.",
	})

	// EnumViolationsFlagged counts fetched records carrying a value outside
	// the closed enumerations, labeled by field.
	EnumViolationsFlagged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safety",
		Subsystem: "violationlog",
		Name:      "store_enum_violations_total",
		Help:      "Fetched records with a department, category or severity outside the known enumeration.",
	}, []string{"field"})

	// AnalyzeTotal counts inference calls by outcome.
	AnalyzeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safety",
		Subsystem: "violationlog",
		Name:      "analyze_total",
		Help:      "Total inference calls, labeled by result.",
	}, []string{"result"})
)

// Register registers all collectors exactly once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			StoreFetchTotal,
			StoreWriteTotal,
			BlankRowsDropped,
			EnumViolationsFlagged,
			AnalyzeTotal,
		)
	})
}
