package gorm

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const queryStartKey = "query_metrics:start"

// QueryMetrics records per-statement timings through GORM callbacks
type QueryMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewQueryMetrics registers the query collectors on reg
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	factory := promauto.With(reg)
	return &QueryMetrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipewiz_db_query_duration_seconds",
			Help:    "Duration of database statements",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "table"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipewiz_db_query_errors_total",
			Help: "Database statements that returned an error",
		}, []string{"operation", "table"}),
	}
}

// Install hooks the metrics into create, query, update and delete
func (m *QueryMetrics) Install(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
	}

	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.op, m.start); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.op, m.observe(h.op)); err != nil {
			return err
		}
	}

	return nil
}

func (m *QueryMetrics) start(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (m *QueryMetrics) observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}

		table := ""
		if db.Statement != nil {
			table = db.Statement.Table
		}

		m.duration.WithLabelValues(op, table).Observe(time.Since(started).Seconds())
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			m.errors.WithLabelValues(op, table).Inc()
		}
	}
}
