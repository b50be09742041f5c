package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func staticChecker(status Status, message string) *CustomChecker {
	return NewCustomChecker("static", func(context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestHealthCheck_NoCheckersIsHealthy(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_AggregatesWorstStatus(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("b-cache", staticChecker(StatusDegraded, "slow"))
	hc.Register("a-db", staticChecker(StatusHealthy, ""))

	response := hc.Check(context.Background())
	assert.Equal(t, StatusDegraded, response.Status)
	require.Len(t, response.Checks, 2)
	assert.Equal(t, "a-db", response.Checks[0].Name)
	assert.Equal(t, "b-cache", response.Checks[1].Name)

	hc.Register("c-search", staticChecker(StatusUnhealthy, "down"))
	assert.Equal(t, StatusUnhealthy, hc.Check(context.Background()).Status)
}

func TestHealthCheck_CachesResults(t *testing.T) {
	var calls int32
	hc := New("1.0.0", zap.NewNop())
	hc.SetCacheTTL(time.Minute)
	hc.Register("counted", NewCustomChecker("counted", func(context.Context) (Status, string, interface{}) {
		atomic.AddInt32(&calls, 1)
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHealthCheck_Handlers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.SetCacheTTL(0)
	hc.Register("db", staticChecker(StatusUnhealthy, "connection refused"))

	rec := httptest.NewRecorder()
	hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])

	rec = httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	hc.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthCheck_ReadyWhenDegraded(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("cache", staticChecker(StatusDegraded, "slow"))

	rec := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck_ExportsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	hc := New("1.0.0", zap.NewNop()).WithMetrics(reg)
	hc.Register("cache", staticChecker(StatusDegraded, ""))
	hc.Register("db", staticChecker(StatusHealthy, ""))

	hc.Check(context.Background())
	assert.Equal(t, 0.5, testutil.ToFloat64(hc.gauge.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hc.gauge.WithLabelValues("db")))
}

func TestDatabaseChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	check := NewDatabaseChecker(db).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
	assert.NotNil(t, check.Metadata)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	check = NewDatabaseChecker(db).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestRedisChecker_UnreachableDegrades(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	check := NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusDegraded, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestCheck_MarshalJSONUsesMilliseconds(t *testing.T) {
	data, err := json.Marshal(Check{Name: "db", Status: StatusHealthy, Duration: 1500 * time.Millisecond})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1500.0, decoded["duration_ms"])
}
