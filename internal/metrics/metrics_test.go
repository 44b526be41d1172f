package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-food-delivery/internal/entity"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodGet, "/stores", http.StatusOK, 12*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/stores", http.StatusOK, 3*time.Millisecond)
	m.OrderCreated()
	m.OrderTransition(entity.StatusPending, entity.StatusAccepted)
	m.LoginFailed(entity.RoleDelivery)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/stores", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("pending", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginFailures.WithLabelValues("delivery")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.OrderCreated()
		m.OrderTransition(entity.StatusPending, entity.StatusAccepted)
		m.LoginFailed(entity.RoleConsumer)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.OrderCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fooddelivery_orders_created_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
