package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.Middleware())
	router.POST("/confessions/:id/upvote", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/confessions/1/upvote", "/confessions/2/upvote"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/confessions/:id/upvote", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestsTotal))
}

func TestDomainCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ConfessionsCreated.Inc()
	m.VotesTotal.WithLabelValues("up").Inc()
	m.VotesTotal.WithLabelValues("up").Inc()
	m.VotesTotal.WithLabelValues("down").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfessionsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VotesTotal.WithLabelValues("up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VotesTotal.WithLabelValues("down")))
}
