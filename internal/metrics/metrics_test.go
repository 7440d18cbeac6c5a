package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/api/articles", "GET", "200", 0.01)
	m.ObserveRequest("/api/articles", "GET", "200", 0.02)
	m.IncrementRateLimited()
	m.SetRateLimitClients(4)
	m.IncrementPanels("section")
	m.IncrementReports("wikicrow")
	m.SetArticlesLoaded(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/articles", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RateLimitClients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelsTotal.WithLabelValues("section")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("wikicrow")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ArticlesLoaded))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestNew_SeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
