package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/reshape/pkg/observability"
	"github.com/aretw0/reshape/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	tr, err := schema.Parse([]byte(`
title: users
required: [id]
properties:
  id: {type: integer}
  email: {type: string, format: date}
`), schema.WithStrict(true), schema.WithHooks(m.Hooks()))
	require.NoError(t, err)

	_, err = tr.Transform(map[string]any{"id": 1, "email": "x"})
	require.NoError(t, err)
	_, err = tr.Transform(map[string]any{"id": "abc"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("users", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("users", observability.OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("users", "format")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("users", "coerce")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("users", "resolve")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	m.Records.WithLabelValues("users", observability.OutcomeOK).Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reshape_records_total{outcome="ok",schema="users"} 1`)
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics(nil)
		observability.NewMetrics(nil)
	})
}
