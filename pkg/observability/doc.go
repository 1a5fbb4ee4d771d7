/*
Package observability turns transformation hooks into Prometheus metrics.

Metrics counts every top-level record by outcome and every absorbed field
problem by stage, and records how long each record took:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	t, err := schema.LoadFile("user.yaml", schema.WithHooks(m.Hooks()))
*/
package observability
