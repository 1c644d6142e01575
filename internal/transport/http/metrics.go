package httptransport

import "expvar"

var (
	metricSessionCreateTotal  = expvar.NewInt("session_create_total")
	metricSessionCreateErrors = expvar.NewInt("session_create_errors_total")

	metricSpinAppendTotal    = expvar.NewInt("spin_append_total")
	metricSpinRejectedTotal  = expvar.NewInt("spin_rejected_total")
	metricHistoryEditTotal   = expvar.NewInt("history_edit_total")
	metricPersistErrorsTotal = expvar.NewInt("persist_errors_total")

	metricPredictTotal  = expvar.NewInt("predict_total")
	metricPredictMillis = expvar.NewInt("predict_last_ms")

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)
