package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SamplesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetrip_samples_received_total",
		Help: "Total number of position samples accepted by the tracker",
	})

	PositionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safetrip_position_errors_total",
		Help: "Total number of failed position fixes by cause",
	}, []string{"cause"})

	GeofenceEvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetrip_geofence_evaluations_total",
		Help: "Total number of samples evaluated against the zone catalog",
	})

	SuppressedSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetrip_suppressed_samples_total",
		Help: "Total number of samples skipped by sleep mode",
	})

	AlertsRaisedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safetrip_alerts_raised_total",
		Help: "Total number of zones entering the active alert set",
	}, []string{"zone_id"})

	ActiveAlerts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safetrip_active_alerts",
		Help: "Number of zones currently in the active alert set",
	})

	PersistErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safetrip_persist_errors_total",
		Help: "Total number of failed key-value writes by key",
	}, []string{"key"})

	SOSDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetrip_sos_dispatched_total",
		Help: "Total number of SOS alerts dispatched",
	})
)
