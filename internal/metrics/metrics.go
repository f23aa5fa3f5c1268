package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Dosing Metrics
var (
	DosesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doses_applied_total",
			Help: "Total number of successfully applied doses",
		},
		[]string{"nutrient"},
	)

	DosesBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doses_blocked_total",
			Help: "Total number of doses blocked by the cooldown window",
		},
		[]string{"nutrient"},
	)

	DosesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doses_rejected_total",
			Help: "Total number of doses rejected for insufficient tank inventory",
		},
		[]string{"nutrient"},
	)

	PartialApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partial_applications_total",
			Help: "Doses where inventory was debited but actuation or recording did not complete",
		},
		[]string{"nutrient"},
	)

	DispensedVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispensed_volume_ml_total",
			Help: "Total fertilizer volume dispensed in milliliters",
		},
		[]string{"nutrient"},
	)

	PumpRunSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pump_run_duration_seconds",
			Help:    "Pump actuation durations in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"nutrient"},
	)
)

// Tank Metrics
var (
	TankLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tank_level_ml",
			Help: "Remaining tank inventory per nutrient in milliliters",
		},
		[]string{"nutrient"},
	)

	TankRefills = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tank_refills_total",
			Help: "Total number of tank refill operations",
		},
		[]string{"nutrient"},
	)
)

// Vision Metrics
var (
	EstimateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_estimate_requests_total",
			Help: "Total number of vision estimate requests by result",
		},
		[]string{"result"},
	)
)
