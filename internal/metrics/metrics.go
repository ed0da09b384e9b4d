package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_auth_attempts_total",
		Help: "Login and registration attempts by operation, role and outcome",
	}, []string{"op", "role", "outcome"})
	LocationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_location_errors_total",
		Help: "Position failures by kind",
	}, []string{"kind"})
	ActiveWatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "touristsafety_active_watches",
		Help: "Position watches currently subscribed",
	})
	ZoneLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_zone_lookups_total",
		Help: "Nearest zone lookups by whether the position was inside the zone",
	}, []string{"inside"})
	FixesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "touristsafety_fixes_total",
		Help: "Position fixes received from devices",
	})
	AlertsRaisedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_alerts_raised_total",
		Help: "Alerts raised by type",
	}, []string{"type"})
	AlertStatusChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touristsafety_alert_status_changes_total",
		Help: "Alert status changes by new status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(AuthAttemptsTotal)
	prometheus.MustRegister(LocationErrorsTotal)
	prometheus.MustRegister(ActiveWatches)
	prometheus.MustRegister(ZoneLookupsTotal)
	prometheus.MustRegister(FixesTotal)
	prometheus.MustRegister(AlertsRaisedTotal)
	prometheus.MustRegister(AlertStatusChangesTotal)
}

// Handler exposes the default registry for fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func Outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
