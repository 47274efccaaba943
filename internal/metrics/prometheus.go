package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings persisted",
		},
		[]string{"tenant"},
	)

	BookingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_rejected_total",
			Help: "Total number of booking submissions rejected before or during persistence",
		},
		[]string{"reason"},
	)

	NotificationsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of booking events published, by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Events dropped because a subscriber buffer was full",
		},
		[]string{"topic"},
	)

	DashboardSubscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_subscribers",
			Help: "Number of connected dashboard subscribers per topic",
		},
		[]string{"topic"},
	)

	RelayUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notify_relay_up",
			Help: "1 while the cross-instance relay connection is open, 0 once it is lost",
		},
		[]string{"backend"},
	)
)

// Init registers metrics with Prometheus
func Init() {
	prometheus.MustRegister(BookingsCreated)
	prometheus.MustRegister(BookingsRejected)
	prometheus.MustRegister(NotificationsPublished)
	prometheus.MustRegister(NotificationsDropped)
	prometheus.MustRegister(DashboardSubscribers)
	prometheus.MustRegister(RelayUp)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
