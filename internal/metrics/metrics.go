// Package metrics exposes Prometheus counters for lifecycle and
// synchronization activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sourcing_transitions_total",
		Help: "Lifecycle state transitions applied, by entity and target state.",
	}, []string{"entity", "to"})

	syncTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sourcing_sync_tasks_total",
		Help: "Synchronizer tasks processed, by kind and result.",
	}, []string{"kind", "result"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sourcing_notifications_total",
		Help: "Notifications created, by type.",
	}, []string{"type"})
)

func Transition(entity, to string) {
	transitionsTotal.WithLabelValues(entity, to).Inc()
}

func SyncTask(kind, result string) {
	syncTasksTotal.WithLabelValues(kind, result).Inc()
}

func NotificationCreated(nt string) {
	notificationsTotal.WithLabelValues(nt).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
