package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_updated_total",
			Help: "Total number of posts updated",
		},
	)

	PostsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_deleted_total",
			Help: "Total number of posts deleted",
		},
	)

	OwnershipDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_post_ownership_denied_total",
			Help: "Total number of post mutations denied to non-owners",
		},
	)

	EventClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_event_clients_connected",
			Help: "Number of websocket event clients currently connected",
		},
	)
)
