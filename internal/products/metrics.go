package products

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_sync_total",
			Help: "Total number of product sync attempts",
		},
		[]string{"view", "outcome"},
	)

	wishlistToggles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_wishlist_toggles_total",
			Help: "Total number of wishlist flag toggles",
		},
	)
)
