package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(promoActivationsTotal, feedRequestsTotal, feedItemsReturned) }

var (
	promoActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_activations_total",
			Help: "Activation attempts by outcome.",
		},
		[]string{"result"}, // 'ok', 'not_eligible', 'not_found', 'unavailable', 'error'
	)

	feedRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Number of feed pages composed.",
		},
	)

	feedItemsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_items_returned",
			Help:    "Items returned per feed page.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)
)

func IncActivation(result string) {
	promoActivationsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveFeed(items int) {
	feedRequestsTotal.Inc()
	feedItemsReturned.Observe(float64(items))
}
