package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "classbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "classbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	NewsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classbot", Name: "news_published_total", Help: "Published class posts",
	}, []string{"type"})
	VerificationsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classbot", Name: "verifications_processed_total", Help: "Processed parent verifications",
	}, []string{"decision"})
	PendingVerifications = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "classbot", Name: "pending_verifications", Help: "Verifications awaiting review",
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing,
		NewsPublished, VerificationsProcessed, PendingVerifications)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
