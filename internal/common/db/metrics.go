package db

import (
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"blogspace/internal/observability/metrics"
)

func StartPoolMetrics(pool *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			stat := pool.Stat()
			metrics.DBPoolTotalConns.Set(float64(stat.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(stat.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(stat.AcquiredConns()))
		}
	}()
}

// ObserveQuery records the duration of a repository operation.
func ObserveQuery(operation, table string, start time.Time) {
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

func CountQueryError(operation, table string) {
	metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
}
