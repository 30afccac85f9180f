package evo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lifeforge"

// Metrics describes the evolutionary loop for Prometheus. Register it on a
// dedicated registry; the CLI writes that registry to a textfile after each
// epoch.
type Metrics struct {
	Epochs        prometheus.Counter
	Offspring     *prometheus.CounterVec
	BestScore     prometheus.Gauge
	MeanScore     prometheus.Gauge
	BestLiveCells prometheus.Gauge
	EpochDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "epochs_total",
			Help:      "Completed population epochs.",
		}),
		Offspring: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "offspring_total",
			Help:      "Boards produced, by offspring type.",
		}, []string{"type"}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "best_score",
			Help:      "Best board score of the latest epoch.",
		}),
		MeanScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "mean_score",
			Help:      "Mean board score of the latest epoch.",
		}),
		BestLiveCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "best_live_cells",
			Help:      "Live cells in the best board of the latest epoch.",
		}),
		EpochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "evolution",
			Name:      "epoch_duration_seconds",
			Help:      "Wall time spent building and scoring one epoch.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Epochs, m.Offspring, m.BestScore, m.MeanScore, m.BestLiveCells, m.EpochDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range OffspringTypes() {
		m.Offspring.WithLabelValues(t.String())
	}
	return m, nil
}

// Observe records one finished epoch. A nil receiver is a no-op.
func (m *Metrics) Observe(counts OffspringCounts, mean, best float64, bestLiveCells int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Epochs.Inc()
	for t, n := range counts {
		m.Offspring.WithLabelValues(t.String()).Add(float64(n))
	}
	m.MeanScore.Set(mean)
	m.BestScore.Set(best)
	m.BestLiveCells.Set(float64(bestLiveCells))
	m.EpochDuration.Observe(elapsed.Seconds())
}
