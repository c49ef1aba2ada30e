package state

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	mined       prometheus.Counter
	rejected    prometheus.Counter
	attempts    prometheus.Counter
	chainLength prometheus.Gauge
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := metrics{
		mined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quartz_blocks_mined_total",
			Help: "Blocks mined and added to the chain",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quartz_blocks_rejected_total",
			Help: "Mined blocks that failed validation against the tip",
		}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quartz_mining_attempts_total",
			Help: "Nonces tried while mining",
		}),
		chainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quartz_chain_length",
			Help: "Number of blocks in the chain",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quartz_digest_cache_hits_total",
			Help: "Digest lookups served from the cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quartz_digest_cache_misses_total",
			Help: "Digest lookups that scanned the chain",
		}),
	}

	for _, c := range []prometheus.Collector{m.mined, m.rejected, m.attempts, m.chainLength, m.cacheHits, m.cacheMisses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}
