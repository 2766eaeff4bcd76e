package keystore

import "github.com/prometheus/client_golang/prometheus"

type storeMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	expiredPurges prometheus.Counter
	writes        prometheus.Counter
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	m := &storeMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "localit_hits_total",
			Help: "Reads that returned a live value.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "localit_misses_total",
			Help: "Reads that returned no value, expired entries included.",
		}),
		expiredPurges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "localit_expired_purges_total",
			Help: "Entries purged lazily because their expiration passed.",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "localit_writes_total",
			Help: "Successful value writes.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.expiredPurges, m.writes)
	}
	return m
}
