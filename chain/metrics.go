package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type chainMetrics struct {
	transactions *prometheus.CounterVec
	campaigns    prometheus.Gauge
	blockNumber  prometheus.Gauge
}

func newChainMetrics(registry prometheus.Registerer) *chainMetrics {
	if registry == nil {
		return nil
	}
	factory := promauto.With(registry)
	return &chainMetrics{
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crowdfund_chain_transactions_total",
			Help: "Total number of transactions included, by method and status",
		}, []string{"method", "status"}),
		campaigns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crowdfund_chain_campaigns",
			Help: "Number of campaigns deployed on the chain",
		}),
		blockNumber: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crowdfund_chain_block_number",
			Help: "Number of the latest block",
		}),
	}
}

func (m *chainMetrics) observe(method string, status string, block uint64, campaigns int) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(method, status).Inc()
	m.blockNumber.Set(float64(block))
	m.campaigns.Set(float64(campaigns))
}
