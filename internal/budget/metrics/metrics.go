package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SpendsRecorded prometheus.Counter
	SpendsDenied   prometheus.Counter
	ActiveBudgets  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		SpendsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_budget_spends_recorded_total",
			Help: "Total number of spends committed against budget configs",
		}),
		SpendsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_budget_spends_denied_total",
			Help: "Total number of spends rejected for exceeding a budget limit",
		}),
		ActiveBudgets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coffer_budget_active_configs",
			Help: "Current number of accounts with an active budget config",
		}),
	}
}

func (m *Metrics) IncrementSpendsRecorded() { m.SpendsRecorded.Inc() }
func (m *Metrics) IncrementSpendsDenied()   { m.SpendsDenied.Inc() }
func (m *Metrics) IncrementActiveBudgets()  { m.ActiveBudgets.Inc() }
func (m *Metrics) DecrementActiveBudgets()  { m.ActiveBudgets.Dec() }
