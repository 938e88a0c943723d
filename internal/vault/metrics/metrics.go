package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	VaultsOpened   prometheus.Counter
	VaultsClosed   prometheus.Counter
	Deposits       prometheus.Counter
	Withdrawals    prometheus.Counter
	HighValueGoals prometheus.Counter
	OpenVaults     prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		VaultsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_vaults_opened_total",
			Help: "Total number of vaults opened",
		}),
		VaultsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_vaults_closed_total",
			Help: "Total number of vaults closed by draining withdrawals",
		}),
		Deposits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_vault_deposits_total",
			Help: "Total number of committed vault deposits",
		}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_vault_withdrawals_total",
			Help: "Total number of committed vault withdrawals",
		}),
		HighValueGoals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coffer_vault_high_value_goals_total",
			Help: "Total number of vaults opened with a goal at or above the high-value threshold",
		}),
		OpenVaults: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coffer_vault_open_vaults",
			Help: "Current number of non-closed vaults",
		}),
	}
}

func (m *Metrics) IncrementVaultsOpened()   { m.VaultsOpened.Inc(); m.OpenVaults.Inc() }
func (m *Metrics) IncrementVaultsClosed()   { m.VaultsClosed.Inc(); m.OpenVaults.Dec() }
func (m *Metrics) IncrementDeposits()       { m.Deposits.Inc() }
func (m *Metrics) IncrementWithdrawals()    { m.Withdrawals.Inc() }
func (m *Metrics) IncrementHighValueGoals() { m.HighValueGoals.Inc() }
