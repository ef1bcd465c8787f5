package seimart

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/seimart/seimart/schema"
	"github.com/shopspring/decimal"
)

const (
	MetricNameSpace = "seimart"
)

var (
	treasuryBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "treasury_balance",
			Help:      "native balance of the treasury wallet",
		},
		[]string{"address", "token"},
	)
	purchaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "purchase_total",
			Help:      "completed purchase ledger calls",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		treasuryBalance,
		purchaseTotal,
	)
}

func metricTreasuryBalance(bal *big.Int, addr string) {
	amount, _ := decimal.NewFromBigInt(bal, -schema.NativeDecimals).Float64()
	treasuryBalance.WithLabelValues(addr, schema.NativeSymbol).Set(amount)
}

func metricPurchase(result string) {
	purchaseTotal.WithLabelValues(result).Inc()
}
