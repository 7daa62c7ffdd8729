package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	expensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupledger_expenses_created_total",
		Help: "Shared expenses accepted by the validator and persisted.",
	})

	settlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupledger_splits_settled_total",
		Help: "Split lines transitioned from pending to paid.",
	})

	remindersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupledger_payment_reminders_total",
		Help: "Payment reminders recorded and dispatched.",
	})
)
