package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PushMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_messages_total",
		Help: "Total number of messages ingested from the push channel",
	})
	ReconcileTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_reconcile_ticks_total",
		Help: "Total number of reconciliation timer ticks",
	})
	FetchErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_fetch_errors_total",
		Help: "Total number of failed authoritative-store fetches",
	})
	SubscriptionErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_subscription_errors_total",
		Help: "Total number of failed push channel opens",
	})
	LiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_live_subscriptions",
		Help: "Current number of live push subscriptions",
	})
	MessagesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Total number of messages sent by local users",
	})
)

func init() {
	prometheus.MustRegister(
		PushMessagesTotal,
		ReconcileTicksTotal,
		FetchErrorsTotal,
		SubscriptionErrorsTotal,
		LiveSubscriptions,
		MessagesSentTotal,
	)
}
