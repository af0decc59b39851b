// Package metrics exposes prometheus counters for billing effects and
// routing decisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	ResultSubmitted = "submitted"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
)

type Metrics struct {
	UsageEvents      *prometheus.CounterVec
	CreditGrants     *prometheus.CounterVec
	RoutingDecisions *prometheus.CounterVec
	CallOverrides    *prometheus.CounterVec
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		UsageEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialplane_usage_events_total",
			Help: "Metered usage submissions by result.",
		}, []string{"result"}),
		CreditGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialplane_credit_grants_total",
			Help: "Credit grant submissions by result.",
		}, []string{"result"}),
		RoutingDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialplane_routing_decisions_total",
			Help: "Request routing outcomes by kind.",
		}, []string{"outcome"}),
		CallOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dialplane_call_overrides_total",
			Help: "Inbound call routing evaluations by result.",
		}, []string{"matched"}),
	}
	reg.MustRegister(m.UsageEvents, m.CreditGrants, m.RoutingDecisions, m.CallOverrides)
	return m
}
