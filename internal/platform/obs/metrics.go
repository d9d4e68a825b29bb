package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process counters. It satisfies the Metrics ports of the
// authorization and workflow contexts.
type Metrics struct {
	authzDenials        *prometheus.CounterVec
	workflowTransitions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		authzDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Name:      "authz_denials_total",
			Help:      "Authorization denials by resource, action and reason.",
		}, []string{"resource", "action", "reason"}),
		workflowTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Name:      "workflow_transitions_total",
			Help:      "Workflow state transitions by entity and edge.",
		}, []string{"entity", "from", "to"}),
	}
}

func (m *Metrics) IncAuthzDenial(resource, action, reason string) {
	m.authzDenials.WithLabelValues(resource, action, reason).Inc()
}

func (m *Metrics) IncWorkflowTransition(entity, from, to string) {
	m.workflowTransitions.WithLabelValues(entity, from, to).Inc()
}
