// Package metrics defines the Prometheus instrumentation shared across
// the server and agent layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_http_requests_total",
		Help: "API requests by path and status code.",
	}, []string{"path", "status"})

	// AgentTurns counts submitted chat turns per persona.
	AgentTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_agent_turns_total",
		Help: "Chat turns submitted per agent persona.",
	}, []string{"agent"})

	// ToolExecutions counts tool invocations by tool name and outcome.
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_tool_executions_total",
		Help: "Finance tool invocations by tool and result status.",
	}, []string{"tool", "status"})
)
