// Package metrics records interview pipeline activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveAssignment(source, fieldID string)
	ObserveResolution(strategy string, ok bool)
	ObserveCandidate(rule string)
	ObserveToolCall(outcome string)
	ObserveNavigation(action string, ok bool)
	SetActiveSessions(n int)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveAssignment(string, string) {}
func (Nop) ObserveResolution(string, bool) {}
func (Nop) ObserveCandidate(string) {}
func (Nop) ObserveToolCall(string) {}
func (Nop) ObserveNavigation(string, bool) {}
func (Nop) SetActiveSessions(int) {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	assignmentsTotal *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	candidatesTotal  *prometheus.CounterVec
	toolCallsTotal   *prometheus.CounterVec
	navigationTotal  *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

// NewPrometheusRecorder registers the collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		assignmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceform_assignments_total",
				Help: "Answers written to interview state by source and field",
			},
			[]string{"source", "field_id"},
		),
		resolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceform_resolutions_total",
				Help: "Field hint resolutions by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		candidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceform_extraction_candidates_total",
				Help: "Candidates produced from utterances by extraction rule",
			},
			[]string{"rule"},
		),
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceform_tool_calls_total",
				Help: "Structured tool calls by outcome",
			},
			[]string{"outcome"},
		),
		navigationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceform_navigation_total",
				Help: "Navigation requests by action and status",
			},
			[]string{"action", "status"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "voiceform_active_sessions",
				Help: "Interview sessions currently held in memory",
			},
		),
	}
}

// ObserveAssignment counts one stored answer.
func (p *PrometheusRecorder) ObserveAssignment(source, fieldID string) {
	p.assignmentsTotal.WithLabelValues(source, fieldID).Inc()
}

// ObserveResolution counts one resolution attempt.
func (p *PrometheusRecorder) ObserveResolution(strategy string, ok bool) {
	p.resolutionsTotal.WithLabelValues(strategy, status(ok)).Inc()
}

// ObserveCandidate counts one extraction candidate.
func (p *PrometheusRecorder) ObserveCandidate(rule string) {
	p.candidatesTotal.WithLabelValues(rule).Inc()
}

// ObserveToolCall counts one tool call outcome.
func (p *PrometheusRecorder) ObserveToolCall(outcome string) {
	p.toolCallsTotal.WithLabelValues(outcome).Inc()
}

// ObserveNavigation counts one navigation request.
func (p *PrometheusRecorder) ObserveNavigation(action string, ok bool) {
	p.navigationTotal.WithLabelValues(action, status(ok)).Inc()
}

// SetActiveSessions records the number of live sessions.
func (p *PrometheusRecorder) SetActiveSessions(n int) {
	p.activeSessions.Set(float64(n))
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
