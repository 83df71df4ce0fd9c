// Package metrics exposes Prometheus instrumentation for the sense-plan-act
// runtime: replan counts, plan length, tick duration, sensor/action error
// counts, and the priority of whichever goal is currently active.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	replansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goap_replans_total",
		Help: "Number of times a planner was invoked to compute a new plan",
	}, []string{"agent", "goal"})

	planLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goap_plan_length",
		Help:    "Number of steps in a freshly computed plan",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	}, []string{"agent", "goal"})

	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goap_tick_duration_seconds",
		Help:    "Wall-clock duration of one controller Step call",
		Buckets: prometheus.DefBuckets,
	}, []string{"agent"})

	activeGoalPriority = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "goap_active_goal_priority",
		Help: "Priority of the goal currently active on an agent, -1 if none",
	}, []string{"agent"})

	sensorErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goap_sensor_errors_total",
		Help: "Number of sensor executions that returned an error",
	}, []string{"agent", "sensor"})

	actionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goap_action_errors_total",
		Help: "Number of plan-step executions that returned an error",
	}, []string{"agent", "action"})
)

// RecordReplan observes that agent computed a fresh plan of the given
// length toward goal.
func RecordReplan(agent, goal string, steps int) {
	replansTotal.WithLabelValues(agent, goal).Inc()
	planLength.WithLabelValues(agent, goal).Observe(float64(steps))
}

// RecordTick observes the wall-clock duration of one controller Step call.
func RecordTick(agent string, d time.Duration) {
	tickDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// SetActiveGoalPriority sets the priority gauge for agent's currently
// active goal. Pass -1 when no goal is active.
func SetActiveGoalPriority(agent string, priority int) {
	activeGoalPriority.WithLabelValues(agent).Set(float64(priority))
}

// RecordSensorError increments the error counter for a named sensor.
func RecordSensorError(agent, sensor string) {
	sensorErrorsTotal.WithLabelValues(agent, sensor).Inc()
}

// RecordActionError increments the error counter for a named action.
func RecordActionError(agent, action string) {
	actionErrorsTotal.WithLabelValues(agent, action).Inc()
}
