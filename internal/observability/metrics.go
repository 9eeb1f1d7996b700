package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "persistence",
		Name:      "users_created_total",
		Help:      "Number of user records created since process start.",
	})
	exercisesCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "persistence",
		Name:      "exercises_created_total",
		Help:      "Number of exercise records created since process start.",
	})
	exercisePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "persistence",
		Name:      "last_exercise_date_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted to the store.",
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesCreatedCounter, exercisePersistGauge)
}

// RecordUserCreated increments the user creation counter.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExercisePersisted counts the write and updates the watermark gauge.
func RecordExercisePersisted(ts time.Time) {
	exercisesCreatedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exercisePersistGauge.Set(float64(ts.Unix()))
}
