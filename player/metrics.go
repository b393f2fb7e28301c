package player

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	videoCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "training_video_completions_total",
		Help: "Videos whose watch threshold was crossed",
	})

	quizAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "training_quiz_attempts_total",
		Help: "Completed quiz attempts by outcome",
	}, []string{"outcome"})

	quizScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "training_quiz_score",
		Help:    "Distribution of quiz attempt scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100
	})

	programCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "training_program_completions_total",
		Help: "Enrollments that completed their program",
	})

	lockedRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "training_locked_content_rejections_total",
		Help: "Navigation or interaction attempts on locked content",
	})

	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "training_persistence_failures_total",
		Help: "Failed store calls by operation",
	}, []string{"op"})
)

func observeQuiz(res QuizResults) {
	outcome := "failed"
	if res.Passed {
		outcome = "passed"
	}
	quizAttempts.WithLabelValues(outcome).Inc()
	quizScores.Observe(float64(res.Score))
}
