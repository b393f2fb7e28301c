package trainingRoutes

import (
	controllers "hrtraining/controllers/training"
	validators "hrtraining/validators/training"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupTrainingRoutes sets up enrollment and player routes
func SetupTrainingRoutes(app *fiber.App, ctrl *controllers.PlayerController) {
	programGroup := app.Group("/program")
	programGroup.Post("/:program_id/enroll", validators.Enroll(), ctrl.Enroll)
	programGroup.Get("/:program_id/activity", validators.ProgramParam(), ctrl.Activity)

	playerGroup := app.Group("/player/:enrollment_id", validators.EnrollmentParam())

	// Session lifecycle
	playerGroup.Post("/open", ctrl.Open)
	playerGroup.Get("/outline", ctrl.Outline)
	playerGroup.Post("/close", ctrl.Close)

	// Navigation
	playerGroup.Post("/next", ctrl.Next)
	playerGroup.Post("/previous", ctrl.Previous)
	playerGroup.Post("/jump", validators.Jump(), ctrl.Jump)

	// Content completion
	playerGroup.Post("/video/:content_id/progress", validators.ContentParam(), validators.VideoProgress(), ctrl.VideoProgress)
	playerGroup.Post("/document/:content_id/complete", validators.ContentParam(), ctrl.CompleteDocument)

	// Quiz
	quizGroup := playerGroup.Group("/quiz/:content_id", validators.ContentParam())
	quizGroup.Post("/start", ctrl.StartQuiz)
	quizGroup.Post("/answer", validators.QuizAnswer(), ctrl.SubmitAnswer)
	quizGroup.Post("/complete", ctrl.CompleteQuiz)
	quizGroup.Get("/status", ctrl.QuizStatus)
}

// SetupMetricsRoute exposes the Prometheus registry
func SetupMetricsRoute(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
