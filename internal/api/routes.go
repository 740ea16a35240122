package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/change-password", handler.ChangePassword)
	auth.Post("/logout", handler.Logout)

	profile := api.Group("/profile", handler.AuthRequired)
	profile.Get("", handler.Profile)
	profile.Post("/onboarded", handler.MarkOnboarded)

	api.Get("/dashboard", handler.AuthRequired, handler.Dashboard)

	experiments := api.Group("/experiments", handler.AuthRequired)
	experiments.Get("", handler.ListExperiments)
	experiments.Post("", handler.CreateExperiment)
	experiments.Get("/active", handler.ActiveExperiment)
	experiments.Get("/:id", handler.GetExperiment)
	experiments.Get("/:id/progress", handler.ExperimentProgress)
	experiments.Post("/:id/complete", handler.CompleteExperiment)
	experiments.Post("/:id/abandon", handler.AbandonExperiment)
	experiments.Get("/:id/logs", handler.ExperimentLogs)
	experiments.Get("/:id/chart", handler.ExperimentChart)
	experiments.Get("/:id/series/:metric", handler.ExperimentSeries)

	logs := api.Group("/logs", handler.AuthRequired)
	logs.Post("", handler.CreateLogEntry)
	logs.Get("/recent", handler.RecentLogs)
	logs.Get("/today", handler.TodayLogs)
	logs.Get("/next-type", handler.NextLogType)

	api.Post("/chat", handler.AuthRequired, handler.Chat)

	practices := api.Group("/practices", handler.AuthRequired)
	practices.Get("", handler.Practices)
	practices.Get("/random", handler.RandomPractice)
	practices.Get("/:id", handler.GetPractice)
	api.Get("/catalog", handler.AuthRequired, handler.Catalog)

	curriculum := api.Group("/curriculum", handler.AuthRequired)
	curriculum.Get("", handler.CurriculumState)
	curriculum.Post("/vow", handler.SetVow)
	curriculum.Post("/sessions", handler.RecordSession)
	curriculum.Post("/missed-day", handler.RecordMissedDay)
	curriculum.Post("/readiness-gate", handler.PassReadinessGate)
	curriculum.Post("/advance", handler.AdvanceCurriculum)
	curriculum.Get("/export", handler.ExportCurriculum)
	curriculum.Post("/import", handler.ImportCurriculum)

	api.Get("/journal", handler.AuthRequired, handler.Journal)
}
