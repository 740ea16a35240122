package api

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/models"
	"github.com/terraincognita07/hridaya/internal/services"
)

type metricInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Scale       [2]int `json:"scale"`
}

type experimentInput struct {
	Title        string        `json:"title"`
	Hypothesis   string        `json:"hypothesis"`
	Protocol     string        `json:"protocol"`
	Metrics      []metricInput `json:"metrics"`
	DurationDays *int          `json:"duration_days"`
	StartDate    string        `json:"start_date"`
}

type completeExperimentInput struct {
	Conclusion string `json:"conclusion"`
}

func (input experimentInput) toServiceInput() services.ExperimentInput {
	durationDays := services.DefaultExperimentDuration
	if input.DurationDays != nil {
		durationDays = *input.DurationDays
	}

	metrics := make([]models.MetricDefinition, 0, len(input.Metrics))
	for _, metric := range input.Metrics {
		metrics = append(metrics, models.MetricDefinition{
			ID:          metric.ID,
			Name:        metric.Name,
			Description: metric.Description,
			Scale:       metric.Scale,
		})
	}

	return services.ExperimentInput{
		Title:        input.Title,
		Hypothesis:   input.Hypothesis,
		Protocol:     input.Protocol,
		Metrics:      metrics,
		DurationDays: durationDays,
		StartDate:    input.StartDate,
	}
}

func (handler *Handler) ListExperiments(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	experiments, err := handler.experimentService.List(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	summaries := make([]services.ExperimentSummary, 0, len(experiments))
	for _, experiment := range experiments {
		summaries = append(summaries, services.SummarizeExperiment(experiment))
	}
	return c.JSON(fiber.Map{"experiments": summaries})
}

func (handler *Handler) CreateExperiment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := experimentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	experiment, err := handler.experimentService.Create(c.UserContext(), user.ID, input.toServiceInput(), handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"experiment": services.SummarizeExperiment(experiment)})
}

// ActiveExperiment answers {"experiment": null} when nothing is running.
func (handler *Handler) ActiveExperiment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	experiment, found, err := handler.experimentService.Active(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if !found {
		return c.JSON(fiber.Map{"experiment": nil, "progress": nil})
	}

	progress, err := handler.experimentService.Progress(experiment, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"experiment": services.SummarizeExperiment(experiment), "progress": progress})
}

func (handler *Handler) GetExperiment(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"experiment": services.SummarizeExperiment(experiment)})
}

func (handler *Handler) ExperimentProgress(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	progress, err := handler.experimentService.Progress(experiment, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(progress)
}

func (handler *Handler) CompleteExperiment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	experimentID, err := experimentIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	input := completeExperimentInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	experiment, err := handler.experimentService.Complete(c.UserContext(), user.ID, experimentID, input.Conclusion)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"experiment": services.SummarizeExperiment(experiment)})
}

func (handler *Handler) AbandonExperiment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	experimentID, err := experimentIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	experiment, err := handler.experimentService.Abandon(c.UserContext(), user.ID, experimentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"experiment": services.SummarizeExperiment(experiment)})
}

func (handler *Handler) ExperimentLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	experimentID, err := experimentIDParam(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	logs, err := handler.logService.ForExperiment(c.UserContext(), user.ID, experimentID, c.Query("since"), c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

func (handler *Handler) ExperimentChart(c *fiber.Ctx) error {
	mode := c.Query("mode", services.ChartModeRaw)
	if mode != services.ChartModeRaw && mode != services.ChartModeAggregate {
		return apiError(c, fiber.StatusBadRequest, "invalid chart mode")
	}

	experiment, logs, err := handler.chartLogs(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var points []services.ChartPoint
	if mode == services.ChartModeAggregate {
		points = services.AggregateByDate(logs, experiment.Metrics)
	} else {
		points = services.TransformLogsToChartData(logs, experiment.Metrics)
	}
	return c.JSON(fiber.Map{
		"mode":    mode,
		"metrics": experiment.Metrics,
		"points":  points,
	})
}

func (handler *Handler) ExperimentSeries(c *fiber.Ctx) error {
	experiment, logs, err := handler.chartLogs(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	metric, ok := experiment.MetricByID(c.Params("metric"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "metric not found")
	}
	return c.JSON(fiber.Map{
		"metric": metric,
		"series": services.GetMetricSeries(logs, metric.ID),
	})
}

// chartLogs loads every entry of the experiment in the order it was written,
// narrowed to the requested entry types.
func (handler *Handler) chartLogs(c *fiber.Ctx) (models.Experiment, []models.LogEntry, error) {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return models.Experiment{}, nil, err
	}

	user, _ := currentUser(c)
	logs, err := handler.logService.ForExperiment(c.UserContext(), user.ID, experiment.ID, "", 0)
	if err != nil {
		return models.Experiment{}, nil, err
	}
	slices.Reverse(logs)
	return experiment, services.FilterLogsByType(logs, splitListQuery(c, "types")), nil
}

func (handler *Handler) ownedExperiment(c *fiber.Ctx) (models.Experiment, error) {
	user, ok := currentUser(c)
	if !ok {
		return models.Experiment{}, services.ErrExperimentNotFound
	}
	experimentID, err := experimentIDParam(c)
	if err != nil {
		return models.Experiment{}, err
	}
	return handler.experimentService.Get(c.UserContext(), user.ID, experimentID)
}
