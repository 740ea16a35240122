package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/services"
)

type logEntryInput struct {
	EntryType          string             `json:"entry_type"`
	EntryDate          string             `json:"entry_date"`
	Ratings            map[string]float64 `json:"ratings"`
	Notes              string             `json:"notes"`
	SitDurationMinutes *int               `json:"sit_duration_minutes"`
	TechniqueNotes     string             `json:"technique_notes"`
}

func (handler *Handler) CreateLogEntry(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := logEntryInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	entry, err := handler.logService.Create(c.UserContext(), user.ID, services.LogEntryInput{
		EntryType:          input.EntryType,
		EntryDate:          input.EntryDate,
		Ratings:            input.Ratings,
		Notes:              input.Notes,
		SitDurationMinutes: input.SitDurationMinutes,
		TechniqueNotes:     input.TechniqueNotes,
	}, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"log": entry})
}

func (handler *Handler) RecentLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	logs, err := handler.logService.Recent(c.UserContext(), user.ID, c.QueryInt("limit", services.DefaultRecentLogLimit))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

func (handler *Handler) TodayLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	logs, err := handler.logService.Today(c.UserContext(), user.ID, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

func (handler *Handler) NextLogType(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	logs, err := handler.logService.Today(c.UserContext(), user.ID, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	entryType := services.SuggestEntryType(logs)
	return c.JSON(fiber.Map{
		"entry_type": entryType,
		"label":      handler.i18n.LogEntryTypeLabel(currentLanguage(c), entryType),
	})
}

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	snapshot, err := handler.snapshotService.Refresh(c.UserContext(), user.ID, handler.today())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snapshot)
}
