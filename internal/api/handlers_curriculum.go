package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/models"
	"github.com/terraincognita07/hridaya/internal/services"
)

type vowInput struct {
	Vow string `json:"vow"`
}

type sessionInput struct {
	PracticeID string `json:"practice_id"`
	Reflection string `json:"reflection"`
}

type reflectionInput struct {
	Node     string `json:"node"`
	Response string `json:"response"`
}

type advanceInput struct {
	Category string `json:"category"`
}

type curriculumResponse struct {
	services.CurriculumState
	CurrentNodeLabel string  `json:"current_node_label"`
	NextNodeLabel    *string `json:"next_node_label"`
}

func (handler *Handler) CurriculumState(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	state, err := handler.curriculumService.State(c.UserContext(), user.ID, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) SetVow(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := vowInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	state, err := handler.curriculumService.SetVow(c.UserContext(), user.ID, input.Vow, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) RecordSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := sessionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	state, err := handler.curriculumService.RecordSession(c.UserContext(), user.ID, services.SessionInput{
		PracticeID: input.PracticeID,
		Reflection: input.Reflection,
	}, handler.today())
	if errors.Is(err, services.ErrPracticeNotFound) {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) RecordMissedDay(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := reflectionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	state, err := handler.curriculumService.RecordMissedDay(c.UserContext(), user.ID, input.Response, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) PassReadinessGate(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := reflectionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(input.Node) == "" {
		input.Node = user.CurrentNode
	}

	state, err := handler.curriculumService.PassReadinessGate(c.UserContext(), user.ID, input.Node, input.Response, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) AdvanceCurriculum(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := advanceInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	state, err := handler.curriculumService.Advance(c.UserContext(), user.ID, input.Category, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) ExportCurriculum(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	blob, err := handler.curriculumService.ExportState(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="hridaya-curriculum.json"`)
	return c.JSON(blob)
}

// ImportCurriculum replaces the stored curriculum with a client blob, bare or
// wrapped in a {"state": ...} envelope.
func (handler *Handler) ImportCurriculum(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	blob, err := services.ParseCurriculumBlob(c.Body())
	if err != nil {
		return respondServiceError(c, err)
	}
	state, err := handler.curriculumService.ImportState(c.UserContext(), user.ID, blob, handler.today())
	return handler.respondCurriculum(c, state, err)
}

func (handler *Handler) Journal(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	entryType := strings.TrimSpace(c.Query("type"))
	if entryType != "" && !models.IsValidJournalEntryType(entryType) {
		return apiError(c, fiber.StatusBadRequest, "invalid journal entry type")
	}

	entries, err := handler.repositories.Journal.ListByUser(c.UserContext(), user.ID, entryType)
	if err != nil {
		return respondServiceError(c, errors.Join(services.ErrCurriculumLoadFailed, err))
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (handler *Handler) respondCurriculum(c *fiber.Ctx, state services.CurriculumState, err error) error {
	if err != nil {
		return respondServiceError(c, err)
	}

	language := currentLanguage(c)
	response := curriculumResponse{
		CurriculumState:  state,
		CurrentNodeLabel: handler.i18n.NodeLabel(language, state.CurrentNode),
	}
	if state.NextNode != nil {
		label := handler.i18n.NodeLabel(language, *state.NextNode)
		response.NextNodeLabel = &label
	}
	return c.JSON(response)
}
