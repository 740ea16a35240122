package api

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

type serviceErrorStatus struct {
	target error
	status int
}

// serviceErrorStatuses is checked in order with errors.Is. Client errors
// echo the service message; server errors only name the failed step.
var serviceErrorStatuses = []serviceErrorStatus{
	{services.ErrExperimentNotFound, fiber.StatusNotFound},
	{services.ErrPracticeNotFound, fiber.StatusNotFound},
	{services.ErrAuthUserNotFound, fiber.StatusNotFound},

	{services.ErrActiveExperimentExists, fiber.StatusConflict},
	{services.ErrExperimentNotActive, fiber.StatusConflict},
	{services.ErrNoActiveExperiment, fiber.StatusConflict},
	{services.ErrInquiryRequired, fiber.StatusConflict},
	{services.ErrNodeNotCompleted, fiber.StatusConflict},
	{services.ErrCurriculumComplete, fiber.StatusConflict},
	{services.ErrAuthEmailExists, fiber.StatusConflict},

	{services.ErrAuthCredentialsInvalid, fiber.StatusUnauthorized},
	{services.ErrPasswordChangeRequired, fiber.StatusForbidden},

	{services.ErrExperimentTitleRequired, fiber.StatusBadRequest},
	{services.ErrExperimentHypothesisRequired, fiber.StatusBadRequest},
	{services.ErrExperimentProtocolRequired, fiber.StatusBadRequest},
	{services.ErrInvalidDuration, fiber.StatusBadRequest},
	{services.ErrMetricsRequired, fiber.StatusBadRequest},
	{services.ErrInvalidMetric, fiber.StatusBadRequest},
	{services.ErrConclusionRequired, fiber.StatusBadRequest},
	{services.ErrInvalidLogEntryType, fiber.StatusBadRequest},
	{services.ErrUnknownMetric, fiber.StatusBadRequest},
	{services.ErrRatingOutOfScale, fiber.StatusBadRequest},
	{services.ErrInvalidSitDuration, fiber.StatusBadRequest},
	{services.ErrLogEntryDateInFuture, fiber.StatusBadRequest},
	{services.ErrInvalidDay, fiber.StatusBadRequest},
	{services.ErrVowRequired, fiber.StatusBadRequest},
	{services.ErrReflectionRequired, fiber.StatusBadRequest},
	{services.ErrInvalidNode, fiber.StatusBadRequest},
	{services.ErrInvalidCategory, fiber.StatusBadRequest},
	{services.ErrInvalidCurriculumState, fiber.StatusBadRequest},
	{services.ErrChatMessagesRequired, fiber.StatusBadRequest},
	{services.ErrInvalidChatMessage, fiber.StatusBadRequest},
	{services.ErrWeakPassword, fiber.StatusBadRequest},
	{services.ErrPasswordUnchanged, fiber.StatusBadRequest},

	{services.ErrExperimentLoadFailed, fiber.StatusInternalServerError},
	{services.ErrExperimentSaveFailed, fiber.StatusInternalServerError},
	{services.ErrLogEntryLoadFailed, fiber.StatusInternalServerError},
	{services.ErrLogEntryCreateFailed, fiber.StatusInternalServerError},
	{services.ErrCurriculumLoadFailed, fiber.StatusInternalServerError},
	{services.ErrCurriculumUpdateFailed, fiber.StatusInternalServerError},
	{services.ErrSnapshotLoadFailed, fiber.StatusInternalServerError},
	{services.ErrAuthStoreFailed, fiber.StatusInternalServerError},
}

func respondServiceError(c *fiber.Ctx, err error) error {
	for _, mapping := range serviceErrorStatuses {
		if !errors.Is(err, mapping.target) {
			continue
		}
		if mapping.status >= fiber.StatusInternalServerError {
			log.Printf("api: %s %s: %v", c.Method(), c.Path(), err)
			return apiError(c, mapping.status, mapping.target.Error())
		}
		return apiError(c, mapping.status, err.Error())
	}

	log.Printf("api: %s %s: %v", c.Method(), c.Path(), err)
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}

// experimentIDParam reads :id. Malformed ids are reported as missing
// experiments so ids of other users and garbage look the same.
func experimentIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	experimentID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, services.ErrExperimentNotFound
	}
	return experimentID, nil
}

// splitListQuery reads a comma separated query value. An absent or blank
// value yields nil.
func splitListQuery(c *fiber.Ctx, key string) []string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}

	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}
