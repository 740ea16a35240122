package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/models"
	"github.com/terraincognita07/hridaya/internal/services"
)

type credentialsInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	Email           string `json:"email" form:"email"`
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(c.UserContext(), input.Email, input.Password, handler.now().In(handler.location))
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
		return respondServiceError(c, err)
	}

	if err := handler.setAuthCookie(c, &user, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if rejected, err := handler.rejectThrottled(c, limiterKey, now); rejected {
		return err
	}

	user, err := handler.authService.Authenticate(c.UserContext(), input.Email, input.Password)
	switch {
	case errors.Is(err, services.ErrPasswordChangeRequired):
		handler.loginLimiter.reset(limiterKey)
		return apiError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		handler.loginLimiter.recordFailure(limiterKey, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	case err != nil:
		return respondServiceError(c, err)
	}

	handler.loginLimiter.reset(limiterKey)
	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword is reachable without a session so users holding a temporary
// password can replace it before their first login.
func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if rejected, err := handler.rejectThrottled(c, limiterKey, now); rejected {
		return err
	}

	user, err := handler.authService.ChangePassword(c.UserContext(), input.Email, input.CurrentPassword, input.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.recordFailure(limiterKey, now)
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return respondServiceError(c, err)
	}

	handler.loginLimiter.reset(limiterKey)
	if err := handler.setAuthCookie(c, &user, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Profile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(profileResponse(user))
}

// MarkOnboarded records that the welcome flow was dismissed. Repeated calls
// keep the first timestamp.
func (handler *Handler) MarkOnboarded(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if user.OnboardedAt == nil {
		onboardedAt := handler.now().In(handler.location)
		if err := handler.repositories.Users.MarkOnboarded(c.UserContext(), user.ID, onboardedAt); err != nil {
			return respondServiceError(c, err)
		}
		user.OnboardedAt = &onboardedAt
	}
	return c.JSON(profileResponse(user))
}

func profileResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"profile":       user,
		"is_first_time": user.OnboardedAt == nil,
	}
}
