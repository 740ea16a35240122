package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"github.com/terraincognita07/hridaya/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrAuthEmailExists        = errors.New("email already exists")
	ErrAuthUserNotFound       = errors.New("user not found")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrPasswordUnchanged      = errors.New("new password must differ from the current one")
	ErrAuthStoreFailed        = errors.New("auth store failed")
)

type AuthUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
	cost  int
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (service *AuthService) WithHashCost(cost int) *AuthService {
	service.cost = cost
	return service
}

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

func (service *AuthService) Register(ctx context.Context, emailRaw string, passwordRaw string, now time.Time) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		CurrentNode:  models.DefaultCurrentNode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	return user, nil
}

// Authenticate checks credentials. A user flagged for a password change is
// returned together with ErrPasswordChangeRequired.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if user.MustChangePassword {
		return user, ErrPasswordChangeRequired
	}
	return user, nil
}

// ChangePassword replaces the password after verifying the current one and
// clears the must-change flag.
func (service *AuthService) ChangePassword(ctx context.Context, emailRaw string, currentPassword string, newPassword string) (models.User, error) {
	user, err := service.Authenticate(ctx, emailRaw, currentPassword)
	if err != nil && !errors.Is(err, ErrPasswordChangeRequired) {
		return models.User{}, err
	}

	newPassword = strings.TrimSpace(newPassword)
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return models.User{}, err
	}
	if newPassword == strings.TrimSpace(currentPassword) {
		return models.User{}, ErrPasswordUnchanged
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), service.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, string(hash), false); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	return user, nil
}

// ResetToTemporaryPassword assigns a random password and forces a change on
// the next login.
func (service *AuthService) ResetToTemporaryPassword(ctx context.Context, emailRaw string) (string, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return "", ErrAuthCredentialsInvalid
	}

	user, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAuthUserNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), service.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, string(hash), true); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	return temporaryPassword, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthUserNotFound
		}
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthStoreFailed, err)
	}
	return user, nil
}
