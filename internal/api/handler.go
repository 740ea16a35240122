package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/hridaya/internal/db"
	"github.com/terraincognita07/hridaya/internal/i18n"
	"github.com/terraincognita07/hridaya/internal/llm"
	"github.com/terraincognita07/hridaya/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	catalog      *services.PracticeCatalog
	chatClient   llm.ChatClient
	loginLimiter *attemptLimiter
	now          func() time.Time

	repositories      *db.Repositories
	authService       *services.AuthService
	experimentService *services.ExperimentService
	logService        *services.LogService
	snapshotService   *services.SnapshotService
	chatService       *services.ChatService
	curriculumService *services.CurriculumService
}

func NewHandler(database *gorm.DB, secret string, location *time.Location, i18nManager *i18n.Manager, catalog *services.PracticeCatalog, chatClient llm.ChatClient, cookieSecure bool) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if catalog == nil {
		return nil, errors.New("practice catalog is required")
	}
	if chatClient == nil {
		return nil, errors.New("chat client is required")
	}
	if location == nil {
		location = time.Local
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(secret),
		location:     location,
		cookieSecure: cookieSecure,
		i18n:         i18nManager,
		catalog:      catalog,
		chatClient:   chatClient,
		loginLimiter: newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		now:          time.Now,
	}
	return handler.withDependencies(database), nil
}

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.experimentService = services.NewExperimentService(handler.repositories.Experiments)
	handler.logService = services.NewLogService(handler.repositories.LogEntries, handler.repositories.Experiments)
	handler.snapshotService = services.NewSnapshotService(handler.repositories.Users, handler.repositories.Experiments, handler.repositories.LogEntries)
	handler.chatService = services.NewChatService(handler.snapshotService, handler.chatClient)
	handler.curriculumService = services.NewCurriculumService(handler.repositories.Users, handler.repositories.Journal, handler.catalog)
	return handler
}

// today is the current calendar day in the configured location.
func (handler *Handler) today() time.Time {
	return services.DateAtLocation(handler.now(), handler.location)
}
