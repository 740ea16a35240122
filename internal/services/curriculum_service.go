package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/datatypes"
)

// CanAdvance needs at least this many consecutive practice days.
const AdvanceStreakThreshold = 7

const (
	attributePracticeID = "practice_id"
	attributeReflection = "reflection"
	attributeResponse   = "response"
	attributeNode       = "node"
)

var (
	ErrVowRequired            = errors.New("vow is required")
	ErrInquiryRequired        = errors.New("missed-day reflection required before the next session")
	ErrReflectionRequired     = errors.New("reflection is required")
	ErrInvalidNode            = errors.New("invalid curriculum node")
	ErrInvalidCategory        = errors.New("invalid practice category")
	ErrNodeNotCompleted       = errors.New("current node has not passed its readiness gate")
	ErrCurriculumComplete     = errors.New("curriculum path is complete")
	ErrInvalidCurriculumState = errors.New("invalid curriculum state")
	ErrCurriculumLoadFailed   = errors.New("load curriculum failed")
	ErrCurriculumUpdateFailed = errors.New("update curriculum failed")
)

type CurriculumUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	UpdateByID(ctx context.Context, userID uint, updates map[string]any) error
	UpdateWithJournalEntry(ctx context.Context, userID uint, updates map[string]any, entry *models.JournalEntry) error
}

type CurriculumJournalRepository interface {
	ListByUser(ctx context.Context, userID uint, entryType string) ([]models.JournalEntry, error)
	ExistsOnDay(ctx context.Context, userID uint, entryType string, day string) (bool, error)
	ReplaceAll(ctx context.Context, userID uint, entries []models.JournalEntry, profileUpdates map[string]any) error
}

// CurriculumState is the read model of a user's path through the curriculum.
type CurriculumState struct {
	Vow               *string           `json:"vow"`
	IsFirstTime       bool              `json:"is_first_time"`
	CurrentNode       string            `json:"current_node"`
	NextNode          *string           `json:"next_node"`
	CompletedNodes    []string          `json:"completed_nodes"`
	Streak            int               `json:"streak"`
	LastPracticeDate  *string           `json:"last_practice_date"`
	TrackProgress     map[string]string `json:"track_progress"`
	NeedsInquiry      bool              `json:"needs_inquiry"`
	CanAdvance        bool              `json:"can_advance"`
	DaysAtCurrentNode int               `json:"days_at_current_node"`
}

type SessionInput struct {
	PracticeID string
	Reflection string
}

// CurriculumService owns every write to the curriculum part of the profile.
type CurriculumService struct {
	users   CurriculumUserRepository
	journal CurriculumJournalRepository
	catalog *PracticeCatalog
}

func NewCurriculumService(users CurriculumUserRepository, journal CurriculumJournalRepository, catalog *PracticeCatalog) *CurriculumService {
	return &CurriculumService{
		users:   users,
		journal: journal,
		catalog: catalog,
	}
}

func (service *CurriculumService) State(ctx context.Context, userID uint, today time.Time) (CurriculumState, error) {
	user, err := service.loadUser(ctx, userID)
	if err != nil {
		return CurriculumState{}, err
	}
	sessions, err := service.journal.ListByUser(ctx, userID, models.JournalSession)
	if err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumLoadFailed, err)
	}
	reflectedToday, err := service.journal.ExistsOnDay(ctx, userID, models.JournalMissedDay, DayKey(today))
	if err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumLoadFailed, err)
	}

	currentNode := currentNodeOf(user)
	state := CurriculumState{
		Vow:               user.Vow,
		IsFirstTime:       user.Vow == nil,
		CurrentNode:       currentNode,
		CompletedNodes:    append([]string{}, user.CompletedNodes...),
		Streak:            user.Streak,
		LastPracticeDate:  user.LastPracticeDate,
		TrackProgress:     trackProgressOf(user),
		NeedsInquiry:      NeedsInquiry(lastPracticeDay(user, today.Location()), today, reflectedToday),
		CanAdvance:        CanAdvance(user.Streak, currentNode, user.CompletedNodes),
		DaysAtCurrentNode: DaysAtNode(sessions, currentNode),
	}
	if next, ok := NextNode(currentNode); ok {
		state.NextNode = &next
	}
	return state, nil
}

func (service *CurriculumService) SetVow(ctx context.Context, userID uint, vow string, today time.Time) (CurriculumState, error) {
	vow = strings.TrimSpace(vow)
	if vow == "" {
		return CurriculumState{}, ErrVowRequired
	}
	if err := service.users.UpdateByID(ctx, userID, map[string]any{"vow": vow}); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

// RecordSession appends a session for today and moves the streak. It is
// refused while a missed-day reflection is pending.
func (service *CurriculumService) RecordSession(ctx context.Context, userID uint, input SessionInput, today time.Time) (CurriculumState, error) {
	practiceID := strings.TrimSpace(input.PracticeID)
	if _, err := service.catalog.Find(practiceID); err != nil {
		return CurriculumState{}, err
	}

	user, err := service.loadUser(ctx, userID)
	if err != nil {
		return CurriculumState{}, err
	}
	todayKey := DayKey(today)
	reflectedToday, err := service.journal.ExistsOnDay(ctx, userID, models.JournalMissedDay, todayKey)
	if err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumLoadFailed, err)
	}
	lastPractice := lastPracticeDay(user, today.Location())
	if NeedsInquiry(lastPractice, today, reflectedToday) {
		return CurriculumState{}, ErrInquiryRequired
	}

	entry := &models.JournalEntry{
		EntryType: models.JournalSession,
		EntryDate: todayKey,
		Attributes: datatypes.JSONMap{
			attributePracticeID: practiceID,
			attributeReflection: strings.TrimSpace(input.Reflection),
			attributeNode:       currentNodeOf(user),
		},
	}
	updates := map[string]any{
		"streak":             NextStreakOnSession(lastPractice, user.Streak, today),
		"last_practice_date": todayKey,
	}
	if err := service.users.UpdateWithJournalEntry(ctx, userID, updates, entry); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

func (service *CurriculumService) RecordMissedDay(ctx context.Context, userID uint, response string, today time.Time) (CurriculumState, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return CurriculumState{}, ErrReflectionRequired
	}

	entry := &models.JournalEntry{
		EntryType:  models.JournalMissedDay,
		EntryDate:  DayKey(today),
		Attributes: datatypes.JSONMap{attributeResponse: response},
	}
	updates := map[string]any{"streak": ResetStreakOnMissedDay()}
	if err := service.users.UpdateWithJournalEntry(ctx, userID, updates, entry); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

// PassReadinessGate records the user's response and marks node completed.
func (service *CurriculumService) PassReadinessGate(ctx context.Context, userID uint, node string, response string, today time.Time) (CurriculumState, error) {
	node = strings.TrimSpace(node)
	if !IsValidNode(node) {
		return CurriculumState{}, ErrInvalidNode
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return CurriculumState{}, ErrReflectionRequired
	}

	user, err := service.loadUser(ctx, userID)
	if err != nil {
		return CurriculumState{}, err
	}

	entry := &models.JournalEntry{
		EntryType: models.JournalReadinessGate,
		EntryDate: DayKey(today),
		Attributes: datatypes.JSONMap{
			attributeNode:     node,
			attributeResponse: response,
		},
	}
	var updates map[string]any
	if !user.HasCompletedNode(node) {
		completed := append(datatypes.JSONSlice[string]{}, user.CompletedNodes...)
		updates = map[string]any{"completed_nodes": append(completed, node)}
	}
	if err := service.users.UpdateWithJournalEntry(ctx, userID, updates, entry); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

// Advance moves a category track one object forward. An empty category, or
// the category of the current node, also moves the current node to its
// successor, which crosses into the next category after "all". Either way the
// node being left must have passed its readiness gate.
func (service *CurriculumService) Advance(ctx context.Context, userID uint, category string, today time.Time) (CurriculumState, error) {
	category = strings.TrimSpace(category)
	if category != "" && !slices.Contains(models.Categories, category) {
		return CurriculumState{}, ErrInvalidCategory
	}

	user, err := service.loadUser(ctx, userID)
	if err != nil {
		return CurriculumState{}, err
	}
	currentNode := currentNodeOf(user)
	currentCategory, _, _ := ParseNode(currentNode)
	tracks := trackProgressOf(user)

	updates := map[string]any{}
	if category == "" || category == currentCategory {
		if !user.HasCompletedNode(currentNode) {
			return CurriculumState{}, ErrNodeNotCompleted
		}
		next, ok := NextNode(currentNode)
		if !ok {
			return CurriculumState{}, ErrCurriculumComplete
		}
		nextCategory, nextObject, _ := ParseNode(next)
		tracks[nextCategory] = nextObject
		updates["current_node"] = next
	} else {
		object := user.TrackObject(category)
		if !user.HasCompletedNode(NodeID(category, object)) {
			return CurriculumState{}, ErrNodeNotCompleted
		}
		nextObject, ok := NextObject(object)
		if !ok {
			return CurriculumState{}, ErrCurriculumComplete
		}
		tracks[category] = nextObject
	}
	updates["track_progress"] = datatypes.NewJSONType(tracks)

	if err := service.users.UpdateByID(ctx, userID, updates); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

// CanAdvance needs an unbroken week of practice on a node that has not yet
// passed its readiness gate.
func CanAdvance(streak int, currentNode string, completedNodes []string) bool {
	return streak >= AdvanceStreakThreshold && !slices.Contains(completedNodes, currentNode)
}

// DaysAtNode counts distinct days with a session on node. Sessions recorded
// without a node count toward every node.
func DaysAtNode(sessions []models.JournalEntry, node string) int {
	days := make(map[string]bool)
	for _, session := range sessions {
		if session.EntryType != models.JournalSession {
			continue
		}
		if sessionNode := session.StringAttribute(attributeNode); sessionNode != "" && sessionNode != node {
			continue
		}
		days[session.EntryDate] = true
	}
	return len(days)
}

func (service *CurriculumService) loadUser(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrCurriculumLoadFailed, err)
	}
	return user, nil
}

func currentNodeOf(user models.User) string {
	if IsValidNode(user.CurrentNode) {
		return user.CurrentNode
	}
	return models.DefaultCurrentNode
}

func trackProgressOf(user models.User) map[string]string {
	tracks := make(map[string]string, len(models.Categories))
	for _, category := range models.Categories {
		tracks[category] = user.TrackObject(category)
	}
	return tracks
}

func lastPracticeDay(user models.User, location *time.Location) time.Time {
	if user.LastPracticeDate == nil {
		return time.Time{}
	}
	day, err := ParseDay(*user.LastPracticeDate, location)
	if err != nil {
		return time.Time{}
	}
	return day
}

