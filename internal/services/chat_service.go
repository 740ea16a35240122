package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/hridaya/internal/llm"
	"github.com/terraincognita07/hridaya/internal/models"
)

const maxChatMessages = 100

var (
	ErrChatMessagesRequired = errors.New("chat messages are required")
	ErrInvalidChatMessage   = errors.New("invalid chat message")
)

type ChatService struct {
	snapshots *SnapshotService
	client    llm.ChatClient
}

func NewChatService(snapshots *SnapshotService, client llm.ChatClient) *ChatService {
	return &ChatService{
		snapshots: snapshots,
		client:    client,
	}
}

// ResearchContext gathers the user's data for a chat turn.
func (service *ChatService) ResearchContext(ctx context.Context, userID uint, today time.Time) (ResearchContext, error) {
	snapshot, err := service.snapshots.Refresh(ctx, userID, today)
	if err != nil {
		return ResearchContext{}, err
	}

	var active *ActiveExperimentContext
	if snapshot.ActiveExperiment != nil {
		currentDay := 1
		if snapshot.Progress != nil {
			currentDay = snapshot.Progress.CurrentDay
		}
		active = &ActiveExperimentContext{
			Experiment: snapshot.ActiveExperiment.Experiment,
			CurrentDay: currentDay,
		}
	}

	experiments := make([]models.Experiment, 0, len(snapshot.Experiments))
	for _, summary := range snapshot.Experiments {
		experiments = append(experiments, summary.Experiment)
	}
	return NewResearchContext(DayKey(today), active, experiments, snapshot.RecentLogs), nil
}

// Open validates the conversation, builds the system prompt and opens the
// upstream stream. The caller owns the returned stream.
func (service *ChatService) Open(ctx context.Context, userID uint, messages []llm.Message, today time.Time) (llm.Stream, error) {
	normalized, err := NormalizeChatMessages(messages)
	if err != nil {
		return nil, err
	}

	research, err := service.ResearchContext(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	return service.client.StreamChat(ctx, llm.ChatRequest{
		System:   BuildSystemPrompt(research),
		Messages: normalized,
	})
}

// NormalizeChatMessages keeps the newest maxChatMessages turns. Roles must be
// user or assistant, content must be non-blank and the last turn must be the
// user's.
func NormalizeChatMessages(messages []llm.Message) ([]llm.Message, error) {
	if len(messages) == 0 {
		return nil, ErrChatMessagesRequired
	}
	if len(messages) > maxChatMessages {
		messages = messages[len(messages)-maxChatMessages:]
	}

	normalized := make([]llm.Message, 0, len(messages))
	for _, message := range messages {
		role := strings.TrimSpace(message.Role)
		if role != llm.RoleUser && role != llm.RoleAssistant {
			return nil, ErrInvalidChatMessage
		}
		if strings.TrimSpace(message.Content) == "" {
			return nil, ErrInvalidChatMessage
		}
		normalized = append(normalized, llm.Message{Role: role, Content: message.Content})
	}

	// Conversations sent upstream open with a user turn.
	for len(normalized) > 0 && normalized[0].Role != llm.RoleUser {
		normalized = normalized[1:]
	}
	if len(normalized) == 0 || normalized[len(normalized)-1].Role != llm.RoleUser {
		return nil, ErrInvalidChatMessage
	}
	return normalized, nil
}
