package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/datatypes"
)

// CurriculumBlob is the single serialized curriculum state older clients kept
// in local storage. Field names follow that format.
type CurriculumBlob struct {
	Vow                    *string             `json:"vow"`
	CurrentNode            string              `json:"currentNode"`
	CompletedNodes         []string            `json:"completedNodes"`
	Streak                 int                 `json:"streak"`
	LastPracticeDate       *string             `json:"lastPracticeDate"`
	Sessions               []BlobSession       `json:"sessions"`
	MissedDayReflections   []BlobMissedDay     `json:"missedDayReflections"`
	ReadinessGateResponses []BlobReadinessGate `json:"readinessGateResponses"`
	TrackProgress          map[string]string   `json:"trackProgress"`
}

type BlobSession struct {
	ID         string `json:"id,omitempty"`
	Date       string `json:"date"`
	PracticeID string `json:"practiceId"`
	Reflection string `json:"reflection"`
	Node       string `json:"node,omitempty"`
}

type BlobMissedDay struct {
	Date     string `json:"date"`
	Response string `json:"response"`
}

type BlobReadinessGate struct {
	Node     string `json:"node"`
	Response string `json:"response"`
	Date     string `json:"date"`
}

// ParseCurriculumBlob accepts the bare state or the {"state": ..., "version": n}
// envelope written by persisted client stores.
func ParseCurriculumBlob(raw []byte) (CurriculumBlob, error) {
	var envelope struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return CurriculumBlob{}, fmt.Errorf("%w: %v", ErrInvalidCurriculumState, err)
	}
	if trimmed := bytes.TrimSpace(envelope.State); len(trimmed) > 0 && trimmed[0] == '{' {
		raw = envelope.State
	}

	var blob CurriculumBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return CurriculumBlob{}, fmt.Errorf("%w: %v", ErrInvalidCurriculumState, err)
	}
	return blob, nil
}

func (service *CurriculumService) ExportState(ctx context.Context, userID uint) (CurriculumBlob, error) {
	user, err := service.loadUser(ctx, userID)
	if err != nil {
		return CurriculumBlob{}, err
	}
	entries, err := service.journal.ListByUser(ctx, userID, "")
	if err != nil {
		return CurriculumBlob{}, fmt.Errorf("%w: %v", ErrCurriculumLoadFailed, err)
	}

	blob := CurriculumBlob{
		Vow:                    user.Vow,
		CurrentNode:            currentNodeOf(user),
		CompletedNodes:         append([]string{}, user.CompletedNodes...),
		Streak:                 user.Streak,
		LastPracticeDate:       user.LastPracticeDate,
		Sessions:               []BlobSession{},
		MissedDayReflections:   []BlobMissedDay{},
		ReadinessGateResponses: []BlobReadinessGate{},
		TrackProgress:          trackProgressOf(user),
	}
	for _, entry := range entries {
		switch entry.EntryType {
		case models.JournalSession:
			blob.Sessions = append(blob.Sessions, BlobSession{
				ID:         entry.ID.String(),
				Date:       entry.EntryDate,
				PracticeID: entry.StringAttribute(attributePracticeID),
				Reflection: entry.StringAttribute(attributeReflection),
				Node:       entry.StringAttribute(attributeNode),
			})
		case models.JournalMissedDay:
			blob.MissedDayReflections = append(blob.MissedDayReflections, BlobMissedDay{
				Date:     entry.EntryDate,
				Response: entry.StringAttribute(attributeResponse),
			})
		case models.JournalReadinessGate:
			blob.ReadinessGateResponses = append(blob.ReadinessGateResponses, BlobReadinessGate{
				Node:     entry.StringAttribute(attributeNode),
				Response: entry.StringAttribute(attributeResponse),
				Date:     entry.EntryDate,
			})
		}
	}
	return blob, nil
}

// ImportState replaces the user's curriculum profile and journal with blob.
// Nothing is written when any part of the blob is invalid.
func (service *CurriculumService) ImportState(ctx context.Context, userID uint, blob CurriculumBlob, today time.Time) (CurriculumState, error) {
	entries, updates, err := curriculumRecordsFromBlob(blob)
	if err != nil {
		return CurriculumState{}, err
	}
	if err := service.journal.ReplaceAll(ctx, userID, entries, updates); err != nil {
		return CurriculumState{}, fmt.Errorf("%w: %v", ErrCurriculumUpdateFailed, err)
	}
	return service.State(ctx, userID, today)
}

func curriculumRecordsFromBlob(blob CurriculumBlob) ([]models.JournalEntry, map[string]any, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrInvalidCurriculumState, reason)
	}

	if blob.Streak < 0 {
		return nil, nil, invalid("negative streak")
	}

	currentNode := strings.TrimSpace(blob.CurrentNode)
	if currentNode == "" {
		currentNode = models.DefaultCurrentNode
	}
	if !IsValidNode(currentNode) {
		return nil, nil, invalid("unknown current node " + currentNode)
	}

	completed := make(datatypes.JSONSlice[string], 0, len(blob.CompletedNodes))
	for _, node := range blob.CompletedNodes {
		if !IsValidNode(node) {
			return nil, nil, invalid("unknown completed node " + node)
		}
		if !slices.Contains(completed, node) {
			completed = append(completed, node)
		}
	}

	tracks := make(map[string]string, len(blob.TrackProgress))
	for category, object := range blob.TrackProgress {
		if !IsValidNode(NodeID(category, object)) {
			return nil, nil, invalid("unknown track " + category + "-" + object)
		}
		tracks[category] = object
	}

	var lastPracticeDate *string
	if blob.LastPracticeDate != nil {
		day, ok := normalizeBlobDay(*blob.LastPracticeDate)
		if !ok {
			return nil, nil, invalid("bad last practice date")
		}
		lastPracticeDate = &day
	}

	var vow *string
	if blob.Vow != nil && strings.TrimSpace(*blob.Vow) != "" {
		trimmed := strings.TrimSpace(*blob.Vow)
		vow = &trimmed
	}

	entries := make([]models.JournalEntry, 0, len(blob.Sessions)+len(blob.MissedDayReflections)+len(blob.ReadinessGateResponses))
	for _, session := range blob.Sessions {
		day, ok := normalizeBlobDay(session.Date)
		if !ok {
			return nil, nil, invalid("bad session date")
		}
		attributes := datatypes.JSONMap{
			attributePracticeID: session.PracticeID,
			attributeReflection: session.Reflection,
		}
		if session.Node != "" {
			attributes[attributeNode] = session.Node
		}
		entries = append(entries, models.JournalEntry{EntryType: models.JournalSession, EntryDate: day, Attributes: attributes})
	}
	for _, missed := range blob.MissedDayReflections {
		day, ok := normalizeBlobDay(missed.Date)
		if !ok {
			return nil, nil, invalid("bad missed day date")
		}
		entries = append(entries, models.JournalEntry{
			EntryType:  models.JournalMissedDay,
			EntryDate:  day,
			Attributes: datatypes.JSONMap{attributeResponse: missed.Response},
		})
	}
	for _, gate := range blob.ReadinessGateResponses {
		day, ok := normalizeBlobDay(gate.Date)
		if !ok || !IsValidNode(gate.Node) {
			return nil, nil, invalid("bad readiness gate response")
		}
		entries = append(entries, models.JournalEntry{
			EntryType: models.JournalReadinessGate,
			EntryDate: day,
			Attributes: datatypes.JSONMap{
				attributeNode:     gate.Node,
				attributeResponse: gate.Response,
			},
		})
	}

	updates := map[string]any{
		"vow":                vow,
		"current_node":       currentNode,
		"completed_nodes":    completed,
		"streak":             blob.Streak,
		"last_practice_date": lastPracticeDate,
		"track_progress":     datatypes.NewJSONType(tracks),
	}
	return entries, updates, nil
}

// normalizeBlobDay accepts YYYY-MM-DD or a full ISO timestamp and keeps the
// calendar day.
func normalizeBlobDay(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(DayLayout) {
		return "", false
	}
	day := raw[:len(DayLayout)]
	return day, IsValidDayKey(day)
}
