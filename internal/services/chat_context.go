package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
)

const (
	ChatRecentLogLimit      = 20
	ChatLogDayWindow        = 7
	ChatPastExperimentLimit = 5
)

type ActiveExperimentContext struct {
	Experiment models.Experiment
	CurrentDay int
}

// ResearchContext is the data a chat turn is grounded in. Build it with
// NewResearchContext so the entry and experiment caps apply.
type ResearchContext struct {
	Today            string
	ActiveExperiment *ActiveExperimentContext
	RecentLogs       []models.LogEntry
	PastExperiments  []models.Experiment

	metricsByExperiment map[uuid.UUID][]models.MetricDefinition
}

// NewResearchContext keeps the newest ChatRecentLogLimit entries of
// recentLogs (expected newest first) and the first ChatPastExperimentLimit
// non-active experiments.
func NewResearchContext(today string, active *ActiveExperimentContext, experiments []models.Experiment, recentLogs []models.LogEntry) ResearchContext {
	metrics := make(map[uuid.UUID][]models.MetricDefinition, len(experiments)+1)
	past := make([]models.Experiment, 0, ChatPastExperimentLimit)
	for _, experiment := range experiments {
		metrics[experiment.ID] = experiment.Metrics
		if experiment.IsActive() || len(past) == ChatPastExperimentLimit {
			continue
		}
		past = append(past, experiment)
	}
	if active != nil {
		metrics[active.Experiment.ID] = active.Experiment.Metrics
	}

	if len(recentLogs) > ChatRecentLogLimit {
		recentLogs = recentLogs[:ChatRecentLogLimit]
	}

	return ResearchContext{
		Today:               today,
		ActiveExperiment:    active,
		RecentLogs:          recentLogs,
		PastExperiments:     past,
		metricsByExperiment: metrics,
	}
}

func BuildSystemPrompt(research ResearchContext) string {
	var prompt strings.Builder
	prompt.WriteString(promptPreamble)
	fmt.Fprintf(&prompt, "## Today\n\nToday is %s.\n\n", research.Today)

	prompt.WriteString("## Current Experiment\n\n")
	if active := research.ActiveExperiment; active != nil {
		names := make([]string, 0, len(active.Experiment.Metrics))
		for _, metric := range active.Experiment.Metrics {
			names = append(names, metric.Name)
		}
		fmt.Fprintf(&prompt, "**Title:** %s\n", active.Experiment.Title)
		fmt.Fprintf(&prompt, "**Hypothesis:** %s\n", active.Experiment.Hypothesis)
		fmt.Fprintf(&prompt, "**Protocol:** %s\n", active.Experiment.Protocol)
		fmt.Fprintf(&prompt, "**Metrics:** %s\n", strings.Join(names, ", "))
		fmt.Fprintf(&prompt, "**Progress:** Day %d of %d\n\n", active.CurrentDay, active.Experiment.DurationDays)
	} else {
		prompt.WriteString("No active experiment. The user may want help designing one.\n\n")
	}

	fmt.Fprintf(&prompt, "## Recent Logs\n\n%s\n\n", research.formatLogs())

	if len(research.PastExperiments) > 0 {
		fmt.Fprintf(&prompt, "## Past Experiments\n\n%s\n\n", formatPastExperiments(research.PastExperiments))
	}

	prompt.WriteString(promptGuidelines)
	return prompt.String()
}

func (research ResearchContext) formatLogs() string {
	if len(research.RecentLogs) == 0 {
		return "No logs yet."
	}

	dates := make([]string, 0)
	byDate := make(map[string][]models.LogEntry)
	for _, entry := range research.RecentLogs {
		if _, exists := byDate[entry.EntryDate]; !exists {
			dates = append(dates, entry.EntryDate)
		}
		byDate[entry.EntryDate] = append(byDate[entry.EntryDate], entry)
	}
	slices.Sort(dates)
	slices.Reverse(dates)
	if len(dates) > ChatLogDayWindow {
		dates = dates[:ChatLogDayWindow]
	}

	lines := make([]string, 0, len(research.RecentLogs)*4)
	for _, date := range dates {
		lines = append(lines, fmt.Sprintf("--- %s ---", date))
		for _, entry := range byDate[date] {
			lines = append(lines, fmt.Sprintf("[%s]", LogEntryTypeLabel(entry.EntryType)))
			if entry.SitDurationMinutes != nil && *entry.SitDurationMinutes > 0 {
				lines = append(lines, fmt.Sprintf("Duration: %d min", *entry.SitDurationMinutes))
			}
			if ratings := formatRatings(entry.Ratings, research.metricsByExperiment[entry.ExperimentID]); ratings != "" {
				lines = append(lines, "Ratings: "+ratings)
			}
			if entry.Notes != nil && strings.TrimSpace(*entry.Notes) != "" {
				lines = append(lines, "Notes: "+*entry.Notes)
			}
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func LogEntryTypeLabel(entryType string) string {
	switch entryType {
	case models.LogBeforeSit:
		return "Before Sit"
	case models.LogAfterSit:
		return "After Sit"
	default:
		return "EOD"
	}
}

// formatRatings renders ratings in metric definition order as name: value/max.
// Ratings without a known metric follow in key order with the raw key.
func formatRatings(ratings map[string]float64, metrics []models.MetricDefinition) string {
	parts := make([]string, 0, len(ratings))
	known := make(map[string]bool, len(metrics))
	for _, metric := range metrics {
		known[metric.ID] = true
		value, ok := ratings[metric.ID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s/%d", metric.Name, formatRating(value), metric.ScaleMax()))
	}

	unknown := make([]string, 0)
	for key := range ratings {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	for _, key := range unknown {
		parts = append(parts, fmt.Sprintf("%s: %s", key, formatRating(ratings[key])))
	}
	return strings.Join(parts, ", ")
}

func formatRating(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatPastExperiments(experiments []models.Experiment) string {
	blocks := make([]string, 0, len(experiments))
	for _, experiment := range experiments {
		block := fmt.Sprintf("**%s** (%d days, %s)\nHypothesis: %s", experiment.Title, experiment.DurationDays, experiment.Status, experiment.Hypothesis)
		if experiment.Conclusion != nil && *experiment.Conclusion != "" {
			block += "\nConclusion: " + *experiment.Conclusion
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

const promptPreamble = `You are a contemplative research partner. You help users investigate their inner life with scientific curiosity and rigor.

## Your Role

You are a collaborator, not a teacher. You help users:
- Design experiments that test real hypotheses about their practice
- Notice patterns in their data they might miss
- Ask good questions about what they're observing
- Maintain scientific honesty: null results are data too
- Connect findings to broader contemplative traditions when relevant

## Your Style

- Curious and engaged, never judgmental
- Ask questions that sharpen their inquiry
- Point out patterns: "Your clarity scores are 2 points higher after morning sits vs evening"
- Celebrate good methodology, not just good outcomes
- Honest about uncertainty: "We'd need more data to know if that's a pattern"
- Grounded in the data they've collected
- Concise, this is a conversation and not a lecture

`

const promptGuidelines = `## Guidelines

- Ground conversations in their actual data
- If they haven't logged today, note it without judgment
- Help them see patterns across time
- When they're struggling, help them adjust the experiment rather than abandoning it
- The goal is insight, not achievement
- If they ask about their hypothesis, evaluate it honestly based on the data
`
