package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/llm"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"
)

// summaryEntryLimit bounds how many entries feed the prompt's aggregates.
const summaryEntryLimit = 500

// InsightsService answers free-form questions about the imported data by
// forwarding a data summary plus the question to a chat completion
// provider. It is a thin pass-through: no retrieval, no tools.
type InsightsService interface {
	// Chat streams the assistant's answer via onDelta and returns it whole.
	Chat(ctx context.Context, message string, history []llm.Message, onDelta func(string)) (string, error)
}

type insightsService struct {
	client   llm.ChatClient
	projects repositories.ProjectRepository
	entries  repositories.TimeEntryRepository
	logger   *zap.Logger
}

// NewInsightsService creates the insights chat service.
func NewInsightsService(
	client llm.ChatClient,
	projects repositories.ProjectRepository,
	entries repositories.TimeEntryRepository,
	logger *zap.Logger,
) InsightsService {
	return &insightsService{
		client:   client,
		projects: projects,
		entries:  entries,
		logger:   logger.Named("insights"),
	}
}

func (s *insightsService) Chat(ctx context.Context, message string, history []llm.Message, onDelta func(string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("no message provided")
	}

	system, err := s.buildSystemPrompt(ctx)
	if err != nil {
		return "", err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	return s.client.StreamChat(ctx, system, messages, onDelta)
}

// buildSystemPrompt summarizes the stored data: the project list with its
// descriptive fields and hours aggregated per project from time entries.
func (s *insightsService) buildSystemPrompt(ctx context.Context) (string, error) {
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load projects for summary: %w", err)
	}
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load entries for summary: %w", err)
	}
	if len(entries) > summaryEntryLimit {
		entries = entries[:summaryEntryLimit]
	}

	var projectLines []string
	for _, p := range projects {
		line := "- " + p.Name
		if p.AuthoringTool != "" {
			line += " | Tool: " + p.AuthoringTool
		}
		if p.Vertical != "" {
			line += " | Vertical: " + p.Vertical
		}
		if p.CourseType != "" {
			line += " | Type: " + p.CourseType
		}
		if p.IDAssigned != "" {
			line += " | Assigned: " + p.IDAssigned
		}
		if p.ReportingYear != "" {
			line += " | Year: " + p.ReportingYear
		}
		projectLines = append(projectLines, line)
	}

	hoursByProject := make(map[string]float64)
	totalHours := 0.0
	for _, e := range entries {
		name := e.ProjectName
		if name == "" {
			name = "Unknown"
		}
		hoursByProject[name] += e.Hours
		totalHours += e.Hours
	}

	type projectHours struct {
		name  string
		hours float64
	}
	ranked := make([]projectHours, 0, len(hoursByProject))
	for name, hours := range hoursByProject {
		ranked = append(ranked, projectHours{name, hours})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].hours > ranked[j].hours })

	var hoursLines []string
	for _, ph := range ranked {
		hoursLines = append(hoursLines, fmt.Sprintf("- %s: %gh", ph.name, round2(ph.hours)))
	}

	projectSummary := strings.Join(projectLines, "\n")
	if projectSummary == "" {
		projectSummary = "No projects yet."
	}
	hoursSummary := strings.Join(hoursLines, "\n")
	if hoursSummary == "" {
		hoursSummary = "No time entries yet."
	}

	return fmt.Sprintf(`You are an analytics assistant for a project time tracking application. You help analyze course development time data.

Here is the current data:

## Projects (%d total):
%s

## Hours by Project (%g total hours):
%s

## Time Entries: %d entries across %d projects.

Answer questions about this data concisely. Use specific numbers. If asked about trends or comparisons, reference the actual data. Format responses with markdown.`,
		len(projects), projectSummary, round2(totalHours), hoursSummary, len(entries), len(hoursByProject)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
