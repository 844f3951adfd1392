package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"go-applypilot-automation/internal/models"
)

// staticClient is the deterministic fallback used when no GROQ_API_KEY is
// configured, the AI twin of the simulation backend: the pipeline still runs
// end to end, the resume just passes through untailored.
type staticClient struct{}

func NewStaticClient() Client {
	return &staticClient{}
}

func (s *staticClient) OptimizeResume(_ context.Context, baseResumeJSON string, _ string) (*models.Resume, error) {
	var resume models.Resume
	if err := json.Unmarshal([]byte(baseResumeJSON), &resume); err != nil {
		return nil, fmt.Errorf("failed to parse base resume: %w", err)
	}
	return &resume, nil
}

func (s *staticClient) SuggestProjects(_ context.Context, _ string, _ string, _ int) ([]models.ProjectSuggestion, error) {
	return []models.ProjectSuggestion{
		{
			Title:      "Job Board Aggregator",
			Summary:    "A crawler that aggregates postings from several ATS platforms into one feed.",
			TechStack:  []string{"Go", "PostgreSQL", "Playwright"},
			ScoreDelta: 15,
		},
		{
			Title:      "Resume Diff Viewer",
			Summary:    "A web tool that highlights what changed between two tailored resume versions.",
			TechStack:  []string{"Go", "HTMX"},
			ScoreDelta: 10,
		},
		{
			Title:      "Form Autofill Extension",
			Summary:    "A browser extension that maps a saved profile onto arbitrary application forms.",
			TechStack:  []string{"TypeScript", "WebExtensions"},
			ScoreDelta: 8,
		},
	}, nil
}
