package match

import (
	"testing"

	"go-applypilot-automation/internal/models"
)

func TestCalculateMatchScore(t *testing.T) {
	tests := []struct {
		name           string
		resume         *models.Resume
		jobDescription string
		expected       int
	}{
		{
			name: "full skill coverage with title bonus",
			resume: &models.Resume{
				PersonalInformation: models.PersonalInformation{JobTitle: "Backend Engineer"},
				Skills:              map[string][]string{"Backend": {"Go", "PostgreSQL"}},
			},
			jobDescription: "Backend engineer role working with Go and PostgreSQL.",
			expected:       100, //100 coverage + 10 title, clamped
		},
		{
			name: "half coverage",
			resume: &models.Resume{
				Skills: map[string][]string{"Backend": {"Go", "Rust"}},
			},
			jobDescription: "We need Go experience.",
			expected:       50,
		},
		{
			name: "seniority penalty",
			resume: &models.Resume{
				Summary: "Junior developer seeking first role",
				Skills:  map[string][]string{"Backend": {"Go"}},
			},
			jobDescription: "Senior engineer, Go, 7+ years required.",
			expected:       80, //100 coverage - 20 seniority mismatch
		},
		{
			name:           "empty job description is neutral",
			resume:         &models.Resume{Skills: map[string][]string{"Backend": {"Go"}}},
			jobDescription: "  ",
			expected:       50,
		},
		{
			name:           "no declared skills",
			resume:         &models.Resume{},
			jobDescription: "Anything at all",
			expected:       40,
		},
		{
			name: "experience tech stack counts",
			resume: &models.Resume{
				Experience: []models.Experience{{TechStack: []string{"Kafka", "Redis"}}},
			},
			jobDescription: "Event pipeline on Kafka and Redis.",
			expected:       100,
		},
		{
			name: "diacritics normalized",
			resume: &models.Resume{
				Skills: map[string][]string{"Data": {"Médias"}},
			},
			jobDescription: "Working with medias pipelines",
			expected:       100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateMatchScore(tt.resume, tt.jobDescription)
			if score != tt.expected {
				t.Errorf("got %d, want %d", score, tt.expected)
			}
		})
	}
}
