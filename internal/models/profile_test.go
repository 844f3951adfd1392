package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		first    string
		last     string
	}{
		{"two words", "Jane Doe", "Jane", "Doe"},
		{"three words keep remainder together", "Mary Jane Watson", "Mary", "Jane Watson"},
		{"single word yields empty last name", "Madonna", "Madonna", ""},
		{"tab separator", "Jane\tDoe", "Jane", "Doe"},
		{"surrounding whitespace trimmed", "  Jane Doe  ", "Jane", "Doe"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ApplicantProfile{FullName: tt.fullName}
			first, last := p.SplitName()
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		job    SubmissionJob
		status string
	}{
		{"queued job reads pending", SubmissionJob{Phase: PhaseAnalyzing, Progress: 0}, StatusPending},
		{"analyzing with progress reads processing", SubmissionJob{Phase: PhaseAnalyzing, Progress: 5}, StatusProcessing},
		{"suspended job reads processing", SubmissionJob{Phase: PhaseSuggestingProjects, Progress: 15}, StatusProcessing},
		{"completed", SubmissionJob{Phase: PhaseCompleted, Progress: 100}, StatusCompleted},
		{"failed", SubmissionJob{Phase: PhaseFailed, Error: "boom"}, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := StatusOf(&tt.job)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestStatusOfCarriesTerminalPayload(t *testing.T) {
	job := SubmissionJob{
		Phase:    PhaseCompleted,
		Progress: 100,
		Result:   &SubmissionResult{Success: true, ScreenshotURL: "https://shots/abc.png"},
	}
	resp := StatusOf(&job)
	assert.Equal(t, "https://shots/abc.png", resp.ScreenshotURL)

	job = SubmissionJob{Phase: PhaseFailed, Error: "form fill failed"}
	resp = StatusOf(&job)
	assert.Equal(t, "form fill failed", resp.ErrorMessage)
}

func TestPhaseTerminal(t *testing.T) {
	assert.True(t, PhaseCompleted.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhaseAnalyzing.Terminal())
	assert.False(t, PhaseSuggestingProjects.Terminal())
}

func TestProjectActionValid(t *testing.T) {
	assert.True(t, ProjectActionReplace.Valid())
	assert.True(t, ProjectActionAdd.Valid())
	assert.True(t, ProjectActionSkip.Valid())
	assert.False(t, ProjectAction("merge").Valid())
	assert.False(t, ProjectAction("").Valid())
}

func TestResumeProjectMutations(t *testing.T) {
	r := &Resume{}

	r.ReplaceProject(Project{Name: "first"})
	assert.Len(t, r.Projects, 1)

	r.AddProject(Project{Name: "newest"})
	assert.Equal(t, "newest", r.Projects[0].Name)
	assert.Len(t, r.Projects, 2)

	r.ReplaceProject(Project{Name: "swap"})
	assert.Len(t, r.Projects, 2)
	assert.Equal(t, "swap", r.Projects[1].Name)
}
