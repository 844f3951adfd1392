package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-applypilot-automation/internal/ai"
	"go-applypilot-automation/internal/backend"
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/orchestrator"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/screenshot"
	"go-applypilot-automation/internal/vault"
)

func newSuspendedJob(t *testing.T) (*Gate, *orchestrator.Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	orch := orchestrator.New(
		platform.NewClassifier(),
		backend.NewSimulation(),
		vault.New(vault.NewMemoryStore(), "test-secret"),
		ai.NewStaticClient(),
		nil,
		screenshot.NewLocalStore(dir),
		nil,
		orchestrator.NewAppliedCache(dir),
		95, //force every job below threshold
		dir,
	)

	jobID, _, _, err := orch.Submit(orchestrator.SubmitRequest{
		UserID:         "user-1",
		JobURL:         "https://boards.greenhouse.io/acme/jobs/1",
		JobDescription: "Looking for a Rust kernel developer.",
		Profile:        models.ApplicantProfile{UserID: "user-1", FullName: "Jane Doe", Email: "jane@example.com"},
		BaseResume: &models.Resume{
			//half-covered skills put the score at 50, below the threshold
			Skills:   map[string][]string{"Backend": {"Rust", "PostgreSQL"}},
			Projects: []models.Project{{Name: "Old Side Project"}},
		},
	})
	require.NoError(t, err)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := orch.Job(jobID); ok && job.Phase == models.PhaseSuggestingProjects {
			return New(orch), orch, jobID
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("job never suspended")
	return nil, nil, ""
}

func waitCompleted(t *testing.T, orch *orchestrator.Orchestrator, jobID string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp := orch.Status(jobID)
		if resp.Status == models.StatusCompleted {
			return
		}
		if resp.Status == models.StatusFailed {
			t.Fatalf("job failed: %s", resp.ErrorMessage)
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("job never completed")
}

func TestSuggestionsExposeContinuation(t *testing.T) {
	g, _, jobID := newSuspendedJob(t)

	suggestions, score, err := g.Suggestions(jobID)
	require.NoError(t, err)
	assert.NotEmpty(t, suggestions)
	assert.Greater(t, score, 0)

	_, _, err = g.Suggestions("no-such-job")
	assert.ErrorIs(t, err, orchestrator.ErrJobNotFound)
}

func TestApplyReplaceSwapsProjectAndResumes(t *testing.T) {
	g, orch, jobID := newSuspendedJob(t)

	suggestions, score, err := g.Suggestions(jobID)
	require.NoError(t, err)
	picked := suggestions[0]

	require.NoError(t, g.Apply(jobID, models.ProjectSelection{
		Suggestion: picked,
		Action:     models.ProjectActionReplace,
	}))
	waitCompleted(t, orch, jobID)

	job, ok := orch.Job(jobID)
	require.True(t, ok)
	assert.Equal(t, score+picked.ScoreDelta, job.MatchScore)
}

func TestApplyAddPrependsProject(t *testing.T) {
	g, orch, jobID := newSuspendedJob(t)

	suggestions, _, err := g.Suggestions(jobID)
	require.NoError(t, err)

	require.NoError(t, g.Apply(jobID, models.ProjectSelection{
		Suggestion: suggestions[1],
		Action:     models.ProjectActionAdd,
	}))
	waitCompleted(t, orch, jobID)
}

func TestApplySkipKeepsResumeUnchanged(t *testing.T) {
	g, orch, jobID := newSuspendedJob(t)

	_, score, err := g.Suggestions(jobID)
	require.NoError(t, err)

	require.NoError(t, g.Apply(jobID, models.ProjectSelection{Action: models.ProjectActionSkip}))
	waitCompleted(t, orch, jobID)

	job, ok := orch.Job(jobID)
	require.True(t, ok)
	assert.Equal(t, score, job.MatchScore, "skip must not move the score")
}

func TestApplyAddStartsFromBaselineWhenScoreUnknown(t *testing.T) {
	dir := t.TempDir()
	orch := orchestrator.New(
		platform.NewClassifier(),
		backend.NewSimulation(),
		vault.New(vault.NewMemoryStore(), "test-secret"),
		ai.NewStaticClient(),
		nil,
		screenshot.NewLocalStore(dir),
		nil,
		orchestrator.NewAppliedCache(dir),
		95,
		dir,
	)

	//zero skill overlap scores 0, so the continuation carries no usable score
	jobID, _, _, err := orch.Submit(orchestrator.SubmitRequest{
		UserID:         "user-1",
		JobURL:         "https://boards.greenhouse.io/acme/jobs/2",
		JobDescription: "Hiring a Haskell compiler engineer.",
		Profile:        models.ApplicantProfile{UserID: "user-1", FullName: "Jane Doe", Email: "jane@example.com"},
		BaseResume: &models.Resume{
			Skills: map[string][]string{"Backend": {"COBOL"}},
		},
	})
	require.NoError(t, err)

	g := New(orch)
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := orch.Job(jobID); ok && job.Phase == models.PhaseSuggestingProjects {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}

	suggestions, score, err := g.Suggestions(jobID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	//the delta lands on top of the baseline, not on the bare zero
	picked := suggestions[1]
	require.NoError(t, g.Apply(jobID, models.ProjectSelection{
		Suggestion: picked,
		Action:     models.ProjectActionAdd,
	}))
	waitCompleted(t, orch, jobID)

	job, ok := orch.Job(jobID)
	require.True(t, ok)
	assert.Equal(t, orchestrator.BaselineScore+picked.ScoreDelta, job.MatchScore)
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	g, _, jobID := newSuspendedJob(t)

	err := g.Apply(jobID, models.ProjectSelection{Action: "merge"})
	assert.Error(t, err)

	//the job is still suspended and can be resumed afterwards
	_, _, err = g.Suggestions(jobID)
	assert.NoError(t, err)
}

func TestApplyScoreClampedAt100(t *testing.T) {
	g, orch, jobID := newSuspendedJob(t)

	require.NoError(t, g.Apply(jobID, models.ProjectSelection{
		Suggestion: models.ProjectSuggestion{Title: "Moonshot", ScoreDelta: 500},
		Action:     models.ProjectActionAdd,
	}))
	waitCompleted(t, orch, jobID)

	job, ok := orch.Job(jobID)
	require.True(t, ok)
	assert.Equal(t, 100, job.MatchScore)
}
