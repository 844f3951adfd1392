// Resume a suspended submission once a human picked what to do with the
// suggested project.

package gate

import (
	"fmt"
	"strings"

	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/orchestrator"
)

// Gate applies a replace|add|skip decision to a suspended job and re-enters
// the orchestrator through its continuation entrypoint. It exists because
// the analyzing step can produce a score too low to justify submission:
// instead of failing outright, control comes back to a human here.
type Gate struct {
	orch *orchestrator.Orchestrator
}

func New(orch *orchestrator.Orchestrator) *Gate {
	return &Gate{orch: orch}
}

// Suggestions returns the proposals saved with the job's continuation.
func (g *Gate) Suggestions(jobID string) ([]models.ProjectSuggestion, int, error) {
	cont, err := g.orch.Continuation(jobID)
	if err != nil {
		return nil, 0, err
	}
	return cont.Suggestions, cont.Score, nil
}

// Apply computes the new resume content and adjusted score for the
// selection, then resumes the orchestrator at optimizing. skip resumes with
// the unmodified resume and original score.
func (g *Gate) Apply(jobID string, selection models.ProjectSelection) error {
	if !selection.Action.Valid() {
		return fmt.Errorf("invalid project action %q", selection.Action)
	}

	cont, err := g.orch.Continuation(jobID)
	if err != nil {
		return err
	}

	resume := cont.Resume
	score := cont.Score

	if selection.Action != models.ProjectActionSkip {
		project := models.Project{
			Name:        selection.Suggestion.Title,
			Description: selection.Suggestion.Summary,
			Details:     []string{"Tech stack: " + strings.Join(selection.Suggestion.TechStack, ", ")},
			Status:      "planned",
		}

		switch selection.Action {
		case models.ProjectActionReplace:
			resume.ReplaceProject(project)
		case models.ProjectActionAdd:
			resume.AddProject(project)
		}

		//an unknown prior score starts from the baseline so the delta is
		//additive, not the whole score
		if score <= 0 {
			score = orchestrator.BaselineScore
		}
		score += selection.Suggestion.ScoreDelta
		if score > 100 {
			score = 100
		}
	}

	return g.orch.Resume(jobID, resume, score)
}
