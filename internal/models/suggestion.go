package models

// ProjectSuggestion is an AI-proposed portfolio project that would lift the
// match score by ScoreDelta points. Produced by the AI collaborator,
// consumed by the project suggestion gate.
type ProjectSuggestion struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	TechStack  []string `json:"tech_stack"`
	ScoreDelta int      `json:"score_delta"`
}

// ProjectAction is the human decision for one suggestion.
type ProjectAction string

const (
	ProjectActionReplace ProjectAction = "replace"
	ProjectActionAdd     ProjectAction = "add"
	ProjectActionSkip    ProjectAction = "skip"
)

// Valid reports whether the action is one of replace/add/skip.
func (a ProjectAction) Valid() bool {
	switch a {
	case ProjectActionReplace, ProjectActionAdd, ProjectActionSkip:
		return true
	}
	return false
}

// ProjectSelection is the gate input: which suggestion, and what to do with it.
type ProjectSelection struct {
	Suggestion ProjectSuggestion `json:"suggestion"`
	Action     ProjectAction     `json:"action"`
}
