package models

import (
	"time"
)

// Phase is the orchestrator state for one submission attempt.
type Phase string

const (
	PhaseAnalyzing          Phase = "analyzing"
	PhaseSuggestingProjects Phase = "suggesting_projects"
	PhaseOptimizing         Phase = "optimizing"
	PhaseGeneratingPDF      Phase = "generating_pdf"
	PhaseSubmitting         Phase = "submitting"
	PhaseCompleted          Phase = "completed"
	PhaseFailed             Phase = "failed"
)

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// SubmissionJob tracks one application attempt end to end.
// Progress is monotonically non-decreasing while the job is active.
type SubmissionJob struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	JobURL         string            `json:"job_url"`
	JobDescription string            `json:"job_description"`
	Profile        ApplicantProfile  `json:"profile"`
	Phase          Phase             `json:"phase"`
	Progress       int               `json:"progress"`
	Message        string            `json:"message"`
	MatchScore     int               `json:"match_score"`
	Error          string            `json:"error,omitempty"`
	Result         *SubmissionResult `json:"result,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SubmissionResult is the terminal payload of a completed job.
type SubmissionResult struct {
	Success          bool   `json:"success"`
	ConfirmationText string `json:"confirmation_text,omitempty"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	ScreenshotURL    string `json:"screenshot_url,omitempty"`
}

// ProgressUpdate is one status-callback event delivered over a job's
// progress channel: (stepName, percent, message).
type ProgressUpdate struct {
	Step     Phase  `json:"step"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Status values of the polled status contract. not_found means the job
// record itself is unreachable, which is distinct from failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNotFound   = "not_found"
)

// StatusResponse is the wire shape returned by GET status(applicationId)
// and consumed by the progress poller.
type StatusResponse struct {
	Status                 string `json:"status"`
	Progress               int    `json:"progress,omitempty"`
	CurrentStep            string `json:"currentStep,omitempty"`
	EstimatedTimeRemaining int    `json:"estimatedTimeRemaining,omitempty"`
	ScreenshotURL          string `json:"screenshotUrl,omitempty"`
	ErrorMessage           string `json:"errorMessage,omitempty"`
}

// StatusOf collapses a job snapshot into the polled contract.
func StatusOf(job *SubmissionJob) StatusResponse {
	resp := StatusResponse{
		Progress:    job.Progress,
		CurrentStep: string(job.Phase),
	}
	switch job.Phase {
	case PhaseCompleted:
		resp.Status = StatusCompleted
		if job.Result != nil {
			resp.ScreenshotURL = job.Result.ScreenshotURL
		}
	case PhaseFailed:
		resp.Status = StatusFailed
		resp.ErrorMessage = job.Error
	case PhaseAnalyzing:
		if job.Progress == 0 {
			resp.Status = StatusPending
		} else {
			resp.Status = StatusProcessing
		}
	default:
		resp.Status = StatusProcessing
	}
	return resp
}
