package ai

import (
	"context"
	"fmt"

	"go-applypilot-automation/internal/models"
)

// Client is the interface for AI providers
type Client interface {
	// OptimizeResume takes a JSON string of a base resume and a job description
	// string, and returns a resume rewritten toward that job.
	OptimizeResume(ctx context.Context, baseResumeJSON string, jobDescription string) (*models.Resume, error)

	// SuggestProjects proposes portfolio projects that would lift a weak
	// match score, each with an estimated score delta.
	SuggestProjects(ctx context.Context, baseResumeJSON string, jobDescription string, matchScore int) ([]models.ProjectSuggestion, error)
}

// buildOptimizeSystemPrompt creates the system instruction for resume tailoring
func buildOptimizeSystemPrompt() string {
	return `You are an expert ATS-friendly resume writer.
I will provide you with a base resume in JSON format, and a Target Job Description.

Task:
1. Keep the JSON structure EXACTLY the same. Key names must not change. Keep company names, durations, education, and certifications exactly as they are.
2. ADAPT THE JOB TITLE: Change 'job_title' in personal_information to match the target role.
3. AGGRESSIVE FILTERING: Remove skills and projects that do NOT align with the Job Description.
4. REWRITE EXPERIENCES: Rewrite 'summary' and the 'responsibilities' bullet points. Shift the focus toward the required tech stack and keywords. Do not invent experience, but re-prioritize and deeply tailor what exists.
5. Return ONLY a valid, raw JSON object representing the entire tailored resume. Do NOT wrap the JSON in markdown blocks. Output just the literal JSON string starting with { and ending with }.`
}

func buildOptimizeUserPrompt(baseResumeJSON, jobDescription string) string {
	return fmt.Sprintf("Base Resume (JSON):\n%s\n\nJob Description:\n%s\n\nPlease output the tailored resume in EXACTLY the same JSON structure.", baseResumeJSON, jobDescription)
}

// buildSuggestSystemPrompt creates the system instruction for project suggestions
func buildSuggestSystemPrompt() string {
	return `You are a career coach for software engineers.
Given a resume (JSON), a job description, and the current match score (0-100), propose exactly 3 portfolio projects the candidate could build to close the gap.

Return ONLY a raw JSON array. Each element: {"title": string, "summary": string, "tech_stack": [string], "score_delta": int}. score_delta is the estimated match-score improvement (5-25). No markdown blocks.`
}

func buildSuggestUserPrompt(baseResumeJSON, jobDescription string, matchScore int) string {
	return fmt.Sprintf("Resume (JSON):\n%s\n\nJob Description:\n%s\n\nCurrent match score: %d/100", baseResumeJSON, jobDescription, matchScore)
}
