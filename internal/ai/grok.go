package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-applypilot-automation/internal/models"
)

const grokURL = "https://api.groq.com/openai/v1/chat/completions"

type grokClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGrokClient creates a Groq API client
func NewGrokClient(apiKey string) Client {
	return &grokClient{
		apiKey:     apiKey,
		model:      "llama-3.3-70b-versatile", // Groq's fast Llama-3 model
		httpClient: &http.Client{},
	}
}

type grokMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type grokRequest struct {
	Model       string        `json:"model"`
	Messages    []grokMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type grokResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OptimizeResume sends the base resume and job description to Groq and
// parses the tailored resume.
func (c *grokClient) OptimizeResume(ctx context.Context, baseResumeJSON string, jobDescription string) (*models.Resume, error) {
	raw, err := c.complete(ctx, buildOptimizeSystemPrompt(), buildOptimizeUserPrompt(baseResumeJSON, jobDescription))
	if err != nil {
		return nil, err
	}

	var tailored models.Resume
	if err := json.Unmarshal([]byte(raw), &tailored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI response to Resume struct (raw length: %d): %w", len(raw), err)
	}
	return &tailored, nil
}

// SuggestProjects asks Groq for portfolio projects that would lift the score.
func (c *grokClient) SuggestProjects(ctx context.Context, baseResumeJSON string, jobDescription string, matchScore int) ([]models.ProjectSuggestion, error) {
	raw, err := c.complete(ctx, buildSuggestSystemPrompt(), buildSuggestUserPrompt(baseResumeJSON, jobDescription, matchScore))
	if err != nil {
		return nil, err
	}

	var suggestions []models.ProjectSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI suggestions (raw length: %d): %w", len(raw), err)
	}
	return suggestions, nil
}

func (c *grokClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := grokRequest{
		Model: c.model,
		Messages: []grokMessage{
			{
				Role:    "system",
				Content: systemPrompt,
			},
			{
				Role:    "user",
				Content: userPrompt,
			},
		},
		Temperature: 0.3, // Low temperature for consistency
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grok request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", grokURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("grok API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var grokResp grokResponse
	if err := json.Unmarshal(bodyBytes, &grokResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if grokResp.Error != nil {
		return "", fmt.Errorf("API error: %s", grokResp.Error.Message)
	}

	if len(grokResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from grok API")
	}

	return cleanMarkdownJSON(grokResp.Choices[0].Message.Content), nil
}

// cleanMarkdownJSON removes backticks and "json" prefix if the AI model tries to be helpful
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
