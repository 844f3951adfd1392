package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"go-applypilot-automation/internal/metrics"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/vault"
)

// Hosted drives an externally hosted automation service over HTTP. The
// service owns the browsers; this client only exchanges JSON. Network and
// remote-form failures come back as structured results, never as Go errors.
type Hosted struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHosted(baseURL, apiKey string) *Hosted {
	return &Hosted{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (h *Hosted) Name() string {
	return "hosted"
}

type hostedSessionRequest struct {
	Cookies []vault.Cookie    `json:"cookies,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type hostedSessionResponse struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error,omitempty"`
}

func (h *Hosted) Open(ctx context.Context, opts SessionOptions) (string, error) {
	var resp hostedSessionResponse
	err := h.post(ctx, "/sessions", hostedSessionRequest{Cookies: opts.Cookies, Headers: opts.Headers}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to open automation session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("failed to open automation session: %s", resp.Error)
	}
	return resp.SessionID, nil
}

type hostedNavigateRequest struct {
	URL string `json:"url"`
}

func (h *Hosted) Navigate(ctx context.Context, sessionID, url string) NavigateResult {
	var result NavigateResult
	if err := h.post(ctx, "/sessions/"+sessionID+"/navigate", hostedNavigateRequest{URL: url}, &result); err != nil {
		metrics.BackendOperations.WithLabelValues(h.Name(), "navigate", "error").Inc()
		return NavigateResult{Success: false, URL: url, Error: err.Error()}
	}
	metrics.BackendOperations.WithLabelValues(h.Name(), "navigate", outcome(result.Success)).Inc()
	return result
}

type hostedFillRequest struct {
	URL      string                  `json:"url"`
	Data     map[string]string       `json:"data"`
	Mappings []platform.FieldMapping `json:"mappings,omitempty"`
}

func (h *Hosted) Fill(ctx context.Context, sessionID, url string, data map[string]string, mappings []platform.FieldMapping) FillResult {
	//the service fills non-empty values only; empty ones are reported skipped
	fill, skipped := splitFields(data)

	var result FillResult
	if err := h.post(ctx, "/sessions/"+sessionID+"/fill", hostedFillRequest{URL: url, Data: fill, Mappings: mappings}, &result); err != nil {
		metrics.BackendOperations.WithLabelValues(h.Name(), "fill", "error").Inc()
		return FillResult{Success: false, FieldsFilled: map[string]string{}, FieldsSkipped: skipped, Error: err.Error()}
	}
	if result.FieldsFilled == nil {
		result.FieldsFilled = map[string]string{}
	}
	result.FieldsSkipped = append(result.FieldsSkipped, skipped...)
	metrics.BackendOperations.WithLabelValues(h.Name(), "fill", outcome(result.Success)).Inc()
	return result
}

type hostedUploadRequest struct {
	ResumeURL string `json:"resumeUrl"`
	Selector  string `json:"selector,omitempty"`
}

func (h *Hosted) UploadResume(ctx context.Context, sessionID, resumeURL, selector string) UploadResult {
	var result UploadResult
	if err := h.post(ctx, "/sessions/"+sessionID+"/upload", hostedUploadRequest{ResumeURL: resumeURL, Selector: selector}, &result); err != nil {
		metrics.BackendOperations.WithLabelValues(h.Name(), "upload", "error").Inc()
		return UploadResult{Success: false, Error: err.Error()}
	}
	metrics.BackendOperations.WithLabelValues(h.Name(), "upload", outcome(result.Success)).Inc()
	return result
}

func (h *Hosted) Submit(ctx context.Context, sessionID string) SubmitResult {
	var result SubmitResult
	if err := h.post(ctx, "/sessions/"+sessionID+"/submit", struct{}{}, &result); err != nil {
		metrics.BackendOperations.WithLabelValues(h.Name(), "submit", "error").Inc()
		return SubmitResult{Success: false, Error: err.Error()}
	}
	metrics.BackendOperations.WithLabelValues(h.Name(), "submit", outcome(result.Success)).Inc()
	return result
}

type hostedScreenshotResponse struct {
	Screenshot string `json:"screenshot"`
}

func (h *Hosted) Screenshot(ctx context.Context, sessionID string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/sessions/"+sessionID+"/screenshot", nil)
	if err != nil {
		return ""
	}
	h.setHeaders(req)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var out hostedScreenshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.Screenshot
}

func (h *Hosted) Close(ctx context.Context, sessionID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"/sessions/"+sessionID, nil)
	if err != nil {
		return
	}
	h.setHeaders(req)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️ Failed to close automation session %s: %v", sessionID, err)
		return
	}
	resp.Body.Close()
}

// post sends a JSON body and decodes the JSON response into out. A non-2xx
// status is an error here; callers turn it into a structured result.
func (h *Hosted) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	h.setHeaders(req)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("automation service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (h *Hosted) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
}

func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}
