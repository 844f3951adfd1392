// Define the operation contract shared by all automation backends.
// Ensure consistency

package backend

import (
	"context"
	"fmt"

	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/vault"
)

// SessionOptions seeds a new automation session with authentication
// artifacts pulled from the vault, when the platform requires them.
type SessionOptions struct {
	Cookies []vault.Cookie
	Headers map[string]string
}

// NavigateResult reports a navigation attempt. Expected failures (timeout,
// unreachable page) come back as Success=false with Error set, never as a
// Go error.
type NavigateResult struct {
	Success    bool   `json:"success"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Screenshot string `json:"screenshot,omitempty"`
	Error      string `json:"error,omitempty"`
}

// FillResult reports a form-fill attempt. Partial success (some fields
// filled, others not found) is a valid non-exceptional outcome.
type FillResult struct {
	Success       bool              `json:"success"`
	FieldsFilled  map[string]string `json:"fieldsFilled"`
	FieldsSkipped []string          `json:"fieldsSkipped"`
	Screenshot    string            `json:"screenshot,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// UploadResult reports a resume upload. Failure here is non-fatal to the
// pipeline: a resume-less submission may still proceed.
type UploadResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SubmitResult is the terminal gateway outcome of one submission.
type SubmitResult struct {
	Success          bool   `json:"success"`
	ConfirmationText string `json:"confirmationText,omitempty"`
	RedirectURL      string `json:"redirectUrl,omitempty"`
	Screenshot       string `json:"screenshot,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Gateway is the uniform operation surface over the three interchangeable
// backends. Implementations return structured results even on failure and
// only return Go errors for programmer/configuration mistakes detected
// before any remote call.
type Gateway interface {
	//Name is the backend name (browserbase, hosted, simulation)
	Name() string

	//Open creates one remote automation session and returns its opaque id.
	//The handle is exclusively owned by the caller until Close.
	Open(ctx context.Context, opts SessionOptions) (string, error)

	Navigate(ctx context.Context, sessionID, url string) NavigateResult

	Fill(ctx context.Context, sessionID, url string, data map[string]string, mappings []platform.FieldMapping) FillResult

	UploadResume(ctx context.Context, sessionID, resumeURL, selector string) UploadResult

	Submit(ctx context.Context, sessionID string) SubmitResult

	//Screenshot returns a base64 PNG, or "" when capture failed
	Screenshot(ctx context.Context, sessionID string) string

	//Close releases the session. Best-effort: it never reports an error.
	Close(ctx context.Context, sessionID string)
}

// ConfigurationError means no backend is usable with the current settings.
// It fails fast before any remote call and is never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("automation backend misconfigured: %s", e.Reason)
}

// splitFields partitions the field map into non-empty values to fill and
// keys whose values are empty. Empty values are recorded as skipped, not
// filled.
func splitFields(data map[string]string) (fill map[string]string, skipped []string) {
	fill = make(map[string]string, len(data))
	for k, v := range data {
		if v == "" {
			skipped = append(skipped, k)
			continue
		}
		fill[k] = v
	}
	return fill, skipped
}
