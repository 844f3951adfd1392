package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-applypilot-automation/internal/metrics"
	"go-applypilot-automation/internal/platform"
)

// stepDelay is the fixed pause before every simulated operation, long
// enough for pollers and progress streams to observe intermediate phases.
const stepDelay = 150 * time.Millisecond

// Simulation is the deterministic backend used when no real automation
// service is configured. Every operation succeeds after a fixed delay, so
// the orchestrator and pollers are fully exercised without live automation.
type Simulation struct {
	mu       sync.Mutex
	sessions map[string]*simSession
}

type simSession struct {
	lastURL string
	filled  map[string]string
}

func NewSimulation() *Simulation {
	return &Simulation{
		sessions: make(map[string]*simSession),
	}
}

func (s *Simulation) Name() string {
	return "simulation"
}

func (s *Simulation) Open(_ context.Context, _ SessionOptions) (string, error) {
	id := "sim-" + uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &simSession{filled: make(map[string]string)}
	s.mu.Unlock()
	return id, nil
}

func (s *Simulation) Navigate(ctx context.Context, sessionID, url string) NavigateResult {
	if err := pause(ctx); err != nil {
		return NavigateResult{Success: false, URL: url, Error: err.Error()}
	}
	sess := s.session(sessionID)
	if sess == nil {
		return NavigateResult{Success: false, URL: url, Error: "unknown session"}
	}
	sess.lastURL = url
	metrics.BackendOperations.WithLabelValues(s.Name(), "navigate", "ok").Inc()
	return NavigateResult{
		Success: true,
		URL:     url,
		Title:   "Simulated Application Form",
	}
}

func (s *Simulation) Fill(ctx context.Context, sessionID, url string, data map[string]string, _ []platform.FieldMapping) FillResult {
	if err := pause(ctx); err != nil {
		return FillResult{Success: false, Error: err.Error()}
	}
	sess := s.session(sessionID)
	if sess == nil {
		return FillResult{Success: false, Error: "unknown session"}
	}

	filled, skipped := splitFields(data)
	for k, v := range filled {
		sess.filled[k] = v
	}
	metrics.BackendOperations.WithLabelValues(s.Name(), "fill", "ok").Inc()
	return FillResult{
		Success:       len(filled) > 0,
		FieldsFilled:  filled,
		FieldsSkipped: skipped,
	}
}

func (s *Simulation) UploadResume(ctx context.Context, sessionID, resumeURL, _ string) UploadResult {
	if err := pause(ctx); err != nil {
		return UploadResult{Success: false, Error: err.Error()}
	}
	if s.session(sessionID) == nil {
		return UploadResult{Success: false, Error: "unknown session"}
	}
	if resumeURL == "" {
		return UploadResult{Success: false, Error: "no resume url"}
	}
	metrics.BackendOperations.WithLabelValues(s.Name(), "upload", "ok").Inc()
	return UploadResult{Success: true}
}

func (s *Simulation) Submit(ctx context.Context, sessionID string) SubmitResult {
	if err := pause(ctx); err != nil {
		return SubmitResult{Success: false, Error: err.Error()}
	}
	sess := s.session(sessionID)
	if sess == nil {
		return SubmitResult{Success: false, Error: "unknown session"}
	}
	metrics.BackendOperations.WithLabelValues(s.Name(), "submit", "ok").Inc()
	return SubmitResult{
		Success:          true,
		ConfirmationText: fmt.Sprintf("Application submitted (%d fields)", len(sess.filled)),
		RedirectURL:      sess.lastURL + "/confirmation",
	}
}

func (s *Simulation) Screenshot(_ context.Context, sessionID string) string {
	if s.session(sessionID) == nil {
		return ""
	}
	//1x1 transparent PNG
	return "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
}

func (s *Simulation) Close(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *Simulation) session(id string) *simSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(stepDelay):
		return nil
	}
}
