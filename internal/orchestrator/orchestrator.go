// Sequence classification, field mapping, backend invocation, and the
// optional human-in-the-loop project substitution for one submission job.

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-applypilot-automation/internal/ai"
	"go-applypilot-automation/internal/backend"
	"go-applypilot-automation/internal/match"
	"go-applypilot-automation/internal/metrics"
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/pdf"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/reporter"
	"go-applypilot-automation/internal/screenshot"
	"go-applypilot-automation/internal/vault"
)

var (
	// ErrAlreadyApplied rejects a start for a (user, job) pair that already
	// has a completed submission on record.
	ErrAlreadyApplied = errors.New("application already submitted for this job")
	// ErrNotSuspended means the continuation entrypoint was called for a job
	// that is not waiting on a project selection.
	ErrNotSuspended = errors.New("job is not awaiting a project selection")
	// ErrJobNotFound means the job id is unknown to this process.
	ErrJobNotFound = errors.New("submission job not found")
)

// BaselineScore stands in when a prior match score is unknown at resume time.
const BaselineScore = 50

// SubmitRequest carries everything needed to start one submission.
// BaseResume comes from the resume-extraction collaborator; when nil a
// minimal resume is synthesized from the profile.
type SubmitRequest struct {
	UserID         string
	JobURL         string
	JobDescription string
	Profile        models.ApplicantProfile
	BaseResume     *models.Resume
}

// Continuation is the saved state of a suspended job: the only handoff
// surface between the pause at suggesting_projects and re-entry at
// optimizing.
type Continuation struct {
	JobID       string
	Resume      *models.Resume
	Score       int
	Suggestions []models.ProjectSuggestion
}

// Orchestrator runs the submission state machine:
// analyzing -> (suggesting_projects) -> optimizing -> generating_pdf ->
// submitting -> completed | failed.
type Orchestrator struct {
	classifier *platform.Classifier
	gateway    backend.Gateway
	sessions   *vault.Vault
	aiClient   ai.Client
	pdfGen     *pdf.Generator
	shots      screenshot.Store
	notify     *reporter.TelegramReporter
	history    *AppliedCache
	threshold  int
	workDir    string

	store *jobStore

	mu        sync.Mutex
	suspended map[string]*Continuation
}

func New(classifier *platform.Classifier, gw backend.Gateway, sessions *vault.Vault, aiClient ai.Client,
	pdfGen *pdf.Generator, shots screenshot.Store, notify *reporter.TelegramReporter,
	history *AppliedCache, threshold int, workDir string) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		gateway:    gw,
		sessions:   sessions,
		aiClient:   aiClient,
		pdfGen:     pdfGen,
		shots:      shots,
		notify:     notify,
		history:    history,
		threshold:  threshold,
		workDir:    workDir,
		store:      newJobStore(),
		suspended:  make(map[string]*Continuation),
	}
}

// Submit starts (or joins) a submission. When a job for the same
// (user, job URL) key is already in flight, the existing job id is returned
// with joined=true and a nil updates channel: the caller observes it through
// the polled status contract instead of a second stream.
func (o *Orchestrator) Submit(req SubmitRequest) (jobID string, updates <-chan models.ProgressUpdate, joined bool, err error) {
	if req.UserID == "" || req.JobURL == "" {
		return "", nil, false, fmt.Errorf("user id and job url are required")
	}
	if o.history != nil && o.history.IsApplied(req.UserID, req.JobURL) {
		return "", nil, false, ErrAlreadyApplied
	}

	runCtx, cancel := context.WithCancel(context.Background())

	job := models.SubmissionJob{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		JobURL:         req.JobURL,
		JobDescription: req.JobDescription,
		Profile:        req.Profile,
		Phase:          models.PhaseAnalyzing,
		Message:        "Queued",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	state, existingID := o.store.register(job, cancel)
	if existingID != "" {
		cancel()
		metrics.SubmissionsJoined.Inc()
		log.Printf("🔁 Joining in-flight submission %s for %s", existingID, req.JobURL)
		return existingID, nil, true, nil
	}

	baseResume := req.BaseResume
	if baseResume == nil {
		baseResume = resumeFromProfile(req.Profile)
	}

	go o.run(runCtx, job.ID, baseResume)

	return job.ID, state.updates, false, nil
}

// Status implements the polled status contract. Unknown ids report
// not_found, which callers must treat as distinct from failed.
func (o *Orchestrator) Status(jobID string) models.StatusResponse {
	job, ok := o.store.get(jobID)
	if !ok {
		return models.StatusResponse{Status: models.StatusNotFound}
	}
	return models.StatusOf(&job)
}

// Job returns the full snapshot for handlers that need more than the
// polled contract.
func (o *Orchestrator) Job(jobID string) (models.SubmissionJob, bool) {
	return o.store.get(jobID)
}

// Cancel aborts a running or suspended job. The run loop observes the
// context, marks the job failed, and releases the automation session on its
// way out. Safe to call more than once.
func (o *Orchestrator) Cancel(jobID string) bool {
	//the cancel func lookup, the context cancellation and the suspended-map
	//decision happen under one lock so a concurrent Resume cannot swap in a
	//fresh context between them
	o.mu.Lock()
	cancel := o.store.cancelFunc(jobID)
	if cancel == nil {
		o.mu.Unlock()
		return false
	}
	cancel()

	//a suspended job has no goroutine watching the context; finish it here
	_, wasSuspended := o.suspended[jobID]
	delete(o.suspended, jobID)
	o.mu.Unlock()

	if wasSuspended {
		o.fail(jobID, "cancelled while awaiting project selection")
	}
	return true
}

// Continuation returns the saved suspension state for a job, if any.
func (o *Orchestrator) Continuation(jobID string) (*Continuation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cont, ok := o.suspended[jobID]
	if !ok {
		if _, exists := o.store.get(jobID); !exists {
			return nil, ErrJobNotFound
		}
		return nil, ErrNotSuspended
	}
	return cont, nil
}

// Resume is the continuation entrypoint: it re-enters the state machine at
// optimizing with the updated resume content and revised match score.
func (o *Orchestrator) Resume(jobID string, resume *models.Resume, score int) error {
	o.mu.Lock()
	cont, ok := o.suspended[jobID]
	if !ok {
		o.mu.Unlock()
		return ErrNotSuspended
	}
	delete(o.suspended, jobID)
	//swap the cancel func before releasing the lock so Cancel either saw the
	//suspension or cancels the resumed run's context, never a stale one
	runCtx, cancel := context.WithCancel(context.Background())
	o.store.setCancel(jobID, cancel)
	o.mu.Unlock()

	if resume == nil {
		resume = cont.Resume
	}
	if score <= 0 {
		score = BaselineScore
	}

	o.store.update(jobID, func(j *models.SubmissionJob) {
		j.MatchScore = score
	})

	go func() {
		if o.continueFrom(runCtx, jobID, resume) {
			o.complete(runCtx, jobID)
		}
	}()
	return nil
}

// run drives a fresh job from analyzing onward. The goroutine exits early
// when the job suspends for project suggestions.
func (o *Orchestrator) run(ctx context.Context, jobID string, baseResume *models.Resume) {
	job, ok := o.store.get(jobID)
	if !ok {
		return
	}

	o.setPhase(jobID, models.PhaseAnalyzing, 5, "Analyzing job posting")

	classification := o.classifier.Classify(job.JobURL)
	log.Printf("🔍 %s classified as %s (confidence %.2f)", job.JobURL, classification.Platform, classification.Confidence)
	metrics.SubmissionsStarted.WithLabelValues(classification.Platform, o.gateway.Name()).Inc()

	score := match.CalculateMatchScore(baseResume, job.JobDescription)
	o.store.update(jobID, func(j *models.SubmissionJob) {
		j.MatchScore = score
	})

	if err := ctx.Err(); err != nil {
		o.fail(jobID, "cancelled")
		return
	}

	if score < o.threshold {
		o.suspend(ctx, jobID, baseResume, score)
		return
	}

	if o.continueFrom(ctx, jobID, baseResume) {
		o.complete(ctx, jobID)
	}
}

// suspend parks the job at suggesting_projects with a saved continuation.
// This is a deliberate pause point, not a failure: the goroutine ends and
// Resume picks the job back up.
func (o *Orchestrator) suspend(ctx context.Context, jobID string, resume *models.Resume, score int) {
	resumeJSON, _ := json.Marshal(resume)

	suggestions, err := o.aiClient.SuggestProjects(ctx, string(resumeJSON), o.mustJob(jobID).JobDescription, score)
	if err != nil {
		log.Printf("⚠️ Project suggestion generation failed: %v", err)
		suggestions = nil
	}

	o.mu.Lock()
	//a cancel that raced the suspension would otherwise park the job forever:
	//Cancel cancels the context under this same lock, so one of the two sides
	//is guaranteed to see the other
	if ctx.Err() != nil {
		o.mu.Unlock()
		o.fail(jobID, "cancelled")
		return
	}
	o.suspended[jobID] = &Continuation{
		JobID:       jobID,
		Resume:      resume,
		Score:       score,
		Suggestions: suggestions,
	}
	o.mu.Unlock()

	o.setPhase(jobID, models.PhaseSuggestingProjects, 15, "PROJECT_SUGGESTIONS_REQUIRED")
	log.Printf("⏸️ Job %s suspended: match score %d below threshold %d", jobID, score, o.threshold)
}

// continueFrom runs optimizing -> generating_pdf -> submitting. Returns
// true when the gateway confirmed the submission; on any terminal error it
// marks the job failed and returns false.
func (o *Orchestrator) continueFrom(ctx context.Context, jobID string, resume *models.Resume) bool {
	job := o.mustJob(jobID)

	//--- optimizing ---
	o.setPhase(jobID, models.PhaseOptimizing, 30, "Tailoring resume to the job description")

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		o.fail(jobID, fmt.Sprintf("could not encode resume: %v", err))
		return false
	}

	optimized, err := o.aiClient.OptimizeResume(ctx, string(resumeJSON), job.JobDescription)
	if err != nil {
		if ctx.Err() != nil {
			o.fail(jobID, "cancelled")
			return false
		}
		o.fail(jobID, fmt.Sprintf("resume optimization failed: %v", err))
		return false
	}

	//--- generating_pdf ---
	o.setPhase(jobID, models.PhaseGeneratingPDF, 50, "Rendering resume PDF")

	resumeURL := job.Profile.ResumeURL
	if o.pdfGen != nil {
		if pdfBytes, err := o.pdfGen.Generate(optimized); err != nil {
			//non-fatal: a resume-less submission may still proceed
			log.Printf("⚠️ PDF generation failed, continuing with original resume: %v", err)
		} else {
			path := filepath.Join(o.workDir, fmt.Sprintf("resume_%s.pdf", jobID))
			if err := pdf.SaveToFile(pdfBytes, path); err != nil {
				log.Printf("⚠️ Could not persist generated PDF: %v", err)
			} else if resumeURL == "" {
				resumeURL = "file://" + path
			}
		}
	}

	if err := ctx.Err(); err != nil {
		o.fail(jobID, "cancelled")
		return false
	}

	//--- submitting ---
	o.setPhase(jobID, models.PhaseSubmitting, 70, "Opening automation session")

	return o.submit(ctx, jobID, resumeURL)
}

// submit owns the AutomationSession for its whole lifetime. Close runs on
// every exit path: success, failure, and cancellation.
func (o *Orchestrator) submit(ctx context.Context, jobID, resumeURL string) bool {
	job := o.mustJob(jobID)
	classification := o.classifier.Classify(job.JobURL)

	opts, err := o.sessionOptions(ctx, job.UserID, classification)
	if err != nil {
		o.fail(jobID, err.Error())
		return false
	}

	sessionID, err := o.gateway.Open(ctx, opts)
	if err != nil {
		o.fail(jobID, fmt.Sprintf("could not open automation session: %v", err))
		return false
	}
	defer o.gateway.Close(context.WithoutCancel(ctx), sessionID)

	nav := o.gateway.Navigate(ctx, sessionID, job.JobURL)
	if !nav.Success {
		o.fail(jobID, fmt.Sprintf("navigation failed: %s", nav.Error))
		return false
	}

	o.setPhase(jobID, models.PhaseSubmitting, 80, fmt.Sprintf("Filling %s application form", classification.DisplayName))

	mapper := o.classifier.Mapper(classification.Platform)
	fill := o.gateway.Fill(ctx, sessionID, job.JobURL, mapper.MapFields(job.Profile), mapper.Mappings())
	if !fill.Success {
		o.fail(jobID, fmt.Sprintf("form fill failed: %s (filled %d, skipped %d)", fill.Error, len(fill.FieldsFilled), len(fill.FieldsSkipped)))
		return false
	}

	if resumeURL != "" {
		if up := o.gateway.UploadResume(ctx, sessionID, resumeURL, ""); !up.Success {
			//upload failure is logged but never aborts the pipeline
			log.Printf("⚠️ Resume upload failed for %s: %s", jobID, up.Error)
		}
	}

	if err := ctx.Err(); err != nil {
		o.fail(jobID, "cancelled")
		return false
	}

	o.setPhase(jobID, models.PhaseSubmitting, 90, "Submitting application")

	//no automatic retry here: submit may not be idempotent
	sub := o.gateway.Submit(ctx, sessionID)
	if !sub.Success {
		o.fail(jobID, fmt.Sprintf("submission failed: %s", sub.Error))
		return false
	}

	shotURL := o.persistScreenshot(ctx, jobID, sub.Screenshot, sessionID)

	o.store.update(jobID, func(j *models.SubmissionJob) {
		j.Result = &models.SubmissionResult{
			Success:          true,
			ConfirmationText: sub.ConfirmationText,
			RedirectURL:      sub.RedirectURL,
			ScreenshotURL:    shotURL,
		}
	})
	return true
}

// sessionOptions pulls vault artifacts for platforms that need a login.
// A missing or expired session is a re-authentication trigger, surfaced as
// its own failure mode rather than a generic error.
func (o *Orchestrator) sessionOptions(ctx context.Context, userID string, c platform.Classification) (backend.SessionOptions, error) {
	if !c.RequiresAuth || o.sessions == nil {
		return backend.SessionOptions{}, nil
	}

	data, err := o.sessions.Get(ctx, userID, c.Platform)
	if err != nil {
		o.sessions.LogEvent(ctx, userID, c.Platform, vault.EventLoginRequired, "no usable session at submit time")
		if errors.Is(err, vault.ErrDecryption) {
			return backend.SessionOptions{}, fmt.Errorf("stored %s session could not be decrypted, sign in again", c.DisplayName)
		}
		return backend.SessionOptions{}, fmt.Errorf("%s requires a login and no valid session exists (login at %s)", c.DisplayName, c.LoginURL)
	}

	metrics.VaultOperations.WithLabelValues("get").Inc()
	return backend.SessionOptions{
		Cookies: data.Cookies,
		Headers: data.Headers,
	}, nil
}

func (o *Orchestrator) persistScreenshot(ctx context.Context, jobID, shot, sessionID string) string {
	if shot == "" {
		shot = o.gateway.Screenshot(ctx, sessionID)
	}
	if shot == "" || o.shots == nil {
		return ""
	}
	url, err := o.shots.Save(ctx, jobID, shot)
	if err != nil {
		log.Printf("⚠️ Could not persist screenshot for %s: %v", jobID, err)
		return ""
	}
	return url
}

func (o *Orchestrator) complete(ctx context.Context, jobID string) {
	job := o.mustJob(jobID)
	classification := o.classifier.Classify(job.JobURL)

	o.setPhase(jobID, models.PhaseCompleted, 100, "Application submitted")
	o.store.finish(jobID)

	if o.history != nil {
		o.history.MarkApplied(job.UserID, job.JobURL)
	}
	metrics.SubmissionsFinished.WithLabelValues(classification.Platform, string(models.PhaseCompleted)).Inc()
	metrics.SubmissionDuration.WithLabelValues(classification.Platform).Observe(time.Since(job.CreatedAt).Seconds())

	final, _ := o.store.get(jobID)
	if err := o.notify.SendCompleted(&final); err != nil {
		log.Printf("⚠️ Telegram notification failed: %v", err)
	}
	log.Printf("✅ Job %s completed", jobID)
}

func (o *Orchestrator) fail(jobID, message string) {
	job, ok := o.store.get(jobID)
	if !ok || job.Phase.Terminal() {
		return
	}
	classification := o.classifier.Classify(job.JobURL)

	o.store.update(jobID, func(j *models.SubmissionJob) {
		j.Phase = models.PhaseFailed
		j.Error = message
		j.Message = message
	})
	o.store.finish(jobID)

	metrics.SubmissionsFinished.WithLabelValues(classification.Platform, string(models.PhaseFailed)).Inc()

	final, _ := o.store.get(jobID)
	if err := o.notify.SendFailed(&final); err != nil {
		log.Printf("⚠️ Telegram notification failed: %v", err)
	}
	log.Printf("❌ Job %s failed: %s", jobID, message)
}

func (o *Orchestrator) setPhase(jobID string, phase models.Phase, progress int, message string) {
	o.store.update(jobID, func(j *models.SubmissionJob) {
		j.Phase = phase
		j.Progress = progress
		j.Message = message
	})
}

func (o *Orchestrator) mustJob(jobID string) models.SubmissionJob {
	job, _ := o.store.get(jobID)
	return job
}

// resumeFromProfile synthesizes a minimal resume when the extraction
// collaborator provided none.
func resumeFromProfile(p models.ApplicantProfile) *models.Resume {
	return &models.Resume{
		PersonalInformation: models.PersonalInformation{
			FullName: p.FullName,
			Email:    p.Email,
			Phone:    p.Phone,
			Location: p.Location,
			Links: models.Link{
				LinkedIn: p.LinkedIn,
				GitHub:   p.GitHub,
			},
		},
	}
}
