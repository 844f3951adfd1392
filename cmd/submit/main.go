package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go-applypilot-automation/internal/ai"
	"go-applypilot-automation/internal/backend"
	"go-applypilot-automation/internal/config"
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/orchestrator"
	"go-applypilot-automation/internal/pdf"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/poller"
	"go-applypilot-automation/internal/screenshot"
	"go-applypilot-automation/internal/vault"
)

// One-shot submission: start an application for a single job URL and poll it
// to a terminal state. Useful for trying a platform mapping without the
// server running.
func main() {
	userID := flag.String("user", "", "user id owning the application")
	jobURL := flag.String("url", "", "job posting URL")
	jobDesc := flag.String("desc", "", "job description text (optional)")
	name := flag.String("name", "", "applicant full name")
	email := flag.String("email", "", "applicant email")
	phone := flag.String("phone", "", "applicant phone")
	flag.Parse()

	if *userID == "" || *jobURL == "" || *name == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	gateway, err := backend.Select(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to select automation backend: %v", err)
	}
	log.Printf("🤖 Automation backend: %s", gateway.Name())

	var aiClient ai.Client
	if cfg.GroqAPIKey != "" {
		aiClient = ai.NewGrokClient(cfg.GroqAPIKey)
	} else {
		aiClient = ai.NewStaticClient()
	}

	sessions := vault.New(vault.NewMemoryStore(), cfg.MasterSecret)
	classifier := platform.NewClassifier()
	orch := orchestrator.New(classifier, gateway, sessions, aiClient,
		pdf.NewGenerator(cfg.ResumeTemplatePath),
		screenshot.NewLocalStore(cfg.ScreenshotDir),
		nil, orchestrator.NewAppliedCache(cfg.CachePath),
		cfg.MatchThreshold, cfg.CachePath)

	verdict := classifier.Classify(*jobURL)
	log.Printf("🔍 Platform: %s (confidence %.2f)", verdict.Platform, verdict.Confidence)

	jobID, _, joined, err := orch.Submit(orchestrator.SubmitRequest{
		UserID:         *userID,
		JobURL:         *jobURL,
		JobDescription: *jobDesc,
		Profile: models.ApplicantProfile{
			UserID:   *userID,
			FullName: *name,
			Email:    *email,
			Phone:    *phone,
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to start submission: %v", err)
	}
	if joined {
		log.Printf("ℹ️ Joined an in-flight submission: %s", jobID)
	} else {
		log.Printf("🚀 Submission started: %s", jobID)
	}

	done := make(chan struct{})
	p := poller.New(jobID, func(ctx context.Context, id string) (models.StatusResponse, error) {
		return orch.Status(id), nil
	}, poller.Callbacks{
		OnProgress: func(resp models.StatusResponse) {
			log.Printf("⏳ %s %d%% (%s)", resp.Status, resp.Progress, resp.CurrentStep)
		},
		OnComplete: func(resp models.StatusResponse) {
			log.Printf("✅ Application submitted! Screenshot: %s", resp.ScreenshotURL)
			close(done)
		},
		OnFailed: func(resp models.StatusResponse) {
			log.Printf("❌ Submission failed: %s", resp.ErrorMessage)
			close(done)
		},
		OnNotFound: func() {
			log.Println("❌ Job record unreachable, giving up.")
			close(done)
		},
		OnManualRequired: func() {
			log.Println("⚠️ Automatic polling exhausted, still processing. Check status later.")
			close(done)
		},
	})
	p.Start()

	select {
	case <-done:
	case <-time.After(10 * time.Minute):
		log.Println("⚠️ Timed out waiting for a terminal state.")
	}
	p.Stop()
	log.Printf("🕒 Total processing time: %s", p.Elapsed().Round(time.Second))
}
