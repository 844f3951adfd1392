package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-applypilot-automation/internal/ai"
	"go-applypilot-automation/internal/api"
	"go-applypilot-automation/internal/backend"
	"go-applypilot-automation/internal/config"
	"go-applypilot-automation/internal/gate"
	"go-applypilot-automation/internal/orchestrator"
	"go-applypilot-automation/internal/pdf"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/reporter"
	"go-applypilot-automation/internal/screenshot"
	"go-applypilot-automation/internal/vault"
)

func main() {
	//load config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}
	log.Printf("🔧 Config loaded. Match threshold: %d", cfg.MatchThreshold)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	//session vault: Postgres when DATABASE_URL is set, in-memory otherwise
	var store vault.Store
	if cfg.DatabaseURL != "" {
		pg, err := vault.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect session store: %v", err)
		}
		defer pg.Close()
		store = pg
		log.Println("🗄️  Session vault backed by Postgres.")
	} else {
		store = vault.NewMemoryStore()
		log.Println("⚠️ DATABASE_URL not set, session vault is in-memory only.")
	}
	sessions := vault.New(store, cfg.MasterSecret)

	//automation backend, selected once at startup
	gateway, err := backend.Select(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to select automation backend: %v", err)
	}
	log.Printf("🤖 Automation backend: %s", gateway.Name())

	//AI collaborator: Groq when a key is present, deterministic fallback otherwise
	var aiClient ai.Client
	if cfg.GroqAPIKey != "" {
		aiClient = ai.NewGrokClient(cfg.GroqAPIKey)
		log.Println("🧠 Groq AI client initialized.")
	} else {
		aiClient = ai.NewStaticClient()
		log.Println("⚠️ GROQ_API_KEY not set, using static resume optimizer.")
	}

	//screenshot store: S3 when a bucket is configured, local dir otherwise
	var shots screenshot.Store
	if cfg.ScreenshotBucket != "" {
		s3Store, err := screenshot.NewS3Store(ctx, cfg.ScreenshotBucket)
		if err != nil {
			log.Fatalf("❌ Failed to init S3 screenshot store: %v", err)
		}
		shots = s3Store
		log.Printf("📸 Screenshots uploaded to s3://%s", cfg.ScreenshotBucket)
	} else {
		shots = screenshot.NewLocalStore(cfg.ScreenshotDir)
		log.Printf("📸 Screenshots saved under %s", cfg.ScreenshotDir)
	}

	//telegram notifications are optional, a nil reporter is a no-op
	var notify *reporter.TelegramReporter
	if cfg.TelegramToken != "" {
		notify, err = reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram reporter disabled: %v", err)
		} else {
			log.Println("🤖 Telegram reporter initialized.")
		}
	}

	classifier := platform.NewClassifier()
	history := orchestrator.NewAppliedCache(cfg.CachePath)
	pdfGen := pdf.NewGenerator(cfg.ResumeTemplatePath)

	orch := orchestrator.New(classifier, gateway, sessions, aiClient,
		pdfGen, shots, notify, history, cfg.MatchThreshold, cfg.CachePath)
	suggestionGate := gate.New(orch)

	//router + CORS
	r := gin.Default()
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	handler := api.NewHandler(orch, suggestionGate, classifier)
	handler.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
