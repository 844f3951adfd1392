package backend

import (
	"log"

	"go-applypilot-automation/internal/config"
)

// Select picks the backend once at process start, in priority order:
// Browserbase > hosted automation service > simulation. The choice is
// immutable for the process lifetime; there is no runtime mode switching.
func Select(cfg *config.Config) (Gateway, error) {
	if cfg.BrowserbaseAPIKey != "" {
		if cfg.BrowserbaseProjectID == "" {
			return nil, &ConfigurationError{Reason: "BROWSERBASE_API_KEY is set but BROWSERBASE_PROJECT_ID is missing"}
		}
		log.Println("🌐 Automation backend: Browserbase (managed remote browser)")
		return NewBrowserbase(cfg.BrowserbaseAPIKey, cfg.BrowserbaseProjectID), nil
	}

	if cfg.AutomationServiceURL != "" {
		log.Printf("🌐 Automation backend: hosted service at %s", cfg.AutomationServiceURL)
		return NewHosted(cfg.AutomationServiceURL, cfg.AutomationServiceKey), nil
	}

	if cfg.RequireRealBackend {
		return nil, &ConfigurationError{Reason: "no automation backend configured and simulation is disabled"}
	}

	log.Println("🧪 Automation backend: simulation (no real backend configured)")
	return NewSimulation(), nil
}
