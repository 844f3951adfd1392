package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/playwright-community/playwright-go"

	"go-applypilot-automation/internal/metrics"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/vault"
	"go-applypilot-automation/utils"
)

const browserbaseAPI = "https://api.browserbase.com/v1"

// Browserbase is the managed remote-browser backend: sessions are created
// through the Browserbase REST API and driven over CDP with playwright.
type Browserbase struct {
	apiKey     string
	projectID  string
	httpClient *http.Client

	pwOnce sync.Once
	pw     *playwright.Playwright
	pwErr  error

	mu       sync.Mutex
	sessions map[string]*bbSession
}

type bbSession struct {
	remoteID string
	browser  playwright.Browser
	page     playwright.Page
}

func NewBrowserbase(apiKey, projectID string) *Browserbase {
	return &Browserbase{
		apiKey:    apiKey,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sessions: make(map[string]*bbSession),
	}
}

func (b *Browserbase) Name() string {
	return "browserbase"
}

type bbCreateRequest struct {
	ProjectID string `json:"projectId"`
}

type bbCreateResponse struct {
	ID         string `json:"id"`
	ConnectURL string `json:"connectUrl"`
}

func (b *Browserbase) Open(ctx context.Context, opts SessionOptions) (string, error) {
	b.pwOnce.Do(func() {
		b.pw, b.pwErr = playwright.Run()
	})
	if b.pwErr != nil {
		return "", fmt.Errorf("could not start playwright: %w", b.pwErr)
	}

	remote, err := b.createRemoteSession(ctx)
	if err != nil {
		return "", err
	}

	browser, err := b.pw.Chromium.ConnectOverCDP(remote.ConnectURL)
	if err != nil {
		return "", fmt.Errorf("could not connect to remote browser: %w", err)
	}

	//the remote browser arrives with one default context
	var browserCtx playwright.BrowserContext
	if contexts := browser.Contexts(); len(contexts) > 0 {
		browserCtx = contexts[0]
	} else {
		browserCtx, err = browser.NewContext()
		if err != nil {
			browser.Close()
			return "", fmt.Errorf("could not create browser context: %w", err)
		}
	}

	if len(opts.Cookies) > 0 {
		if err := browserCtx.AddCookies(toPlaywrightCookies(opts.Cookies)); err != nil {
			log.Printf("⚠️ Failed to seed session cookies: %v", err)
		}
	}

	var page playwright.Page
	if pages := browserCtx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = browserCtx.NewPage()
		if err != nil {
			browser.Close()
			return "", fmt.Errorf("could not create page: %w", err)
		}
	}

	if len(opts.Headers) > 0 {
		page.SetExtraHTTPHeaders(opts.Headers)
	}

	b.mu.Lock()
	b.sessions[remote.ID] = &bbSession{remoteID: remote.ID, browser: browser, page: page}
	b.mu.Unlock()

	return remote.ID, nil
}

func (b *Browserbase) createRemoteSession(ctx context.Context) (*bbCreateResponse, error) {
	payload, err := json.Marshal(bbCreateRequest{ProjectID: b.projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, browserbaseAPI+"/sessions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-BB-API-Key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browserbase request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("browserbase returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out bbCreateResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	return &out, nil
}

func (b *Browserbase) Navigate(ctx context.Context, sessionID, url string) NavigateResult {
	sess := b.session(sessionID)
	if sess == nil {
		return NavigateResult{Success: false, URL: url, Error: "unknown session"}
	}

	if _, err := sess.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		metrics.BackendOperations.WithLabelValues(b.Name(), "navigate", "error").Inc()
		return NavigateResult{Success: false, URL: url, Error: err.Error(), Screenshot: b.capture(sess)}
	}

	title, _ := sess.page.Title()
	metrics.BackendOperations.WithLabelValues(b.Name(), "navigate", "ok").Inc()
	return NavigateResult{
		Success: true,
		URL:     sess.page.URL(),
		Title:   title,
	}
}

func (b *Browserbase) Fill(ctx context.Context, sessionID, url string, data map[string]string, mappings []platform.FieldMapping) FillResult {
	sess := b.session(sessionID)
	if sess == nil {
		return FillResult{Success: false, FieldsFilled: map[string]string{}, Error: "unknown session"}
	}

	fill, skipped := splitFields(data)
	filled := make(map[string]string, len(fill))

	//selector hints first, in mapping order
	for _, m := range mappings {
		value, ok := fill[m.Field]
		if !ok {
			continue
		}
		utils.ScrollIntoView(sess.page, m.Selector)
		if b.fillField(sess.page, m.Selector, value) {
			filled[m.Field] = value
		} else {
			skipped = append(skipped, m.Field)
		}
		delete(fill, m.Field)
		utils.HumanPause(200, 600)
	}

	//best-guess selectors for anything without a hint
	for field, value := range fill {
		selector := fmt.Sprintf(`input[name=%q], textarea[name=%q]`, field, field)
		if b.fillField(sess.page, selector, value) {
			filled[field] = value
		} else {
			skipped = append(skipped, field)
		}
	}

	result := FillResult{
		Success:       len(filled) > 0,
		FieldsFilled:  filled,
		FieldsSkipped: skipped,
	}
	if !result.Success {
		result.Error = "no fields could be filled"
		result.Screenshot = b.capture(sess)
	}
	metrics.BackendOperations.WithLabelValues(b.Name(), "fill", outcome(result.Success)).Inc()
	return result
}

func (b *Browserbase) fillField(page playwright.Page, selector, value string) bool {
	locator := page.Locator(selector).First()
	count, err := locator.Count()
	if err != nil || count == 0 {
		return false
	}
	if err := locator.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(5000)}); err != nil {
		log.Printf("⚠️ Could not fill %q: %v", selector, err)
		return false
	}
	return true
}

func (b *Browserbase) UploadResume(ctx context.Context, sessionID, resumeURL, selector string) UploadResult {
	sess := b.session(sessionID)
	if sess == nil {
		return UploadResult{Success: false, Error: "unknown session"}
	}
	if selector == "" {
		selector = `input[type="file"]`
	}

	data, err := b.download(ctx, resumeURL)
	if err != nil {
		metrics.BackendOperations.WithLabelValues(b.Name(), "upload", "error").Inc()
		return UploadResult{Success: false, Error: fmt.Sprintf("could not download resume: %v", err)}
	}

	err = sess.page.SetInputFiles(selector, []playwright.InputFile{{
		Name:     "resume.pdf",
		MimeType: "application/pdf",
		Buffer:   data,
	}})
	if err != nil {
		metrics.BackendOperations.WithLabelValues(b.Name(), "upload", "error").Inc()
		return UploadResult{Success: false, Error: err.Error()}
	}

	metrics.BackendOperations.WithLabelValues(b.Name(), "upload", "ok").Inc()
	return UploadResult{Success: true}
}

func (b *Browserbase) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var confirmationSelectors = []string{
	"#application_confirmation",
	".application-confirmation",
	`[data-qa="confirmation"]`,
	"h1",
}

func (b *Browserbase) Submit(ctx context.Context, sessionID string) SubmitResult {
	sess := b.session(sessionID)
	if sess == nil {
		return SubmitResult{Success: false, Error: "unknown session"}
	}

	//brief human-ish pause before committing
	utils.MouseJiggle(sess.page)
	utils.HumanPause(400, 900)

	submit := sess.page.Locator(`button[type="submit"], input[type="submit"], #submit_app`).First()
	if err := submit.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(10000)}); err != nil {
		metrics.BackendOperations.WithLabelValues(b.Name(), "submit", "error").Inc()
		return SubmitResult{Success: false, Error: err.Error(), Screenshot: b.capture(sess)}
	}

	if err := sess.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(15000),
	}); err != nil {
		log.Printf("⚠️ Post-submit load state not reached: %v", err)
	}

	result := SubmitResult{
		Success:     true,
		RedirectURL: sess.page.URL(),
		Screenshot:  b.capture(sess),
	}
	for _, sel := range confirmationSelectors {
		locator := sess.page.Locator(sel).First()
		if count, err := locator.Count(); err != nil || count == 0 {
			continue
		}
		if text, err := locator.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(2000)}); err == nil {
			result.ConfirmationText = strings.TrimSpace(text)
			break
		}
	}

	metrics.BackendOperations.WithLabelValues(b.Name(), "submit", "ok").Inc()
	return result
}

func (b *Browserbase) Screenshot(_ context.Context, sessionID string) string {
	sess := b.session(sessionID)
	if sess == nil {
		return ""
	}
	return b.capture(sess)
}

func (b *Browserbase) capture(sess *bbSession) string {
	shot, err := sess.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(shot)
}

func (b *Browserbase) Close(_ context.Context, sessionID string) {
	b.mu.Lock()
	sess := b.sessions[sessionID]
	delete(b.sessions, sessionID)
	b.mu.Unlock()

	if sess == nil {
		return
	}
	if err := sess.browser.Close(); err != nil {
		log.Printf("⚠️ Failed to close remote browser %s: %v", sessionID, err)
	}
}

func (b *Browserbase) session(id string) *bbSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[id]
}

func toPlaywrightCookies(cookies []vault.Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pc := playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(c.Domain),
			Path:   playwright.String(c.Path),
		}
		if c.Expires > 0 {
			pc.Expires = playwright.Float(c.Expires)
		}
		if c.HTTPOnly {
			pc.HttpOnly = playwright.Bool(true)
		}
		if c.Secure {
			pc.Secure = playwright.Bool(true)
		}
		switch strings.ToLower(c.SameSite) {
		case "lax":
			pc.SameSite = playwright.SameSiteAttributeLax
		case "strict":
			pc.SameSite = playwright.SameSiteAttributeStrict
		case "none":
			pc.SameSite = playwright.SameSiteAttributeNone
		}
		out[i] = pc
	}
	return out
}
