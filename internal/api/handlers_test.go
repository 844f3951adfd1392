package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-applypilot-automation/internal/ai"
	"go-applypilot-automation/internal/backend"
	"go-applypilot-automation/internal/gate"
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/orchestrator"
	"go-applypilot-automation/internal/platform"
	"go-applypilot-automation/internal/screenshot"
	"go-applypilot-automation/internal/vault"
)

func newTestRouter(t *testing.T) (*gin.Engine, *orchestrator.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	classifier := platform.NewClassifier()
	orch := orchestrator.New(
		classifier,
		backend.NewSimulation(),
		vault.New(vault.NewMemoryStore(), "test-secret"),
		ai.NewStaticClient(),
		nil,
		screenshot.NewLocalStore(dir),
		nil,
		orchestrator.NewAppliedCache(dir),
		10,
		dir,
	)

	r := gin.New()
	NewHandler(orch, gate.New(orch), classifier).Register(r)
	return r, orch
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startPayload(jobURL string) map[string]any {
	return map[string]any{
		"user_id": "user-1",
		"job_url": jobURL,
		"profile": map[string]any{
			"user_id":   "user-1",
			"full_name": "Jane Doe",
			"email":     "jane@example.com",
		},
	}
}

func TestStartApplication(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/applications", startPayload("https://boards.greenhouse.io/acme/jobs/1"))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp struct {
		ApplicationID string `json:"application_id"`
		Joined        bool   `json:"joined"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ApplicationID)
	assert.False(t, resp.Joined)

	//duplicate start joins with 200 instead of 202
	w = doJSON(t, r, http.MethodPost, "/api/v1/applications", startPayload("https://boards.greenhouse.io/acme/jobs/1"))
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		ApplicationID string `json:"application_id"`
		Joined        bool   `json:"joined"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.True(t, second.Joined)
	assert.Equal(t, resp.ApplicationID, second.ApplicationID)
}

func TestStartApplicationValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/applications", map[string]any{"user_id": "user-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationStatus(t *testing.T) {
	r, orch := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/applications", startPayload("https://jobs.lever.co/acme/xyz"))
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		ApplicationID string `json:"application_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if orch.Status(resp.ApplicationID).Status == models.StatusCompleted {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/applications/"+resp.ApplicationID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
}

func TestApplicationStatusUnknownID(t *testing.T) {
	r, _ := newTestRouter(t)

	//unknown ids are a 200 with not_found so pollers can count misses
	w := doJSON(t, r, http.MethodGet, "/api/v1/applications/ghost/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.StatusNotFound, status.Status)
}

func TestCancelApplication(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/applications", startPayload("https://boards.greenhouse.io/acme/jobs/2"))
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		ApplicationID string `json:"application_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodPost, "/api/v1/applications/"+resp.ApplicationID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/applications/ghost/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestionsEndpointsForNonSuspendedJob(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/applications/ghost/suggestions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/applications/ghost/suggestions", map[string]any{"action": "skip"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassifyPlatformEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/platforms/classify?url=https://boards.greenhouse.io/acme/jobs/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var verdict platform.Classification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.Equal(t, "greenhouse", verdict.Platform)
	assert.Equal(t, 0.95, verdict.Confidence)

	w = doJSON(t, r, http.MethodGet, "/api/v1/platforms/classify", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
