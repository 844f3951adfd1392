package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-applypilot-automation/internal/config"
)

func TestSplitFields(t *testing.T) {
	fill, skipped := splitFields(map[string]string{
		"first_name": "Jane",
		"last_name":  "",
		"email":      "jane@example.com",
		"phone":      "",
	})

	assert.Equal(t, map[string]string{
		"first_name": "Jane",
		"email":      "jane@example.com",
	}, fill)
	assert.ElementsMatch(t, []string{"last_name", "phone"}, skipped)
}

func TestSelectPriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		backend string
		wantErr bool
	}{
		{
			name: "browserbase wins over hosted",
			cfg: config.Config{
				BrowserbaseAPIKey:    "bb-key",
				BrowserbaseProjectID: "proj-1",
				AutomationServiceURL: "https://automation.internal",
			},
			backend: "browserbase",
		},
		{
			name:    "browserbase key without project id fails fast",
			cfg:     config.Config{BrowserbaseAPIKey: "bb-key"},
			wantErr: true,
		},
		{
			name:    "hosted service",
			cfg:     config.Config{AutomationServiceURL: "https://automation.internal"},
			backend: "hosted",
		},
		{
			name:    "simulation fallback",
			cfg:     config.Config{},
			backend: "simulation",
		},
		{
			name:    "simulation disabled",
			cfg:     config.Config{RequireRealBackend: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := Select(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, gw.Name())
		})
	}
}

func TestSimulationLifecycle(t *testing.T) {
	s := NewSimulation()
	ctx := context.Background()

	id, err := s.Open(ctx, SessionOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	nav := s.Navigate(ctx, id, "https://boards.greenhouse.io/acme/jobs/1")
	assert.True(t, nav.Success)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", nav.URL)

	fill := s.Fill(ctx, id, nav.URL, map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"github":     "",
	}, nil)
	assert.True(t, fill.Success)
	assert.Len(t, fill.FieldsFilled, 2)
	assert.Equal(t, []string{"github"}, fill.FieldsSkipped)

	up := s.UploadResume(ctx, id, "https://files.example.com/resume.pdf", "")
	assert.True(t, up.Success)

	sub := s.Submit(ctx, id)
	assert.True(t, sub.Success)
	assert.NotEmpty(t, sub.ConfirmationText)
	assert.Equal(t, nav.URL+"/confirmation", sub.RedirectURL)

	assert.NotEmpty(t, s.Screenshot(ctx, id))

	s.Close(ctx, id)
	assert.Empty(t, s.Screenshot(ctx, id), "closed session is gone")
}

func TestSimulationUnknownSession(t *testing.T) {
	s := NewSimulation()
	ctx := context.Background()

	assert.False(t, s.Navigate(ctx, "nope", "https://x.test").Success)
	assert.False(t, s.Fill(ctx, "nope", "", map[string]string{"a": "b"}, nil).Success)
	assert.False(t, s.Submit(ctx, "nope").Success)
}

func TestSimulationHonorsCancellation(t *testing.T) {
	s := NewSimulation()
	id, err := s.Open(context.Background(), SessionOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nav := s.Navigate(ctx, id, "https://x.test")
	assert.False(t, nav.Success)
	assert.Contains(t, nav.Error, "context canceled")
}
