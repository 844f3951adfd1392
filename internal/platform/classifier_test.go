package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-applypilot-automation/internal/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name         string
		url          string
		platform     string
		confidence   float64
		requiresAuth bool
	}{
		{
			name:       "greenhouse board",
			url:        "https://boards.greenhouse.io/acme/jobs/4567",
			platform:   "greenhouse",
			confidence: 0.95,
		},
		{
			name:       "lever posting",
			url:        "https://jobs.lever.co/acme/0b1c2d3e",
			platform:   "lever",
			confidence: 0.95,
		},
		{
			name:         "workday tenant",
			url:          "https://acme.wd5.myworkdayjobs.com/en-US/careers/job/Engineer_R123",
			platform:     "workday",
			confidence:   0.95,
			requiresAuth: true,
		},
		{
			name:         "linkedin job view",
			url:          "https://www.linkedin.com/jobs/view/3812345678",
			platform:     "linkedin",
			confidence:   0.95,
			requiresAuth: true,
		},
		{
			name:       "unrecognized company site",
			url:        "https://careers.example.com/openings/42",
			platform:   "unknown",
			confidence: 0.3,
		},
		{
			name:       "unparseable url",
			url:        "not a url at all",
			platform:   "unknown",
			confidence: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.url)
			assert.Equal(t, tt.platform, got.Platform)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.requiresAuth, got.RequiresAuth)
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewClassifier()

	//a greenhouse URL mentioning lever in the path must still classify as
	//greenhouse: registration order decides, not best match
	got := c.Classify("https://boards.greenhouse.io/lever/jobs/99")
	assert.Equal(t, "greenhouse", got.Platform)
}

func TestIsSupported(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.IsSupported("https://jobs.lever.co/acme/123"))
	assert.False(t, c.IsSupported("https://careers.example.com/openings/42"))
}

func TestMapperFallsBackToGeneric(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, "greenhouse", c.Mapper("greenhouse").Name())
	assert.Equal(t, "generic", c.Mapper("unknown").Name())
	assert.Equal(t, "generic", c.Mapper("").Name())
}

func TestEveryStrategyCarriesAMapper(t *testing.T) {
	c := NewClassifier()

	for _, s := range c.strategies {
		assert.NotNil(t, s.Mapper, s.Name)
		assert.Equal(t, s.Name, s.Mapper.Name())
		assert.NotEmpty(t, s.Mapper.Mappings(), s.Name)
	}
}

func TestLoginURLOnlyForAuthPlatforms(t *testing.T) {
	c := NewClassifier()

	workday := c.Classify("https://acme.wd3.myworkdayjobs.com/careers/job/R1")
	assert.Equal(t, AuthSession, workday.AuthStrategy)
	assert.NotEmpty(t, workday.LoginURL)

	greenhouse := c.Classify("https://boards.greenhouse.io/acme/jobs/1")
	assert.Empty(t, greenhouse.LoginURL)
}

func TestClassifierMapFields(t *testing.T) {
	c := NewClassifier()
	profile := models.ApplicantProfile{FullName: "Jane Doe", Email: "jane@example.com"}

	fields := c.MapFields(profile, "greenhouse")
	assert.Equal(t, "Jane", fields["first_name"])
	assert.Equal(t, "Doe", fields["last_name"])

	fields = c.MapFields(profile, "does-not-exist")
	assert.Equal(t, "Jane Doe", fields["name"])
}
