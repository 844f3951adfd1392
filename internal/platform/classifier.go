package platform

import (
	"net/url"
	"regexp"
	"strings"

	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/generic"
	"go-applypilot-automation/internal/platform/greenhouse"
	"go-applypilot-automation/internal/platform/lever"
	"go-applypilot-automation/internal/platform/linkedin"
	"go-applypilot-automation/internal/platform/workday"
)

const (
	matchedConfidence   = 0.95
	unmatchedConfidence = 0.3
)

// Classifier resolves a job posting URL to a registered platform strategy.
// The table is fixed at construction; Classify has no side effects.
type Classifier struct {
	strategies []*Strategy
	fallback   FieldMapper
}

// NewClassifier builds the default strategy table. Order matters: the first
// strategy with any matching predicate wins.
func NewClassifier() *Classifier {
	return &Classifier{
		strategies: []*Strategy{
			{
				Name:         "greenhouse",
				DisplayName:  "Greenhouse",
				Hosts:        []string{"greenhouse.io", "boards.greenhouse.io"},
				Patterns:     []*regexp.Regexp{regexp.MustCompile(`greenhouse\.io/.+/jobs/`)},
				RequiresAuth: false,
				AuthStrategy: AuthCookie,
				Complexity:   ComplexityLow,
				Mapper:       greenhouse.NewMapper(),
			},
			{
				Name:         "lever",
				DisplayName:  "Lever",
				Hosts:        []string{"lever.co", "jobs.lever.co"},
				Patterns:     []*regexp.Regexp{regexp.MustCompile(`jobs\.lever\.co/`)},
				RequiresAuth: false,
				AuthStrategy: AuthCookie,
				Complexity:   ComplexityLow,
				Mapper:       lever.NewMapper(),
			},
			{
				Name:         "workday",
				DisplayName:  "Workday",
				Hosts:        []string{"myworkdayjobs.com", "workday.com"},
				Patterns:     []*regexp.Regexp{regexp.MustCompile(`\.wd\d+\.myworkdayjobs\.com`)},
				RequiresAuth: true,
				AuthStrategy: AuthSession,
				LoginURL:     "https://www.myworkday.com/signin",
				Complexity:   ComplexityHigh,
				Mapper:       workday.NewMapper(),
			},
			{
				Name:         "linkedin",
				DisplayName:  "LinkedIn",
				Hosts:        []string{"linkedin.com"},
				Patterns:     []*regexp.Regexp{regexp.MustCompile(`linkedin\.com/jobs/view/`)},
				RequiresAuth: true,
				AuthStrategy: AuthCookie,
				LoginURL:     "https://www.linkedin.com/login",
				Complexity:   ComplexityMedium,
				Mapper:       linkedin.NewMapper(),
			},
		},
		fallback: generic.NewMapper(),
	}
}

// Classify walks the table in registration order. The first strategy whose
// any predicate matches wins with confidence 0.95; unmatched URLs yield the
// synthetic "unknown" result with confidence 0.3 and no auth requirement.
func (c *Classifier) Classify(rawURL string) Classification {
	host := hostOf(rawURL)
	lower := strings.ToLower(rawURL)

	for _, s := range c.strategies {
		if s.matches(host, lower) {
			return Classification{
				Platform:     s.Name,
				DisplayName:  s.DisplayName,
				Confidence:   matchedConfidence,
				RequiresAuth: s.RequiresAuth,
				AuthStrategy: s.AuthStrategy,
				LoginURL:     s.LoginURL,
			}
		}
	}

	return Classification{
		Platform:    "unknown",
		DisplayName: "Unknown Platform",
		Confidence:  unmatchedConfidence,
	}
}

// IsSupported reports whether the URL classified above the confidence bar.
func (c *Classifier) IsSupported(rawURL string) bool {
	return c.Classify(rawURL).Confidence > 0.5
}

// Strategy returns the registered strategy by name, or nil.
func (c *Classifier) Strategy(name string) *Strategy {
	for _, s := range c.strategies {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Mapper returns the field mapper for a platform name, falling back to the
// generic mapper for unknown or unregistered platforms.
func (c *Classifier) Mapper(name string) FieldMapper {
	if s := c.Strategy(name); s != nil && s.Mapper != nil {
		return s.Mapper
	}
	return c.fallback
}

// MapFields maps the profile with the platform's own mapper, or the generic
// fallback when the platform has none.
func (c *Classifier) MapFields(profile models.ApplicantProfile, name string) map[string]string {
	return c.Mapper(name).MapFields(profile)
}

func (s *Strategy) matches(host, fullURL string) bool {
	for _, h := range s.Hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	for _, p := range s.Patterns {
		if p.MatchString(fullURL) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Host)
}
