// Define the strategy table entry and the mapper interface every
// platform implementation must satisfy.
// Ensure consistency

package platform

import (
	"regexp"

	"go-applypilot-automation/internal/platform/mapping"
)

// AuthStrategy tags how a platform expects an authenticated session to be
// presented once one exists in the vault.
type AuthStrategy string

const (
	AuthCookie  AuthStrategy = "cookie"
	AuthToken   AuthStrategy = "token"
	AuthOAuth   AuthStrategy = "oauth"
	AuthSession AuthStrategy = "session"
)

// Complexity is a rough tier used for progress estimates.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// FieldMapping and FieldMapper live in the mapping subpackage so the
// per-platform mappers can implement the contract without importing this
// package back. The aliases keep call sites on the platform package.
type (
	FieldMapping = mapping.FieldMapping
	FieldMapper  = mapping.FieldMapper
)

// Strategy is one registered platform rule set. Lookup is ordered and the
// first strategy with any matching predicate wins.
type Strategy struct {
	Name         string
	DisplayName  string
	Hosts        []string         //substring predicates against the URL hostname
	Patterns     []*regexp.Regexp //regex predicates against the full URL
	RequiresAuth bool
	AuthStrategy AuthStrategy
	LoginURL     string
	Complexity   Complexity
	Mapper       FieldMapper
}

// Classification is the classifier verdict for one URL.
type Classification struct {
	Platform     string       `json:"platform"`
	DisplayName  string       `json:"display_name"`
	Confidence   float64      `json:"confidence"`
	RequiresAuth bool         `json:"requires_auth"`
	AuthStrategy AuthStrategy `json:"auth_strategy,omitempty"`
	LoginURL     string       `json:"login_url,omitempty"`
}
