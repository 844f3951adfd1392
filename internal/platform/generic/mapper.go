package generic

import (
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/mapping"
)

// Mapper is the unconditional fallback used whenever the target platform is
// unknown or has no dedicated mapper. It maps by best-guess field names and
// selector patterns common to hand-rolled application forms.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) Name() string {
	return "generic"
}

func (m *Mapper) MapFields(profile models.ApplicantProfile) map[string]string {
	fields := map[string]string{
		"name":  profile.FullName,
		"email": profile.Email,
		"phone": profile.Phone,
	}

	//optional fields are omitted when absent
	if profile.LinkedIn != "" {
		fields["linkedin"] = profile.LinkedIn
	}
	if profile.GitHub != "" {
		fields["github"] = profile.GitHub
	}
	if profile.Location != "" {
		fields["location"] = profile.Location
	}

	return fields
}

func (m *Mapper) Mappings() []mapping.FieldMapping {
	return []mapping.FieldMapping{
		{Field: "name", Selector: `input[name*="name" i], input[autocomplete="name"]`},
		{Field: "email", Selector: `input[type="email"], input[name*="email" i]`},
		{Field: "phone", Selector: `input[type="tel"], input[name*="phone" i]`},
		{Field: "linkedin", Selector: `input[name*="linkedin" i]`},
		{Field: "github", Selector: `input[name*="github" i]`},
		{Field: "location", Selector: `input[name*="location" i], input[name*="city" i]`},
	}
}
