package greenhouse

import (
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/mapping"
)

// Mapper targets Greenhouse-hosted application forms, which split the
// applicant name into first/last fields.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) Name() string {
	return "greenhouse"
}

func (m *Mapper) MapFields(profile models.ApplicantProfile) map[string]string {
	first, last := profile.SplitName()

	fields := map[string]string{
		"first_name": first,
		"last_name":  last,
		"email":      profile.Email,
		"phone":      profile.Phone,
	}

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
		{Field: "first_name", Selector: "#first_name"},
		{Field: "last_name", Selector: "#last_name"},
		{Field: "email", Selector: "#email"},
		{Field: "phone", Selector: "#phone"},
		{Field: "linkedin", Selector: `input[name*="linkedin" i], #job_application_answers_attributes_0_text_value`},
		{Field: "github", Selector: `input[name*="github" i]`},
		{Field: "location", Selector: "#job_application_location, #candidate-location"},
	}
}
