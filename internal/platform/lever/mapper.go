package lever

import (
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/mapping"
)

// Mapper targets Lever postings, which take the full name as one field and
// group social profiles under urls[...] inputs.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) Name() string {
	return "lever"
}

func (m *Mapper) MapFields(profile models.ApplicantProfile) map[string]string {
	fields := map[string]string{
		"name":  profile.FullName,
		"email": profile.Email,
		"phone": profile.Phone,
	}

	if profile.LinkedIn != "" {
		fields["urls[LinkedIn]"] = profile.LinkedIn
	}
	if profile.GitHub != "" {
		fields["urls[GitHub]"] = profile.GitHub
	}
	if profile.Location != "" {
		fields["location"] = profile.Location
	}

	return fields
}

func (m *Mapper) Mappings() []mapping.FieldMapping {
	return []mapping.FieldMapping{
		{Field: "name", Selector: `input[name="name"]`},
		{Field: "email", Selector: `input[name="email"]`},
		{Field: "phone", Selector: `input[name="phone"]`},
		{Field: "urls[LinkedIn]", Selector: `input[name="urls[LinkedIn]"]`},
		{Field: "urls[GitHub]", Selector: `input[name="urls[GitHub]"]`},
		{Field: "location", Selector: `input[name="location"]`},
	}
}
