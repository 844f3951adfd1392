package linkedin

import (
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/mapping"
)

// Mapper targets LinkedIn Easy Apply dialogs. Most identity fields are
// prefilled from the logged-in account, so the mapper only covers the
// contact step.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) Name() string {
	return "linkedin"
}

func (m *Mapper) MapFields(profile models.ApplicantProfile) map[string]string {
	first, last := profile.SplitName()

	fields := map[string]string{
		"firstName":   first,
		"lastName":    last,
		"email":       profile.Email,
		"phoneNumber": profile.Phone,
	}

	if profile.Location != "" {
		fields["city"] = profile.Location
	}

	return fields
}

func (m *Mapper) Mappings() []mapping.FieldMapping {
	return []mapping.FieldMapping{
		{Field: "firstName", Selector: `input[id*="first-name" i]`},
		{Field: "lastName", Selector: `input[id*="last-name" i]`},
		{Field: "email", Selector: `input[id*="email" i]`},
		{Field: "phoneNumber", Selector: `input[id*="phoneNumber" i]`},
		{Field: "city", Selector: `input[id*="city" i]`},
	}
}
