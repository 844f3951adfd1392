package workday

import (
	"go-applypilot-automation/internal/models"
	"go-applypilot-automation/internal/platform/mapping"
)

// Mapper targets Workday tenants. Workday renders multi-step forms behind
// data-automation-id attributes and requires an account, so the strategy
// registering this mapper is flagged requires-auth.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) Name() string {
	return "workday"
}

func (m *Mapper) MapFields(profile models.ApplicantProfile) map[string]string {
	first, last := profile.SplitName()

	fields := map[string]string{
		"firstName": first,
		"lastName":  last,
		"email":     profile.Email,
		"phone":     profile.Phone,
	}

	if profile.LinkedIn != "" {
		fields["linkedinUrl"] = profile.LinkedIn
	}
	if profile.Location != "" {
		fields["city"] = profile.Location
	}

	return fields
}

func (m *Mapper) Mappings() []mapping.FieldMapping {
	return []mapping.FieldMapping{
		{Field: "firstName", Selector: `[data-automation-id="legalNameSection_firstName"]`},
		{Field: "lastName", Selector: `[data-automation-id="legalNameSection_lastName"]`},
		{Field: "email", Selector: `[data-automation-id="email"]`},
		{Field: "phone", Selector: `[data-automation-id="phone-number"]`},
		{Field: "linkedinUrl", Selector: `[data-automation-id="linkedinQuestion"] input`},
		{Field: "city", Selector: `[data-automation-id="addressSection_city"]`},
	}
}
