// Leaf package for the field-mapping contract, imported by both the
// classifier and the per-platform mapper implementations.

package mapping

import (
	"go-applypilot-automation/internal/models"
)

// FieldMapping pairs a canonical field key with the CSS selector hint the
// automation backend should try first.
type FieldMapping struct {
	Field    string `json:"field"`
	Selector string `json:"selector"`
}

// FieldMapper translates a canonical applicant profile into the field
// names and values one platform's form expects.
type FieldMapper interface {
	//MapFields returns platform field key -> value. Optional profile fields
	//that are absent must be omitted, never emitted as empty strings.
	MapFields(profile models.ApplicantProfile) map[string]string

	//Mappings returns the selector hints for the keys MapFields can emit
	Mappings() []FieldMapping

	//Name is the platform name (greenhouse, lever, ...)
	Name() string
}
