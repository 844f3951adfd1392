package models

import "strings"

// ApplicantProfile is the canonical applicant input for one submission.
// Optional fields are empty strings when the applicant did not provide them;
// field mappers must omit those, never emit empty values.
type ApplicantProfile struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Location  string `json:"location,omitempty"`
	ResumeURL string `json:"resume_url"`
}

// SplitName splits the full name at the first whitespace boundary.
// A single-word name yields an empty last name.
func (p ApplicantProfile) SplitName() (first, last string) {
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		return "", ""
	}
	idx := strings.IndexFunc(name, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return name, ""
	}
	return name[:idx], strings.TrimSpace(name[idx+1:])
}
