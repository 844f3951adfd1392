package models

type Link struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

type PersonalInformation struct {
	FullName string `json:"full_name"`
	JobTitle string `json:"job_title"`
	Location string `json:"location"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Links    Link   `json:"links"`
}

type Experience struct {
	Role             string   `json:"role"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
	TechStack        []string `json:"tech_stack,omitempty"`
}

type Project struct {
	Name        string   `json:"name"`
	URL         string   `json:"url,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Description string   `json:"description,omitempty"`
	Details     []string `json:"details,omitempty"`
	Status      string   `json:"status,omitempty"`
}

type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location"`
	GraduationYear string `json:"graduation_year"`
	GPA            string `json:"gpa,omitempty"`
}

type Certification struct {
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
	Issuer  string `json:"issuer"`
	Year    int    `json:"year"`
}

// Resume is the structured resume content flowing through the optimizing
// and generating_pdf phases. Skills are grouped by category so the AI
// collaborator can drop whole groups that don't match the job description.
type Resume struct {
	PersonalInformation PersonalInformation `json:"personal_information"`
	Summary             string              `json:"summary"`
	Skills              map[string][]string `json:"skills"`
	Experience          []Experience        `json:"experience"`
	Projects            []Project           `json:"projects"`
	Education           Education           `json:"education"`
	Certifications      []Certification     `json:"certifications,omitempty"`
}

// ReplaceProject swaps the lowest-impact existing project for the given one;
// when the resume has no projects it behaves like AddProject.
func (r *Resume) ReplaceProject(p Project) {
	if len(r.Projects) == 0 {
		r.Projects = []Project{p}
		return
	}
	r.Projects[len(r.Projects)-1] = p
}

// AddProject prepends the project so it renders first.
func (r *Resume) AddProject(p Project) {
	r.Projects = append([]Project{p}, r.Projects...)
}
