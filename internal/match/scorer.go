package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-applypilot-automation/internal/models"
)

var (
	seniorRegex = regexp.MustCompile(`(?i)\b(senior|lead|manager|principal|staff|architect)\b`)
	juniorRegex = regexp.MustCompile(`(?i)\b(fresher|intern|junior|entry[\s-]?level|graduate|trainee)\b`)
	yearsRegex  = regexp.MustCompile(`(?i)\b([5-9]|\d{2,})\s*(\+|plus)?\s*years?\b`)
)

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// CalculateMatchScore rates how well the resume covers the job description
// on a 0-100 scale. The orchestrator treats the number as opaque; only the
// configured threshold gives it meaning.
func CalculateMatchScore(resume *models.Resume, jobDescription string) int {
	jd := normalizeText(jobDescription)
	if strings.TrimSpace(jd) == "" {
		return 50
	}

	var total, hits int
	count := func(term string) {
		term = normalizeText(strings.TrimSpace(term))
		if term == "" {
			return
		}
		total++
		if strings.Contains(jd, term) {
			hits++
		}
	}

	for _, group := range resume.Skills {
		for _, skill := range group {
			count(skill)
		}
	}
	for _, exp := range resume.Experience {
		for _, tech := range exp.TechStack {
			count(tech)
		}
	}

	//no declared skills: neutral baseline, the AI step decides from here
	if total == 0 {
		return 40
	}

	score := hits * 100 / total

	//title alignment (+10)
	title := normalizeText(resume.PersonalInformation.JobTitle)
	for _, word := range strings.Fields(title) {
		if len(word) > 3 && strings.Contains(jd, word) {
			score += 10
			break
		}
	}

	//seniority mismatch: JD wants senior/5+ years, resume reads junior (-20)
	resumeText := normalizeText(resume.Summary + " " + title)
	if (seniorRegex.MatchString(jd) || yearsRegex.MatchString(jd)) && juniorRegex.MatchString(resumeText) {
		score -= 20
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
