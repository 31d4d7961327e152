package ats

// Severity classifies how badly an issue degrades automated resume parsing.
type Severity string

// Severity levels. Critical issues block parsing, warnings degrade it, info
// issues are best-practice deviations.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Category identifies the kind of compatibility issue.
type Category string

// Issue categories.
const (
	CategoryBullets        Category = "bullets"
	CategoryUnicode        Category = "unicode"
	CategorySectionHeaders Category = "section_headers"
	CategoryContact        Category = "contact"
	CategoryDates          Category = "dates"
	CategoryLineLength     Category = "line_length"
)

// Issue is a single compatibility finding.
type Issue struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Report is the complete compatibility analysis for a resume.
type Report struct {
	Version         int      `json:"version"`
	Score           int      `json:"score"`
	Passed          bool     `json:"passed"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// CriticalCount returns the number of critical issues.
func (r Report) CriticalCount() (count int) {
	count = r.countBySeverity(SeverityCritical)
	return count
}

// WarningCount returns the number of warning issues.
func (r Report) WarningCount() (count int) {
	count = r.countBySeverity(SeverityWarning)
	return count
}

// InfoCount returns the number of info issues.
func (r Report) InfoCount() (count int) {
	count = r.countBySeverity(SeverityInfo)
	return count
}

// IssuesBySeverity returns the issues at one severity level.
func (r Report) IssuesBySeverity(severity Severity) (issues []Issue) {
	issues = make([]Issue, 0)
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

func (r Report) countBySeverity(severity Severity) (count int) {
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

//nolint:gochecknoglobals // Scoring configuration constants
var severityPenalties = map[Severity]int{
	SeverityCritical: 25,
	SeverityWarning:  10,
	SeverityInfo:     2,
}

// calculateScore derives the 0-100 compatibility score from the issue list.
// Higher is better.
func calculateScore(issues []Issue) (score int) {
	score = 100
	for _, issue := range issues {
		score -= severityPenalties[issue.Severity]
	}
	if score < 0 {
		score = 0
	}
	return score
}

//nolint:gochecknoglobals // Recommendation text per category
var categoryRecommendations = map[Category]string{
	CategoryBullets:        "Use standard bullet characters throughout (-, *, or •)",
	CategoryUnicode:        "Replace unusual unicode characters with standard ASCII equivalents",
	CategorySectionHeaders: "Use standard section names: Experience, Education, Skills, Summary",
	CategoryContact:        "Ensure email and phone are on separate lines in plain text format",
	CategoryDates:          "Use consistent date format throughout (e.g., 'January 2020' or '01/2020')",
	CategoryLineLength:     "Break very long lines into shorter bullet points",
}

// generateRecommendations produces one actionable recommendation per
// category seen, in the order issues were found.
func generateRecommendations(issues []Issue) (recommendations []string) {
	recommendations = make([]string, 0)
	seen := make(map[Category]bool)
	for _, issue := range issues {
		if seen[issue.Category] {
			continue
		}
		seen[issue.Category] = true
		if rec, ok := categoryRecommendations[issue.Category]; ok {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}
