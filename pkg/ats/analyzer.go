package ats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/sections"
)

// Analyze runs every structural check against the resume lines and returns
// the scored report. Resumes pass when no critical issue is found.
func Analyze(lines document.Lines) (report Report) {
	issues := make([]Issue, 0)

	issues = append(issues, checkBullets(lines)...)
	issues = append(issues, checkUnicode(lines)...)
	issues = append(issues, checkSectionHeaders(lines)...)
	issues = append(issues, checkContact(lines)...)
	issues = append(issues, checkDates(lines)...)
	issues = append(issues, checkLineLength(lines)...)

	report = Report{
		Version:         1,
		Score:           calculateScore(issues),
		Issues:          issues,
		Recommendations: generateRecommendations(issues),
	}
	report.Passed = report.CriticalCount() == 0

	return report
}

// standardBullets are the bullet markers parsers reliably understand.
//
//nolint:gochecknoglobals // Check configuration constants
var standardBullets = map[rune]bool{'-': true, '*': true, '•': true}

// exoticBullets are decorative markers that commonly confuse parsers.
//
//nolint:gochecknoglobals // Check configuration constants
var exoticBullets = map[rune]bool{
	'▪': true, '▸': true, '➤': true, '✓': true, '✦': true,
	'●': true, '○': true, '■': true, '□': true, '❖': true,
}

// checkBullets flags decorative bullet markers.
func checkBullets(lines document.Lines) (issues []Issue) {
	for _, num := range document.SortedNumbers(lines) {
		trimmed := strings.TrimSpace(lines[num])
		if trimmed == "" {
			continue
		}
		first := []rune(trimmed)[0]
		if exoticBullets[first] {
			issues = append(issues, Issue{
				Category:    CategoryBullets,
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("non-standard bullet character %q", first),
				Location:    fmt.Sprintf("line %d", num),
				Suggestion:  "Replace with -, *, or •",
			})
		}
	}
	return issues
}

// checkUnicode flags typographic characters that ASCII-only parsers mangle.
// Standard bullets are exempt since they are a tolerated convention.
func checkUnicode(lines document.Lines) (issues []Issue) {
	suspects := map[rune]string{
		'\u2018': "left single quote",
		'\u2019': "right single quote",
		'\u201c': "left double quote",
		'\u201d': "right double quote",
		'\u2014': "em dash",
		'\u2013': "en dash",
		'\u00a0': "non-breaking space",
		'\u200b': "zero-width space",
	}

	for _, num := range document.SortedNumbers(lines) {
		for _, r := range lines[num] {
			name, bad := suspects[r]
			if !bad {
				continue
			}
			issues = append(issues, Issue{
				Category:    CategoryUnicode,
				Severity:    SeverityInfo,
				Description: fmt.Sprintf("%s (U+%04X) may not survive parsing", name, r),
				Location:    fmt.Sprintf("line %d", num),
				Suggestion:  "Use the plain ASCII equivalent",
			})
			break // one finding per line is enough
		}
	}
	return issues
}

// standardSections are the headings parsers key on to segment a resume.
//
//nolint:gochecknoglobals // Check configuration constants
var standardSections = []string{"experience", "education", "skills"}

// checkSectionHeaders verifies the conventional sections are present and
// recognizable.
func checkSectionHeaders(lines document.Lines) (issues []Issue) {
	detected := sections.Detect(lines)

	found := make(map[string]bool)
	for _, section := range detected.Sections {
		found[strings.ToLower(section.Name)] = true
	}

	for _, want := range standardSections {
		if found[want] {
			continue
		}
		issues = append(issues, Issue{
			Category:    CategorySectionHeaders,
			Severity:    SeverityInfo,
			Description: fmt.Sprintf("no recognizable %q section heading found", want),
			Suggestion:  "Add a clearly labeled section heading",
		})
	}
	return issues
}

//nolint:gochecknoglobals // Check configuration constants
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,2}[\s.\-])?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}`)
)

// checkContact verifies an email address is present and that contact
// details are not crammed onto one line.
func checkContact(lines document.Lines) (issues []Issue) {
	emailLine := 0
	phoneLine := 0
	for _, num := range document.SortedNumbers(lines) {
		text := lines[num]
		if emailLine == 0 && emailPattern.MatchString(text) {
			emailLine = num
		}
		if phoneLine == 0 && phonePattern.MatchString(text) {
			phoneLine = num
		}
	}

	if emailLine == 0 {
		issues = append(issues, Issue{
			Category:    CategoryContact,
			Severity:    SeverityCritical,
			Description: "no email address found",
			Suggestion:  "Add a plain-text email address near the top",
		})
	}

	if emailLine != 0 && emailLine == phoneLine {
		issues = append(issues, Issue{
			Category:    CategoryContact,
			Severity:    SeverityInfo,
			Description: "email and phone share one line; some parsers only keep the first token",
			Location:    fmt.Sprintf("line %d", emailLine),
			Suggestion:  "Put email and phone on separate lines",
		})
	}
	return issues
}

//nolint:gochecknoglobals // Check configuration constants
var (
	wordDatePattern    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`)
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}/\d{4}\b`)
)

// checkDates flags a mix of written-out and numeric month formats.
func checkDates(lines document.Lines) (issues []Issue) {
	wordLine := 0
	numericLine := 0
	for _, num := range document.SortedNumbers(lines) {
		text := lines[num]
		if wordLine == 0 && wordDatePattern.MatchString(text) {
			wordLine = num
		}
		if numericLine == 0 && numericDatePattern.MatchString(text) {
			numericLine = num
		}
	}

	if wordLine != 0 && numericLine != 0 {
		issues = append(issues, Issue{
			Category:    CategoryDates,
			Severity:    SeverityInfo,
			Description: "mixed date formats found ('Month YYYY' and 'MM/YYYY')",
			Location:    fmt.Sprintf("lines %d and %d", wordLine, numericLine),
			Suggestion:  "Pick one date format and use it throughout",
		})
	}
	return issues
}

// maxLineLength is where a line stops being a bullet and starts being a
// paragraph that parsers may truncate.
const maxLineLength = 300

func checkLineLength(lines document.Lines) (issues []Issue) {
	for _, num := range document.SortedNumbers(lines) {
		if len(lines[num]) <= maxLineLength {
			continue
		}
		issues = append(issues, Issue{
			Category:    CategoryLineLength,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("line is %d characters long", len(lines[num])),
			Location:    fmt.Sprintf("line %d", num),
			Suggestion:  "Split into shorter bullet points",
		})
	}
	return issues
}
