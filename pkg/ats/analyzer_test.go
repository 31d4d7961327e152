package ats

import (
	"strings"
	"testing"

	"github.com/loomcli/loom/pkg/document"
)

const cleanResume = `Jane Doe
jane@example.com
555-123-4567

EXPERIENCE
Acme Corp, Software Engineer (January 2020 - January 2024)
- Built billing pipeline in Go
- Cut deploy time by 40%

EDUCATION
State University, BS Computer Science

SKILLS
Go, Python, Kubernetes`

func TestAnalyzeCleanResume(t *testing.T) {
	report := Analyze(document.Parse(cleanResume))

	if !report.Passed {
		t.Errorf("expected clean resume to pass, issues: %+v", report.Issues)
	}
	if report.Score != 100 {
		t.Errorf("expected score 100, got %d (issues: %+v)", report.Score, report.Issues)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", report.Recommendations)
	}
}

func TestAnalyzeMissingEmail(t *testing.T) {
	report := Analyze(document.Parse("Jane Doe\n\nEXPERIENCE\nstuff\n\nEDUCATION\nmore\n\nSKILLS\nGo"))

	if report.Passed {
		t.Error("expected missing email to fail the report")
	}
	if report.CriticalCount() != 1 {
		t.Errorf("expected 1 critical issue, got %d", report.CriticalCount())
	}

	critical := report.IssuesBySeverity(SeverityCritical)
	if len(critical) != 1 || critical[0].Category != CategoryContact {
		t.Errorf("unexpected critical issues: %+v", critical)
	}
}

func TestCheckBullets(t *testing.T) {
	lines := document.Parse("➤ exotic bullet\n- standard bullet\n• also standard")

	issues := checkBullets(lines)
	if len(issues) != 1 {
		t.Fatalf("expected 1 bullet issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Location != "line 1" {
		t.Errorf("unexpected location: %s", issues[0].Location)
	}
	if issues[0].Severity != SeverityWarning {
		t.Errorf("unexpected severity: %s", issues[0].Severity)
	}
}

func TestCheckUnicodeOnePerLine(t *testing.T) {
	lines := document.Parse("smart “quotes” and an em—dash on one line")

	issues := checkUnicode(lines)
	if len(issues) != 1 {
		t.Errorf("expected 1 issue per line, got %d: %+v", len(issues), issues)
	}
}

func TestCheckSectionHeaders(t *testing.T) {
	lines := document.Parse("Jane Doe\njane@example.com\n\nWORK HISTORY\nstuff")

	issues := checkSectionHeaders(lines)

	// Experience, Education and Skills headings are all absent.
	if len(issues) != 3 {
		t.Fatalf("expected 3 section issues, got %d: %+v", len(issues), issues)
	}
	for _, issue := range issues {
		if issue.Category != CategorySectionHeaders || issue.Severity != SeverityInfo {
			t.Errorf("unexpected issue: %+v", issue)
		}
	}
}

func TestCheckContactSameLine(t *testing.T) {
	lines := document.Parse("jane@example.com | 555-123-4567")

	issues := checkContact(lines)
	if len(issues) != 1 {
		t.Fatalf("expected 1 contact issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Severity != SeverityInfo {
		t.Errorf("unexpected severity: %s", issues[0].Severity)
	}
}

func TestCheckDatesMixedFormats(t *testing.T) {
	lines := document.Parse("Acme (January 2020 - 03/2024)")

	issues := checkDates(lines)
	if len(issues) != 1 {
		t.Fatalf("expected 1 date issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Category != CategoryDates {
		t.Errorf("unexpected category: %s", issues[0].Category)
	}
}

func TestCheckDatesConsistentFormat(t *testing.T) {
	lines := document.Parse("Acme (January 2020 - March 2024)\nBeta (April 2018 - December 2019)")

	issues := checkDates(lines)
	if len(issues) != 0 {
		t.Errorf("expected no date issues, got %+v", issues)
	}
}

func TestCheckLineLength(t *testing.T) {
	long := strings.Repeat("x", maxLineLength+1)
	lines := document.Parse("short\n" + long)

	issues := checkLineLength(lines)
	if len(issues) != 1 {
		t.Fatalf("expected 1 length issue, got %d", len(issues))
	}
	if issues[0].Location != "line 2" {
		t.Errorf("unexpected location: %s", issues[0].Location)
	}
}

func TestCalculateScore(t *testing.T) {
	cases := []struct {
		name   string
		issues []Issue
		want   int
	}{
		{name: "no issues", issues: nil, want: 100},
		{
			name: "one of each severity",
			issues: []Issue{
				{Severity: SeverityCritical},
				{Severity: SeverityWarning},
				{Severity: SeverityInfo},
			},
			want: 63,
		},
		{
			name: "floor at zero",
			issues: []Issue{
				{Severity: SeverityCritical}, {Severity: SeverityCritical},
				{Severity: SeverityCritical}, {Severity: SeverityCritical},
				{Severity: SeverityCritical},
			},
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calculateScore(tc.issues); got != tc.want {
				t.Errorf("expected score %d, got %d", tc.want, got)
			}
		})
	}
}

func TestGenerateRecommendationsDeduplicates(t *testing.T) {
	issues := []Issue{
		{Category: CategoryBullets},
		{Category: CategoryBullets},
		{Category: CategoryUnicode},
	}

	recs := generateRecommendations(issues)
	if len(recs) != 2 {
		t.Errorf("expected 2 recommendations, got %d: %v", len(recs), recs)
	}
}
