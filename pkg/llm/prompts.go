package llm

import (
	"fmt"
	"strings"
)

// generatePromptTemplate instructs the model to emit a line-numbered edit
// batch rather than a rewritten document. Line numbers are the contract:
// every op addresses the numbered resume exactly as given.
const generatePromptTemplate = `You are an expert resume editor. Tailor the resume below to the job description by proposing line-level edits.

JOB DESCRIPTION:
%s

RESUME (line-numbered):
%s

Respond with ONLY a JSON object in exactly this format, no other text:

{
  "version": 1,
  "meta": {
    "strategy": "generate",
    "model": "%s",
    "created_at": "%s"
  },
  "ops": [
    {"op": "replace_line", "line": 12, "text": "new single line of text"},
    {"op": "replace_range", "start": 20, "end": 22, "text": "first line\nsecond line"},
    {"op": "insert_after", "line": 30, "text": "inserted line"},
    {"op": "delete_range", "start": 40, "end": 41}
  ]
}

Rules:
- Line numbers refer to the numbered resume above. Never invent line numbers outside its range.
- replace_line text must be a single line. Use replace_range for multi-line replacements.
- Never target the same line with more than one operation.
- Keep edits truthful: rephrase and reorder existing experience, never fabricate employers, titles, dates, or skills.
- Prefer small targeted edits over wholesale rewrites.
- Emphasize the skills and keywords the job description asks for where the resume already supports them.`

// correctionPromptTemplate asks the model to repair a batch that failed
// validation. The previous batch and its warnings are included verbatim so
// the model patches what it produced instead of regenerating from scratch.
const correctionPromptTemplate = `You previously proposed resume edits that failed validation. Fix them.

JOB DESCRIPTION:
%s

RESUME (line-numbered):
%s

YOUR PREVIOUS EDITS:
%s

VALIDATION WARNINGS:
%s

Respond with ONLY the corrected JSON object in the same format, no other text:

{
  "version": 1,
  "meta": {
    "strategy": "correction",
    "model": "%s",
    "created_at": "%s"
  },
  "ops": [...]
}

Rules:
- Resolve every warning listed above. Drop an operation rather than leave it conflicting.
- Line numbers refer to the numbered resume above, not to the result of your previous edits.
- Keep the edits that did not trigger warnings.`

// buildGeneratePrompt creates the prompt for generating a tailored edit batch.
func buildGeneratePrompt(jobText, numberedResume, model, createdAt string) (prompt string) {
	prompt = fmt.Sprintf(generatePromptTemplate, jobText, numberedResume, model, createdAt)
	return prompt
}

// buildCorrectionPrompt creates the prompt for repairing a rejected edit batch.
func buildCorrectionPrompt(jobText, numberedResume, currentEditsJSON string, warnings []string, model, createdAt string) (prompt string) {
	warningList := make([]string, 0, len(warnings))
	for _, w := range warnings {
		warningList = append(warningList, "- "+w)
	}
	prompt = fmt.Sprintf(correctionPromptTemplate, jobText, numberedResume, currentEditsJSON, strings.Join(warningList, "\n"), model, createdAt)
	return prompt
}
