package edit

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/loomcli/loom/pkg/document"
)

// Validate inspects a batch of operations against a line store and a risk
// level, producing human-readable warnings. It never mutates state and never
// fails on malformed operations inside the batch: every defect becomes a
// warning for the caller's resolution policy to act on. An empty result
// means the batch is acceptable.
func Validate(batch Batch, lines document.Lines, risk RiskLevel) (warnings []string) {
	warnings = []string{}

	if batch.Ops == nil {
		warnings = append(warnings, "missing 'ops' field in edits")
		return warnings
	}

	if len(batch.Ops) == 0 {
		warnings = append(warnings, "'ops' list is empty")
		return warnings
	}

	// Track line usage across structurally valid ops to detect conflicts.
	lineUsage := map[int]string{}

	for i, raw := range batch.Ops {
		op, ok := decodeLenient(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("op %d: must be an object", i))
			continue
		}

		opType, _ := op["op"].(string)
		if opType == "" {
			warnings = append(warnings, fmt.Sprintf("op %d: missing 'op' field", i))
			continue
		}

		switch opType {
		case OpReplaceLine:
			warnings = validateReplaceLine(i, op, lines, lineUsage, warnings)
		case OpReplaceRange:
			warnings = validateReplaceRange(i, op, lines, risk, lineUsage, warnings)
		case OpInsertAfter:
			warnings = validateInsertAfter(i, op, lines, warnings)
		case OpDeleteRange:
			warnings = validateDeleteRange(i, op, lines, lineUsage, warnings)
		default:
			warnings = append(warnings, fmt.Sprintf("op %d: unknown operation type '%s'", i, opType))
		}
	}

	warnings = validateCrossConflicts(batch, warnings)

	return warnings
}

func validateReplaceLine(i int, op map[string]interface{}, lines document.Lines, lineUsage map[int]string, warnings []string) []string {
	if _, present := op["line"]; !present {
		return append(warnings, fmt.Sprintf("op %d: replace_line missing 'line' field", i))
	}
	if _, present := op["text"]; !present {
		return append(warnings, fmt.Sprintf("op %d: replace_line missing 'text' field", i))
	}

	line, ok := intField(op, "line")
	if !ok || line < 1 {
		return append(warnings, fmt.Sprintf("op %d: 'line' must be integer >= 1", i))
	}

	text, ok := op["text"].(string)
	if !ok {
		return append(warnings, fmt.Sprintf("op %d: 'text' must be string", i))
	}

	// Single-line edits must not silently become multi-line.
	if strings.Contains(text, "\n") {
		return append(warnings, fmt.Sprintf("op %d: replace_line text contains newline; use replace_range", i))
	}

	if _, exists := lines[line]; !exists {
		return append(warnings, fmt.Sprintf("op %d: line %d not in resume bounds", i, line))
	}

	if _, claimed := lineUsage[line]; claimed {
		warnings = append(warnings, fmt.Sprintf("op %d: duplicate operation on line %d", i, line))
	}
	lineUsage[line] = OpReplaceLine

	return warnings
}

func validateReplaceRange(i int, op map[string]interface{}, lines document.Lines, risk RiskLevel, lineUsage map[int]string, warnings []string) []string {
	if !hasFields(op, "start", "end", "text") {
		return append(warnings, fmt.Sprintf("op %d: replace_range missing required fields (start, end, text)", i))
	}

	start, startOK := intField(op, "start")
	end, endOK := intField(op, "end")
	if !startOK || !endOK {
		return append(warnings, fmt.Sprintf("op %d: start and end must be integers", i))
	}

	if start < 1 || end < 1 || start > end {
		return append(warnings, fmt.Sprintf("op %d: invalid range %d-%d", i, start, end))
	}

	text, ok := op["text"].(string)
	if !ok {
		return append(warnings, fmt.Sprintf("op %d: 'text' must be string", i))
	}

	// Bounds check short-circuits on the first missing line.
	for line := start; line <= end; line++ {
		if _, exists := lines[line]; !exists {
			warnings = append(warnings, fmt.Sprintf("op %d: line %d not in resume bounds", i, line))
			break
		}
	}

	// Line-count sanity: a mismatched count is always reported; under
	// med and above it is escalated as a collision hazard.
	textLineCount := countTextLines(text)
	rangeLineCount := end - start + 1
	if textLineCount != rangeLineCount {
		msg := fmt.Sprintf("op %d: replace_range line count mismatch (%d -> %d)", i, rangeLineCount, textLineCount)
		if risk == RiskMed || risk == RiskHigh || risk == RiskStrict {
			msg += " (will cause line collisions)"
		}
		warnings = append(warnings, msg)
	}

	for line := start; line <= end; line++ {
		if _, claimed := lineUsage[line]; claimed {
			warnings = append(warnings, fmt.Sprintf("op %d: duplicate operation on line %d", i, line))
			break
		}
	}
	for line := start; line <= end; line++ {
		lineUsage[line] = OpReplaceRange
	}

	return warnings
}

func validateInsertAfter(i int, op map[string]interface{}, lines document.Lines, warnings []string) []string {
	if !hasFields(op, "line", "text") {
		return append(warnings, fmt.Sprintf("op %d: insert_after missing required fields (line, text)", i))
	}

	line, ok := intField(op, "line")
	if !ok || line < 1 {
		return append(warnings, fmt.Sprintf("op %d: 'line' must be integer >= 1", i))
	}

	if _, ok = op["text"].(string); !ok {
		return append(warnings, fmt.Sprintf("op %d: 'text' must be string", i))
	}

	if _, exists := lines[line]; !exists {
		return append(warnings, fmt.Sprintf("op %d: line %d not in resume bounds", i, line))
	}

	// insert_after does not claim its anchor line: it never overwrites it.
	return warnings
}

func validateDeleteRange(i int, op map[string]interface{}, lines document.Lines, lineUsage map[int]string, warnings []string) []string {
	if !hasFields(op, "start", "end") {
		return append(warnings, fmt.Sprintf("op %d: delete_range missing required fields (start, end)", i))
	}

	start, startOK := intField(op, "start")
	end, endOK := intField(op, "end")
	if !startOK || !endOK {
		return append(warnings, fmt.Sprintf("op %d: start and end must be integers", i))
	}

	if start < 1 || end < 1 || start > end {
		return append(warnings, fmt.Sprintf("op %d: invalid range %d-%d", i, start, end))
	}

	for line := start; line <= end; line++ {
		if _, exists := lines[line]; !exists {
			warnings = append(warnings, fmt.Sprintf("op %d: line %d not in resume bounds", i, line))
			break
		}
	}

	for line := start; line <= end; line++ {
		if _, claimed := lineUsage[line]; claimed {
			warnings = append(warnings, fmt.Sprintf("op %d: duplicate operation on line %d", i, line))
			break
		}
	}
	for line := start; line <= end; line++ {
		lineUsage[line] = OpDeleteRange
	}

	return warnings
}

// validateCrossConflicts runs the batch-wide passes that compare operations
// against each other: inserts anchored inside deleted spans, deletes
// overlapping replaced ranges, and repeated inserts on one anchor.
func validateCrossConflicts(batch Batch, warnings []string) []string {
	type span struct{ start, end int }

	deleteSpans := []span{}
	replaceSpans := []span{}
	for _, raw := range batch.Ops {
		op, ok := decodeLenient(raw)
		if !ok {
			continue
		}
		opType, _ := op["op"].(string)
		start, startOK := intField(op, "start")
		end, endOK := intField(op, "end")
		if !startOK || !endOK {
			continue
		}
		switch opType {
		case OpDeleteRange:
			deleteSpans = append(deleteSpans, span{start, end})
		case OpReplaceRange:
			replaceSpans = append(replaceSpans, span{start, end})
		}
	}

	for i, raw := range batch.Ops {
		op, ok := decodeLenient(raw)
		if !ok {
			continue
		}
		opType, _ := op["op"].(string)

		switch opType {
		case OpInsertAfter:
			// Deleting the anchor before inserting after it is contradictory.
			line, lineOK := intField(op, "line")
			if !lineOK {
				continue
			}
			for _, d := range deleteSpans {
				if d.start <= line && line <= d.end {
					warnings = append(warnings, fmt.Sprintf("op %d: insert_after on line %d that is deleted by a delete_range", i, line))
					break
				}
			}
		case OpDeleteRange:
			start, startOK := intField(op, "start")
			end, endOK := intField(op, "end")
			if !startOK || !endOK {
				continue
			}
			for _, r := range replaceSpans {
				if !(r.end < start || r.start > end) {
					warnings = append(warnings, fmt.Sprintf("op %d: delete_range overlaps a replace_range; split or reorder ops", i))
					break
				}
			}
		}
	}

	seenInserts := map[int]bool{}
	for i, raw := range batch.Ops {
		op, ok := decodeLenient(raw)
		if !ok {
			continue
		}
		if opType, _ := op["op"].(string); opType != OpInsertAfter {
			continue
		}
		line, lineOK := intField(op, "line")
		if !lineOK {
			continue
		}
		if seenInserts[line] {
			warnings = append(warnings, fmt.Sprintf("op %d: multiple insert_after on line %d", i, line))
		}
		seenInserts[line] = true
	}

	return warnings
}

// decodeLenient decodes one raw op into a generic record so field presence
// and type checks can report precise warnings instead of failing the batch.
func decodeLenient(raw json.RawMessage) (op map[string]interface{}, ok bool) {
	err := json.Unmarshal(raw, &op)
	if err != nil || op == nil {
		return nil, false
	}
	return op, true
}

// intField extracts an integer-valued field from a lenient op record. JSON
// numbers decode as float64; anything fractional or non-numeric fails.
func intField(op map[string]interface{}, key string) (value int, ok bool) {
	f, isNum := op[key].(float64)
	if !isNum || f != math.Trunc(f) {
		return 0, false
	}
	value = int(f)
	return value, true
}

func hasFields(op map[string]interface{}, keys ...string) (present bool) {
	for _, key := range keys {
		if _, exists := op[key]; !exists {
			return false
		}
	}
	present = true
	return present
}

// countTextLines counts output lines for an operation's text, where an
// empty string still produces one (empty) line.
func countTextLines(text string) (count int) {
	if text == "" {
		count = 1
		return count
	}
	count = len(strings.Split(text, "\n"))
	return count
}
