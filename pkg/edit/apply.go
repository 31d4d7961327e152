package edit

import (
	"sort"
	"strings"

	"github.com/loomcli/loom/pkg/document"
	"github.com/pkg/errors"
)

// Apply executes a batch of operations against a line store and returns the
// resulting store. The input store is never mutated; on error no partial
// result is visible to the caller.
//
// Operations are applied in descending order of their primary line
// reference, from the bottom of the document upward, so an insert or delete
// never invalidates the line numbering of an edit still to come. This
// composes correctly provided the batch passed validation's duplicate-line
// check. The applier re-checks bounds defensively; hitting one of those
// errors after a clean validation signals a programming error upstream.
//
// The risk level is accepted for contract symmetry with Validate; it does
// not change application semantics.
func Apply(lines document.Lines, batch Batch, risk RiskLevel) (result document.Lines, err error) {
	_ = risk

	if batch.Version != SupportedVersion {
		err = errors.Errorf("unsupported edits version: %d", batch.Version)
		return result, err
	}

	var ops []Operation
	ops, err = batch.Operations()
	if err != nil {
		err = errors.Wrap(err, "edit batch contains unresolved operations")
		return result, err
	}

	newLines := document.Clone(lines)

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].PrimaryLine() > ops[j].PrimaryLine()
	})

	for _, op := range ops {
		switch o := op.(type) {
		case ReplaceLine:
			err = applyReplaceLine(newLines, o)
		case ReplaceRange:
			err = applyReplaceRange(newLines, o)
		case InsertAfter:
			err = applyInsertAfter(newLines, o)
		case DeleteRange:
			err = applyDeleteRange(newLines, o)
		default:
			err = errors.Errorf("unknown operation type: %T", op)
		}
		if err != nil {
			return result, err
		}
	}

	result = newLines
	return result, err
}

func applyReplaceLine(lines document.Lines, op ReplaceLine) (err error) {
	if _, exists := lines[op.Line]; !exists {
		err = errors.Errorf("cannot replace line %d: line does not exist", op.Line)
		return err
	}
	lines[op.Line] = op.Text
	return err
}

func applyReplaceRange(lines document.Lines, op ReplaceRange) (err error) {
	for line := op.Start; line <= op.End; line++ {
		if _, exists := lines[line]; !exists {
			err = errors.Errorf("cannot replace range %d-%d: line %d does not exist", op.Start, op.End, line)
			return err
		}
	}

	textLines := splitText(op.Text)
	oldCount := op.End - op.Start + 1
	newCount := len(textLines)
	delta := newCount - oldCount

	// When the line count changes, everything above the range has to move
	// by the delta. Collect the tail before touching anything.
	var tail []numberedLine
	if delta != 0 {
		tail = collectAbove(lines, op.End)
		for _, nl := range tail {
			delete(lines, nl.num)
		}
	}

	for line := op.Start; line <= op.End; line++ {
		delete(lines, line)
	}

	for i, text := range textLines {
		lines[op.Start+i] = text
	}

	for _, nl := range tail {
		lines[nl.num+delta] = nl.text
	}

	return err
}

func applyInsertAfter(lines document.Lines, op InsertAfter) (err error) {
	if _, exists := lines[op.Line]; !exists {
		err = errors.Errorf("cannot insert after line %d: line does not exist", op.Line)
		return err
	}

	textLines := strings.Split(op.Text, "\n")
	insertCount := len(textLines)

	// Move existing lines in descending order to avoid collisions.
	for _, nl := range collectAbove(lines, op.Line) {
		delete(lines, nl.num)
		lines[nl.num+insertCount] = nl.text
	}

	for i, text := range textLines {
		lines[op.Line+1+i] = text
	}

	return err
}

func applyDeleteRange(lines document.Lines, op DeleteRange) (err error) {
	for line := op.Start; line <= op.End; line++ {
		if _, exists := lines[line]; !exists {
			err = errors.Errorf("cannot delete range %d-%d: line %d does not exist", op.Start, op.End, line)
			return err
		}
	}

	deleteCount := op.End - op.Start + 1

	for line := op.Start; line <= op.End; line++ {
		delete(lines, line)
	}

	// Shift everything above the range down so numbering stays contiguous.
	tail := collectAbove(lines, op.End)
	for i := len(tail) - 1; i >= 0; i-- {
		delete(lines, tail[i].num)
		lines[tail[i].num-deleteCount] = tail[i].text
	}

	return err
}

type numberedLine struct {
	num  int
	text string
}

// collectAbove returns all lines numbered above the given line, sorted
// descending so callers can shift upward without collisions.
func collectAbove(lines document.Lines, after int) (collected []numberedLine) {
	for num, text := range lines {
		if num > after {
			collected = append(collected, numberedLine{num: num, text: text})
		}
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].num > collected[j].num })
	return collected
}

// splitText converts operation text into output lines, where empty text
// still yields one empty line.
func splitText(text string) (textLines []string) {
	if text == "" {
		textLines = []string{""}
		return textLines
	}
	textLines = strings.Split(text, "\n")
	return textLines
}
