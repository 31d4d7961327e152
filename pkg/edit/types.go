package edit

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SupportedVersion is the only edit batch version this tool understands.
const SupportedVersion = 1

// Op tags on the wire.
const (
	OpReplaceLine  = "replace_line"
	OpReplaceRange = "replace_range"
	OpInsertAfter  = "insert_after"
	OpDeleteRange  = "delete_range"
)

// RiskLevel controls how strictly validation treats replace_range line-count
// mismatches. It does not change which checks run, only how mismatches are
// framed in the warning list.
type RiskLevel string

// Risk levels in increasing strictness.
const (
	RiskLow    RiskLevel = "low"
	RiskMed    RiskLevel = "med"
	RiskHigh   RiskLevel = "high"
	RiskStrict RiskLevel = "strict"
)

// ParseRisk validates a risk level string.
func ParseRisk(s string) (risk RiskLevel, err error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMed, RiskHigh, RiskStrict:
		risk = RiskLevel(s)
		return risk, err
	default:
		err = errors.Errorf("invalid risk level %q: must be one of low, med, high, strict", s)
		return risk, err
	}
}

// Meta describes how an edit batch was produced.
type Meta struct {
	Strategy  string `json:"strategy"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
}

// Batch is the versioned container of edit operations exchanged with the
// external generator. Ops stay raw at this level so a malformed operation
// surfaces as a validation warning rather than an unmarshal failure for the
// whole batch; Operations performs the strict decode the applier needs.
type Batch struct {
	Version int               `json:"version"`
	Meta    Meta              `json:"meta"`
	Ops     []json.RawMessage `json:"ops"`
}

// ParseBatch decodes batch JSON and enforces top-level structure. An
// unsupported version is a hard failure before any validation or
// application is attempted.
func ParseBatch(data []byte) (batch Batch, err error) {
	err = json.Unmarshal(data, &batch)
	if err != nil {
		err = errors.Wrap(err, "failed to parse edit batch JSON")
		return batch, err
	}

	if batch.Version != SupportedVersion {
		err = errors.Errorf("unsupported edits version: %d", batch.Version)
		return batch, err
	}

	return batch, err
}

// NewBatch builds a batch from typed operations.
func NewBatch(meta Meta, ops ...Operation) (batch Batch, err error) {
	batch = Batch{
		Version: SupportedVersion,
		Meta:    meta,
		Ops:     make([]json.RawMessage, 0, len(ops)),
	}

	for _, op := range ops {
		var raw []byte
		raw, err = json.Marshal(op)
		if err != nil {
			err = errors.Wrap(err, "failed to marshal edit operation")
			return batch, err
		}
		batch.Ops = append(batch.Ops, raw)
	}

	return batch, err
}

// Operations strictly decodes every raw op into its typed variant. Any
// unknown tag or malformed record is an error; by the time a batch reaches
// the applier it must be fully resolved.
func (b Batch) Operations() (ops []Operation, err error) {
	ops = make([]Operation, 0, len(b.Ops))
	for i, raw := range b.Ops {
		var op Operation
		op, err = DecodeOp(raw)
		if err != nil {
			err = errors.Wrapf(err, "op %d", i)
			return ops, err
		}
		ops = append(ops, op)
	}
	return ops, err
}

// Operation is one atomic line-level change against a line store. The
// closed set of variants is ReplaceLine, ReplaceRange, InsertAfter and
// DeleteRange.
type Operation interface {
	// PrimaryLine is the line number used to order operations for
	// application: the single line reference if the operation has one,
	// otherwise the start of its range.
	PrimaryLine() int
}

// ReplaceLine overwrites the content of a single line. Text must not
// contain a line separator; multi-line rewrites use ReplaceRange.
type ReplaceLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Why  string `json:"why,omitempty"`
}

// PrimaryLine implements Operation.
func (o ReplaceLine) PrimaryLine() (line int) {
	line = o.Line
	return line
}

// MarshalJSON adds the op tag.
func (o ReplaceLine) MarshalJSON() (data []byte, err error) {
	type alias ReplaceLine
	data, err = json.Marshal(struct {
		Op string `json:"op"`
		alias
	}{Op: OpReplaceLine, alias: alias(o)})
	return data, err
}

// ReplaceRange replaces an inclusive line range. Text may contain embedded
// separators; on application the split line count determines how many
// output lines replace the range.
type ReplaceRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Why   string `json:"why,omitempty"`
}

// PrimaryLine implements Operation.
func (o ReplaceRange) PrimaryLine() (line int) {
	line = o.Start
	return line
}

// MarshalJSON adds the op tag.
func (o ReplaceRange) MarshalJSON() (data []byte, err error) {
	type alias ReplaceRange
	data, err = json.Marshal(struct {
		Op string `json:"op"`
		alias
	}{Op: OpReplaceRange, alias: alias(o)})
	return data, err
}

// InsertAfter inserts one or more new lines immediately after the anchor
// line.
type InsertAfter struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Why  string `json:"why,omitempty"`
}

// PrimaryLine implements Operation.
func (o InsertAfter) PrimaryLine() (line int) {
	line = o.Line
	return line
}

// MarshalJSON adds the op tag.
func (o InsertAfter) MarshalJSON() (data []byte, err error) {
	type alias InsertAfter
	data, err = json.Marshal(struct {
		Op string `json:"op"`
		alias
	}{Op: OpInsertAfter, alias: alias(o)})
	return data, err
}

// DeleteRange removes an inclusive line range.
type DeleteRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Why   string `json:"why,omitempty"`
}

// PrimaryLine implements Operation.
func (o DeleteRange) PrimaryLine() (line int) {
	line = o.Start
	return line
}

// MarshalJSON adds the op tag.
func (o DeleteRange) MarshalJSON() (data []byte, err error) {
	type alias DeleteRange
	data, err = json.Marshal(struct {
		Op string `json:"op"`
		alias
	}{Op: OpDeleteRange, alias: alias(o)})
	return data, err
}

// DecodeOp strictly decodes one raw operation into its typed variant.
func DecodeOp(raw json.RawMessage) (op Operation, err error) {
	var probe struct {
		Op string `json:"op"`
	}
	err = json.Unmarshal(raw, &probe)
	if err != nil {
		err = errors.Wrap(err, "operation is not a JSON object")
		return op, err
	}

	switch probe.Op {
	case OpReplaceLine:
		var o ReplaceLine
		err = json.Unmarshal(raw, &o)
		op = o
	case OpReplaceRange:
		var o ReplaceRange
		err = json.Unmarshal(raw, &o)
		op = o
	case OpInsertAfter:
		var o InsertAfter
		err = json.Unmarshal(raw, &o)
		op = o
	case OpDeleteRange:
		var o DeleteRange
		err = json.Unmarshal(raw, &o)
		op = o
	default:
		err = errors.Errorf("unknown operation type: %q", probe.Op)
		return op, err
	}

	if err != nil {
		err = errors.Wrapf(err, "failed to decode %s operation", probe.Op)
		return op, err
	}

	return op, err
}
