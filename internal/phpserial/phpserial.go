package phpserial

import (
	"regexp"
	"strconv"
	"strings"
)

// emptyArray is the PHP encoding of an array with no elements.
const emptyArray = "a:0:{}"

var arrayHeaderRe = regexp.MustCompile(`^a:(\d+):`)

// Warning records a legacy value that could not be decoded and was
// defaulted. Migration tolerates dirty legacy data, so these are surfaced
// to the caller instead of failing the row.
type Warning struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Recorder accumulates decode warnings for a migration run.
type Recorder struct {
	warnings []Warning
}

// Warn appends a decode warning.
func (r *Recorder) Warn(field, value, reason string) {
	if r == nil {
		return
	}
	r.warnings = append(r.warnings, Warning{Field: field, Value: value, Reason: reason})
}

// Warnings returns the accumulated warnings in insertion order.
func (r *Recorder) Warnings() []Warning {
	if r == nil {
		return nil
	}
	return r.warnings
}

// EvidenceCount decodes a legacy stage value into an evidence count.
// Empty values decode to zero. A serialized-array header a:N:{...} decodes
// to N regardless of the array contents. The second return value is false
// when the value was unparseable and defaulted to zero.
func EvidenceCount(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, true
	}

	if isDigits(trimmed) {
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}

	if match := arrayHeaderRe.FindStringSubmatch(trimmed); match != nil {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}

	return 0, false
}

// StageComplete reports whether a legacy stage value indicates the stage
// was completed. Empty values and the empty-array encoding are incomplete.
// A bare positive integer is complete. Anything else that looks like a
// non-trivial serialized array (a: prefix, braces, more than ten bytes) is
// treated as complete; short arrays can misclassify here and the ambiguity
// is preserved from the legacy exports.
func StageComplete(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == emptyArray {
		return false
	}

	if isDigits(trimmed) {
		n, err := strconv.Atoi(trimmed)
		return err == nil && n > 0
	}

	return strings.HasPrefix(trimmed, "a:") && strings.Contains(trimmed, "{") && len(trimmed) > 10
}

// SumEvidence decodes the three stage values and returns their total.
// Unparseable values contribute zero and are recorded against the recorder.
// The result is never negative.
func SumEvidence(rec *Recorder, stage1, stage2, stage3 string) int {
	total := 0
	for _, entry := range []struct {
		field string
		value string
	}{
		{"stage_1", stage1},
		{"stage_2", stage2},
		{"stage_3", stage3},
	} {
		count, ok := EvidenceCount(entry.value)
		if !ok {
			rec.Warn(entry.field, entry.value, "unparseable legacy value, defaulted to 0")
		}
		if count > 0 {
			total += count
		}
	}
	return total
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(value) > 0
}
