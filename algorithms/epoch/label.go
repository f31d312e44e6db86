package epoch

import (
	"math"
	"strconv"
)

// LabelKind discriminates the representations a state label can take.
type LabelKind int

const (
	// LabelMissing marks an unobserved state. A missing label never
	// equals anything, itself included, mirroring NaN comparison
	// semantics so that gaps can never form a homogeneous epoch.
	LabelMissing LabelKind = iota
	// LabelNumeric is a discrete state code stored as a float
	LabelNumeric
	// LabelString is a named state such as a sleep stage
	LabelString
)

// Label is one sample's categorical state: a numeric code, a string
// name, or missing. Only equality is meaningful; no ordering between
// label values is assumed.
type Label struct {
	Kind LabelKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
}

// NumericLabel creates a numeric state label. NaN input yields a
// missing label.
func NumericLabel(value float64) Label {
	if math.IsNaN(value) {
		return MissingLabel()
	}
	return Label{Kind: LabelNumeric, Num: value}
}

// StringLabel creates a named state label.
func StringLabel(value string) Label {
	return Label{Kind: LabelString, Str: value}
}

// MissingLabel creates the missing-state marker.
func MissingLabel() Label {
	return Label{Kind: LabelMissing}
}

// IsMissing reports whether the label marks an unobserved state.
func (l Label) IsMissing() bool {
	return l.Kind == LabelMissing
}

// Equal reports whether two labels denote the same observed state.
// Missing labels compare unequal to everything, themselves included.
func (l Label) Equal(other Label) bool {
	if l.Kind == LabelMissing || other.Kind == LabelMissing {
		return false
	}
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LabelNumeric:
		return l.Num == other.Num
	case LabelString:
		return l.Str == other.Str
	default:
		return false
	}
}

// String renders the label for diagnostics.
func (l Label) String() string {
	switch l.Kind {
	case LabelNumeric:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case LabelString:
		return l.Str
	default:
		return "missing"
	}
}

// LabelsFromFloats converts a numeric state sequence to labels,
// mapping NaN to missing.
func LabelsFromFloats(values []float64) []Label {
	labels := make([]Label, len(values))
	for i, v := range values {
		labels[i] = NumericLabel(v)
	}
	return labels
}

// LabelsFromStrings converts a named state sequence to labels, mapping
// the empty string to missing.
func LabelsFromStrings(values []string) []Label {
	labels := make([]Label, len(values))
	for i, v := range values {
		if v == "" {
			labels[i] = MissingLabel()
		} else {
			labels[i] = StringLabel(v)
		}
	}
	return labels
}

// LabelsFromInts converts an integer state sequence to labels.
func LabelsFromInts(values []int) []Label {
	labels := make([]Label, len(values))
	for i, v := range values {
		labels[i] = NumericLabel(float64(v))
	}
	return labels
}
