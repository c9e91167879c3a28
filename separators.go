package stupidedi

import "fmt"

// Separators is the tuple of single-byte delimiters that govern the wire
// shape of one interchange: segment, element, component, repetition, and
// an optional decimal mark. It is inferred once from the ISA header and
// is immutable for the lifetime of the interchange it was inferred from.
type Separators struct {
	Segment    byte
	Element    byte
	Component  byte
	Repetition byte
	// Decimal is the wire decimal-point character, if the interchange
	// uses real (explicit-point) decimal elements. Zero means unset.
	Decimal byte
}

// DefaultSeparators mirrors the values most commonly seen in hand-written
// X12 sample documents. The Writer does not fall back to it: Write always
// renders under the Separators of the node it is given.
var DefaultSeparators = Separators{
	Segment:    '~',
	Element:    '*',
	Component:  ':',
	Repetition: '^',
	Decimal:    '.',
}

// MalformedHeaderError reports that an ISA prefix could not yield a valid
// Separators value. It is fatal: without separators there are no tokens.
type MalformedHeaderError struct {
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed ISA header: %s", e.Reason)
}

// InferSeparators recovers Separators from the fixed 106-byte ISA prefix
// of an interchange. The element separator is always the byte immediately
// following the literal "ISA". The component and repetition separators
// sit at fixed byte offsets derived from the element separator's position
// (ISA is positional: 17 fixed-width elements with that one element
// separator byte between each).
func InferSeparators(isa []byte) (Separators, error) {
	if len(isa) < isaByteCount {
		return Separators{}, &MalformedHeaderError{
			Reason: fmt.Sprintf(
				"ISA prefix is %d bytes, need at least %d",
				len(isa), isaByteCount,
			),
		}
	}
	if string(isa[0:3]) != isaSegmentID {
		return Separators{}, &MalformedHeaderError{
			Reason: fmt.Sprintf("expected leading %q, got %q", isaSegmentID, isa[0:3]),
		}
	}

	elementSep := isa[isaElementSeparatorIndex]

	// Walk the fixed-width ISA fields to find where the component and
	// repetition separator bytes live. Each field is isaFieldLen[i] bytes
	// wide, followed by one elementSep byte. Byte 3 is the element
	// separator itself, so the first field starts at byte 4.
	offset := 4
	var repetitionSep byte
	for i := isaIndexAuthInfoQualifier; i <= isaIndexUsageIndicator; i++ {
		width, ok := isaFieldLen[i]
		if !ok {
			continue
		}
		fieldStart := offset
		offset += width
		if offset >= len(isa) {
			return Separators{}, &MalformedHeaderError{Reason: "ISA prefix truncated mid-field"}
		}
		if i == isaIndexRepetitionSeparator {
			repetitionSep = isa[fieldStart]
		}
		// skip the element separator byte between fields
		offset++
	}

	if offset >= len(isa) {
		return Separators{}, &MalformedHeaderError{Reason: "ISA prefix truncated before component separator"}
	}
	componentSep := isa[isaByteCount-2]
	segmentSep := isa[isaByteCount-1]

	seps := Separators{
		Segment:    segmentSep,
		Element:    elementSep,
		Component:  componentSep,
		Repetition: repetitionSep,
	}
	if err := seps.validate(); err != nil {
		return Separators{}, err
	}
	return seps, nil
}

// validate enforces the pairwise-distinctness invariant across the four
// mandatory separator bytes (Decimal, being optional, is excluded unless
// set).
func (s Separators) validate() error {
	set := []struct {
		name string
		b    byte
	}{
		{"segment", s.Segment},
		{"element", s.Element},
		{"component", s.Component},
		{"repetition", s.Repetition},
	}
	if s.Decimal != 0 {
		set = append(set, struct {
			name string
			b    byte
		}{"decimal", s.Decimal})
	}
	for i := 0; i < len(set); i++ {
		for j := i + 1; j < len(set); j++ {
			if set[i].b == set[j].b {
				return &MalformedHeaderError{
					Reason: fmt.Sprintf(
						"%s separator and %s separator collide on byte %q",
						set[i].name, set[j].name, set[i].b,
					),
				}
			}
		}
	}
	return nil
}

// Equal reports whether a and b designate the same five delimiters.
func (s Separators) Equal(other Separators) bool {
	return s.Segment == other.Segment &&
		s.Element == other.Element &&
		s.Component == other.Component &&
		s.Repetition == other.Repetition &&
		s.Decimal == other.Decimal
}

// SeparatorField identifies one of the five delimiter slots, for use with
// With.
type SeparatorField int

const (
	SegmentField SeparatorField = iota
	ElementField
	ComponentField
	RepetitionField
	DecimalField
)

// With returns a copy of s with one delimiter replaced, validating the
// pairwise-distinctness invariant on the result.
func (s Separators) With(field SeparatorField, b byte) (Separators, error) {
	next := s
	switch field {
	case SegmentField:
		next.Segment = b
	case ElementField:
		next.Element = b
	case ComponentField:
		next.Component = b
	case RepetitionField:
		next.Repetition = b
	case DecimalField:
		next.Decimal = b
	}
	if err := next.validate(); err != nil {
		return Separators{}, err
	}
	return next, nil
}

// ReplaceEnvelopeSeparators returns a copy of the ISA segment node in
// which element 11 (repetition separator) and element 16 (component
// separator) are rewritten to the literal characters from next, and the
// node's Separators handle is swapped to next. No other element is
// touched, and the tree is not walked for any other occurrence of the
// old separator characters.
func ReplaceEnvelopeSeparators(isa *Node, next Separators) (*Node, error) {
	if isa == nil || isa.Kind != SegmentNode || isa.Name != isaSegmentID {
		return nil, fmt.Errorf("ReplaceEnvelopeSeparators: expected an ISA segment node")
	}
	if err := next.validate(); err != nil {
		return nil, err
	}

	children := make([]*Node, len(isa.Children))
	copy(children, isa.Children)

	// isaIndex* constants are 1-indexed ISA positions (isaIndexRepetitionSeparator
	// == 11 means ISA11); Children is 0-indexed by Position-1, same convention
	// as Node.Element.
	repIdx := isaIndexRepetitionSeparator - 1
	compIdx := isaIndexComponentElementSeparator - 1
	if repIdx >= 0 && repIdx < len(children) {
		children[repIdx] = children[repIdx].withRawValue(string(next.Repetition))
	}
	if compIdx >= 0 && compIdx < len(children) {
		children[compIdx] = children[compIdx].withRawValue(string(next.Component))
	}

	out := isa.Copy(NodeChanges{Children: &children, Separators: &next})
	return out, nil
}
