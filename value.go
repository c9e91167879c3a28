package stupidedi

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ValueState is the three-shape tag every element value carries,
// regardless of kind: present-but-empty, present-but-unparseable, or
// successfully parsed.
type ValueState int

const (
	Empty ValueState = iota
	Invalid
	NonEmpty
)

func (s ValueState) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Invalid:
		return "Invalid"
	case NonEmpty:
		return "NonEmpty"
	default:
		return "Unknown"
	}
}

// ElementKind distinguishes the element kinds named in the data model:
// enumerated identifiers, alphanumeric strings, fixed (implied-decimal)
// numerics, explicit-point real decimals, dates, times, and
// identifiers-with-code-list.
type ElementKind int

const (
	KindIdentifier ElementKind = iota
	KindString
	KindNumeric
	KindReal
	KindDate
	KindTime
)

// ElementValue is the capability interface every kind-specific value
// implements. There is deliberately no shared base struct with mutable
// state: each kind builds its own Empty/Invalid/NonEmpty value via its
// own constructors (value, empty, invalid), per the "capability
// interfaces, not deep inheritance" design note.
type ElementValue interface {
	Kind() ElementKind
	State() ValueState
	// Raw returns the original wire characters for an Invalid value, or
	// the constructing input otherwise.
	Raw() string
	// ToWire renders the value back to its wire representation. Empty
	// renders "". Invalid renders "" (callers needing the bad input use
	// Raw instead).
	ToWire(truncate bool) string
	TooLong() bool
	TooShort() bool
	Equal(other ElementValue) bool
	Valid() bool
	Position() Position
	Usage() Usage
}

// Position is a (stream-offset, segment-index, element-index,
// component-index) quadruple, present on every value for error
// reporting.
type Position struct {
	StreamOffset   int
	SegmentIndex   int
	ElementIndex   int
	ComponentIndex int
}

func (p Position) String() string {
	return fmt.Sprintf("offset=%d seg=%d elem=%d comp=%d",
		p.StreamOffset, p.SegmentIndex, p.ElementIndex, p.ComponentIndex)
}

// ---- Decimal: fixed-precision implied-decimal numeric ("Nn") ----

// Decimal is the fixed-precision numeric element value. The wire
// representation has no decimal point; its position is implied by the
// element definition's Precision. Internally the parsed value is kept
// as an exact big.Rat so arithmetic never drifts through binary float.
type Decimal struct {
	def   *ElementDef
	usage Usage
	pos   Position
	state ValueState
	raw   string
	value *big.Rat // only meaningful when state == NonEmpty
}

// EmptyDecimal constructs the Empty state for a numeric element.
func EmptyDecimal(def *ElementDef, usage Usage, pos Position) *Decimal {
	return &Decimal{def: def, usage: usage, pos: pos, state: Empty}
}

// InvalidDecimal constructs the Invalid state, retaining raw.
func InvalidDecimal(def *ElementDef, usage Usage, pos Position, raw string) *Decimal {
	return &Decimal{def: def, usage: usage, pos: pos, state: Invalid, raw: raw}
}

// ParseDecimal is C4's `value(input, usage, position)` for numeric kind.
// Blank input yields Empty. A string of optional sign followed by digits
// parses as NonEmpty with the implied decimal point applied at
// def.Precision places. Anything else yields Invalid, retaining raw.
func ParseDecimal(def *ElementDef, usage Usage, pos Position, input string) *Decimal {
	if strings.TrimSpace(input) == "" {
		return EmptyDecimal(def, usage, pos)
	}

	negative := false
	digits := input
	if strings.HasPrefix(digits, "-") {
		negative = true
		digits = digits[1:]
	} else if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if digits == "" || !isAllDigits(digits) {
		return InvalidDecimal(def, usage, pos, input)
	}

	magnitude := new(big.Int)
	if _, ok := magnitude.SetString(digits, 10); !ok {
		return InvalidDecimal(def, usage, pos, input)
	}
	if negative {
		magnitude.Neg(magnitude)
	}

	scale := pow10(def.Precision)
	value := new(big.Rat).SetFrac(magnitude, scale)

	return &Decimal{def: def, usage: usage, pos: pos, state: NonEmpty, raw: input, value: value}
}

// DecimalFromValue builds a NonEmpty Decimal directly from an exact
// rational, for constructor/arithmetic use when there's no wire input to
// parse ("numeric inputs are stored verbatim").
func DecimalFromValue(def *ElementDef, usage Usage, pos Position, value *big.Rat) *Decimal {
	return &Decimal{def: def, usage: usage, pos: pos, state: NonEmpty, value: new(big.Rat).Set(value)}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pow10(n int) *big.Int {
	if n < 0 {
		n = 0
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func (d *Decimal) Kind() ElementKind { return KindNumeric }
func (d *Decimal) State() ValueState { return d.state }
func (d *Decimal) Raw() string       { return d.raw }
func (d *Decimal) Valid() bool       { return d.state == NonEmpty }
func (d *Decimal) Position() Position { return d.pos }
func (d *Decimal) Usage() Usage      { return d.usage }

// Value returns the exact decimal value for a NonEmpty Decimal, and false
// otherwise.
func (d *Decimal) Value() (*big.Rat, bool) {
	if d.state != NonEmpty {
		return nil, false
	}
	return d.value, true
}

// scaledMagnitude returns round(value * 10^precision) as a signed
// integer, used by both ToWire and TooLong.
func (d *Decimal) scaledMagnitude() *big.Int {
	scaled := new(big.Rat).Mul(d.value, new(big.Rat).SetInt(pow10(d.def.Precision)))
	return roundRat(scaled)
}

// roundRat rounds r to the nearest integer, half away from zero.
func roundRat(r *big.Rat) *big.Int {
	num := new(big.Int).Set(r.Num())
	denom := r.Denom()
	quotient, remainder := new(big.Int), new(big.Int)
	quotient.QuoRem(num, denom, remainder)

	remainder.Abs(remainder)
	twice := new(big.Int).Lsh(remainder, 1)
	if twice.CmpAbs(denom) >= 0 {
		if r.Sign() >= 0 {
			quotient.Add(quotient, big.NewInt(1))
		} else {
			quotient.Sub(quotient, big.NewInt(1))
		}
	}
	return quotient
}

// ToWire renders the numeric value with its decimal point implied away.
// See ReplaceEnvelopeSeparators-adjacent design note in DESIGN.md for the
// rationale behind the truncate=false behavior (emit full magnitude,
// TooLong reports the condition).
func (d *Decimal) ToWire(truncate bool) string {
	if d.state != NonEmpty {
		return ""
	}
	m := d.scaledMagnitude()
	negative := m.Sign() < 0
	digits := new(big.Int).Abs(m).String()

	if truncate && len(digits) > d.def.MaxLength {
		digits = digits[:d.def.MaxLength]
	}
	for len(digits) < d.def.MinLength {
		digits = "0" + digits
	}
	if negative {
		return "-" + digits
	}
	return digits
}

// TooLong reports whether the value's natural digit count (sign
// excluded) exceeds the element definition's MaxLength.
func (d *Decimal) TooLong() bool {
	if d.state != NonEmpty {
		return false
	}
	m := d.scaledMagnitude()
	digits := new(big.Int).Abs(m).String()
	return len(digits) > d.def.MaxLength
}

// TooShort is always false for numeric: left-padding can always satisfy
// MinLength.
func (d *Decimal) TooShort() bool { return false }

// Equal implements the Open Question (a) resolution: NonEmpty == Invalid
// is false (and Empty == Invalid is false), never an error.
func (d *Decimal) Equal(other ElementValue) bool {
	o, ok := other.(*Decimal)
	if !ok {
		return false
	}
	if d.state != o.state {
		return false
	}
	switch d.state {
	case Empty:
		return true
	case Invalid:
		return d.raw == o.raw
	case NonEmpty:
		return d.value.Cmp(o.value) == 0
	}
	return false
}

// arith applies op to two NonEmpty operands; if either operand isn't
// NonEmpty the result is Invalid rather than a panic or Go error.
func (d *Decimal) arith(op func(a, b *big.Rat) *big.Rat, other *Decimal) *Decimal {
	if d.state != NonEmpty || other.state != NonEmpty {
		raw := other.raw
		if d.state != NonEmpty {
			raw = d.raw
		}
		return InvalidDecimal(d.def, d.usage, d.pos, raw)
	}
	result := op(d.value, other.value)
	return DecimalFromValue(d.def, d.usage, d.pos, result)
}

func (d *Decimal) Add(other *Decimal) *Decimal {
	return d.arith(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }, other)
}

func (d *Decimal) Sub(other *Decimal) *Decimal {
	return d.arith(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }, other)
}

func (d *Decimal) Mul(other *Decimal) *Decimal {
	return d.arith(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }, other)
}

func (d *Decimal) Div(other *Decimal) *Decimal {
	if other.state == NonEmpty && other.value.Sign() == 0 {
		return InvalidDecimal(d.def, d.usage, d.pos, d.raw)
	}
	return d.arith(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Quo(a, b) }, other)
}

// Mod returns the remainder of the truncated-toward-zero division of the
// two exact rationals' integer-scaled magnitudes, at the wider of the two
// definitions' precision.
func (d *Decimal) Mod(other *Decimal) *Decimal {
	if d.state != NonEmpty || other.state != NonEmpty || other.value.Sign() == 0 {
		return InvalidDecimal(d.def, d.usage, d.pos, d.raw)
	}
	p := d.def.Precision
	if other.def.Precision > p {
		p = other.def.Precision
	}
	scale := pow10(p)
	a := roundRat(new(big.Rat).Mul(d.value, new(big.Rat).SetInt(scale)))
	b := roundRat(new(big.Rat).Mul(other.value, new(big.Rat).SetInt(scale)))
	rem := new(big.Int).Rem(a, b)
	result := new(big.Rat).SetFrac(rem, scale)
	return DecimalFromValue(d.def, d.usage, d.pos, result)
}

func (d *Decimal) Abs() *Decimal {
	if d.state != NonEmpty {
		return InvalidDecimal(d.def, d.usage, d.pos, d.raw)
	}
	return DecimalFromValue(d.def, d.usage, d.pos, new(big.Rat).Abs(d.value))
}

func (d *Decimal) Neg() *Decimal {
	if d.state != NonEmpty {
		return InvalidDecimal(d.def, d.usage, d.pos, d.raw)
	}
	return DecimalFromValue(d.def, d.usage, d.pos, new(big.Rat).Neg(d.value))
}

// Cmp performs total ordering against another NonEmpty Decimal. It
// panics if either operand isn't NonEmpty; callers are expected to check
// Valid() first, matching the "total-ordering comparisons against other
// NonEmpty values" scope in spec.md.
func (d *Decimal) Cmp(other *Decimal) int {
	return d.value.Cmp(other.value)
}

// ---- RealValue: explicit-point decimal ----

// RealValue is the explicit-point decimal kind: unlike Decimal, the
// wire form carries its own "." and the value's scale is whatever the
// input states rather than a schema-declared precision. Value is kept
// as an exact big.Rat for the same reason as Decimal.
type RealValue struct {
	def   *ElementDef
	usage Usage
	pos   Position
	state ValueState
	raw   string
	value *big.Rat
	scale int // digits after the decimal point in the original input
}

func EmptyReal(def *ElementDef, usage Usage, pos Position) *RealValue {
	return &RealValue{def: def, usage: usage, pos: pos, state: Empty}
}

func InvalidReal(def *ElementDef, usage Usage, pos Position, raw string) *RealValue {
	return &RealValue{def: def, usage: usage, pos: pos, state: Invalid, raw: raw}
}

// ParseReal parses an optionally-signed decimal literal with at most
// one ".". Blank input yields Empty; anything that isn't a valid
// decimal literal yields Invalid, retaining raw.
func ParseReal(def *ElementDef, usage Usage, pos Position, input string) *RealValue {
	if strings.TrimSpace(input) == "" {
		return EmptyReal(def, usage, pos)
	}
	body := input
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		body = body[1:]
	}
	if strings.Count(body, ".") > 1 || strings.Trim(body, ".") == "" || !isAllDigits(strings.Replace(body, ".", "", 1)) {
		return InvalidReal(def, usage, pos, input)
	}
	value, ok := new(big.Rat).SetString(input)
	if !ok {
		return InvalidReal(def, usage, pos, input)
	}
	scale := 0
	if dot := strings.IndexByte(input, '.'); dot >= 0 {
		scale = len(input) - dot - 1
	}
	return &RealValue{def: def, usage: usage, pos: pos, state: NonEmpty, raw: input, value: value, scale: scale}
}

func (r *RealValue) Kind() ElementKind  { return KindReal }
func (r *RealValue) State() ValueState  { return r.state }
func (r *RealValue) Raw() string        { return r.raw }
func (r *RealValue) Valid() bool        { return r.state == NonEmpty }
func (r *RealValue) Position() Position { return r.pos }
func (r *RealValue) Usage() Usage       { return r.usage }

// Value returns the exact decimal value for a NonEmpty RealValue, and
// false otherwise.
func (r *RealValue) Value() (*big.Rat, bool) {
	if r.state != NonEmpty {
		return nil, false
	}
	return r.value, true
}

// ToWire renders the value as a decimal literal at the input's own
// scale (e.g. "123.40" parses and renders with two fractional digits,
// not trimmed to "123.4").
func (r *RealValue) ToWire(truncate bool) string {
	if r.state != NonEmpty {
		return ""
	}
	s := r.value.FloatString(r.scale)
	if truncate && r.def != nil && len(s) > r.def.MaxLength {
		s = s[:r.def.MaxLength]
	}
	return s
}

func (r *RealValue) TooLong() bool {
	if r.state != NonEmpty || r.def == nil {
		return false
	}
	return len(r.value.FloatString(r.scale)) > r.def.MaxLength
}

func (r *RealValue) TooShort() bool {
	if r.state != NonEmpty || r.def == nil {
		return false
	}
	return len(r.value.FloatString(r.scale)) < r.def.MinLength
}

func (r *RealValue) Equal(other ElementValue) bool {
	o, ok := other.(*RealValue)
	if !ok {
		return false
	}
	if r.state != o.state {
		return false
	}
	switch r.state {
	case Empty:
		return true
	case Invalid:
		return r.raw == o.raw
	case NonEmpty:
		return r.value.Cmp(o.value) == 0
	}
	return false
}

// Cmp performs total ordering against another NonEmpty RealValue.
func (r *RealValue) Cmp(other *RealValue) int {
	return r.value.Cmp(other.value)
}

// ---- String / Identifier ----

// StringValue implements the alphanumeric string and enumerated
// identifier kinds, which share the same Empty/Invalid/NonEmpty shape and
// differ only in whether a code list constrains NonEmpty values.
type StringValue struct {
	def       *ElementDef
	usage     Usage
	pos       Position
	kind      ElementKind
	state     ValueState
	raw       string
	parsed    string
	validCodes []string
}

func ParseString(def *ElementDef, usage Usage, pos Position, kind ElementKind, input string, validCodes []string) *StringValue {
	if input == "" {
		return &StringValue{def: def, usage: usage, pos: pos, kind: kind, state: Empty, validCodes: validCodes}
	}
	if len(input) < def.MinLength || len(input) > def.MaxLength {
		return &StringValue{def: def, usage: usage, pos: pos, kind: kind, state: Invalid, raw: input, validCodes: validCodes}
	}
	if len(validCodes) > 0 && !containsString(validCodes, input) {
		return &StringValue{def: def, usage: usage, pos: pos, kind: kind, state: Invalid, raw: input, validCodes: validCodes}
	}
	return &StringValue{def: def, usage: usage, pos: pos, kind: kind, state: NonEmpty, raw: input, parsed: input, validCodes: validCodes}
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *StringValue) Kind() ElementKind  { return s.kind }
func (s *StringValue) State() ValueState  { return s.state }
func (s *StringValue) Raw() string        { return s.raw }
func (s *StringValue) Valid() bool        { return s.state == NonEmpty }
func (s *StringValue) Position() Position { return s.pos }
func (s *StringValue) Usage() Usage       { return s.usage }

func (s *StringValue) ToWire(truncate bool) string {
	if s.state != NonEmpty {
		return ""
	}
	v := s.parsed
	if truncate && len(v) > s.def.MaxLength {
		v = v[:s.def.MaxLength]
	}
	return v
}

func (s *StringValue) TooLong() bool {
	return s.state == NonEmpty && len(s.parsed) > s.def.MaxLength
}

func (s *StringValue) TooShort() bool {
	return s.state == NonEmpty && len(s.parsed) < s.def.MinLength
}

func (s *StringValue) Equal(other ElementValue) bool {
	o, ok := other.(*StringValue)
	if !ok {
		return false
	}
	if s.state != o.state {
		return false
	}
	switch s.state {
	case Empty:
		return true
	case Invalid:
		return s.raw == o.raw
	case NonEmpty:
		return s.parsed == o.parsed
	}
	return false
}

// ---- Date / Time ----

// DateValue implements the CCYYMMDD/YYMMDD date kind.
type DateValue struct {
	def    *ElementDef
	usage  Usage
	pos    Position
	state  ValueState
	raw    string
	parsed time.Time
}

func ParseDate(def *ElementDef, usage Usage, pos Position, input string) *DateValue {
	if input == "" {
		return &DateValue{def: def, usage: usage, pos: pos, state: Empty}
	}
	var layout string
	switch len(input) {
	case 8:
		layout = "20060102"
	case 6:
		layout = "060102"
	default:
		return &DateValue{def: def, usage: usage, pos: pos, state: Invalid, raw: input}
	}
	t, err := time.Parse(layout, input)
	if err != nil {
		return &DateValue{def: def, usage: usage, pos: pos, state: Invalid, raw: input}
	}
	return &DateValue{def: def, usage: usage, pos: pos, state: NonEmpty, raw: input, parsed: t}
}

func (d *DateValue) Kind() ElementKind  { return KindDate }
func (d *DateValue) State() ValueState  { return d.state }
func (d *DateValue) Raw() string        { return d.raw }
func (d *DateValue) Valid() bool        { return d.state == NonEmpty }
func (d *DateValue) Position() Position { return d.pos }
func (d *DateValue) Usage() Usage       { return d.usage }

func (d *DateValue) ToWire(truncate bool) string {
	if d.state != NonEmpty {
		return ""
	}
	if d.def.MaxLength <= 6 {
		return d.parsed.Format("060102")
	}
	return d.parsed.Format("20060102")
}

func (d *DateValue) TooLong() bool  { return false }
func (d *DateValue) TooShort() bool { return false }

func (d *DateValue) Equal(other ElementValue) bool {
	o, ok := other.(*DateValue)
	if !ok {
		return false
	}
	if d.state != o.state {
		return false
	}
	switch d.state {
	case Empty:
		return true
	case Invalid:
		return d.raw == o.raw
	case NonEmpty:
		return d.parsed.Equal(o.parsed)
	}
	return false
}

// TimeValue implements the HHMM[SS[dd]] time kind. Hundredths of a
// second (the optional trailing "dd") aren't part of Go's reference
// time vocabulary, so they're carried separately from parsed rather
// than folded into a fractional second.
type TimeValue struct {
	def        *ElementDef
	usage      Usage
	pos        Position
	state      ValueState
	raw        string
	parsed     time.Time
	wireLength int // 4, 6, or 8; governs ToWire's precision
	hundredths string
}

func ParseTime(def *ElementDef, usage Usage, pos Position, input string) *TimeValue {
	if input == "" {
		return &TimeValue{def: def, usage: usage, pos: pos, state: Empty}
	}
	var layout string
	var core, hundredths string
	switch len(input) {
	case 4:
		layout, core = "1504", input
	case 6:
		layout, core = "150405", input
	case 8:
		layout, core = "150405", input[:6]
		hundredths = input[6:8]
		if !isAllDigits(hundredths) {
			return &TimeValue{def: def, usage: usage, pos: pos, state: Invalid, raw: input}
		}
	default:
		return &TimeValue{def: def, usage: usage, pos: pos, state: Invalid, raw: input}
	}
	t, err := time.Parse(layout, core)
	if err != nil {
		return &TimeValue{def: def, usage: usage, pos: pos, state: Invalid, raw: input}
	}
	return &TimeValue{
		def: def, usage: usage, pos: pos, state: NonEmpty, raw: input,
		parsed: t, wireLength: len(input), hundredths: hundredths,
	}
}

func (t *TimeValue) Kind() ElementKind  { return KindTime }
func (t *TimeValue) State() ValueState  { return t.state }
func (t *TimeValue) Raw() string        { return t.raw }
func (t *TimeValue) Valid() bool        { return t.state == NonEmpty }
func (t *TimeValue) Position() Position { return t.pos }
func (t *TimeValue) Usage() Usage       { return t.usage }

// ToWire reproduces the same precision the value was parsed with
// (HHMM, HHMMSS, or HHMMSSdd); truncate has no effect since a time
// value's wire length is fixed by its own precision, not MaxLength.
func (t *TimeValue) ToWire(truncate bool) string {
	if t.state != NonEmpty {
		return ""
	}
	switch t.wireLength {
	case 6:
		return t.parsed.Format("150405")
	case 8:
		return t.parsed.Format("150405") + t.hundredths
	default:
		return t.parsed.Format("1504")
	}
}

func (t *TimeValue) TooLong() bool  { return false }
func (t *TimeValue) TooShort() bool { return false }

func (t *TimeValue) Equal(other ElementValue) bool {
	o, ok := other.(*TimeValue)
	if !ok {
		return false
	}
	if t.state != o.state {
		return false
	}
	switch t.state {
	case Empty:
		return true
	case Invalid:
		return t.raw == o.raw
	case NonEmpty:
		return t.parsed.Equal(o.parsed) && t.hundredths == o.hundredths
	}
	return false
}
