package stupidedi

import (
	"fmt"

	"github.com/samber/lo"
)

// Usage is a run-time binding of a definition to a requirement: the
// handle through which a value knows its schema context.
type Usage int

const (
	Mandatory Usage = iota
	Optional
	Relational
	NotUsed
)

func (u Usage) String() string {
	switch u {
	case Mandatory:
		return "Mandatory"
	case Optional:
		return "Optional"
	case Relational:
		return "Relational"
	case NotUsed:
		return "NotUsed"
	default:
		return "Unknown"
	}
}

func (u Usage) Required() bool   { return u == Mandatory }
func (u Usage) Situational() bool { return u == Optional || u == Relational }
func (u Usage) Forbidden() bool  { return u == NotUsed }

// RepeatCount bounds how many times a child may occur. Unbounded is
// represented by Max == 0.
type RepeatCount struct {
	Min int
	Max int // 0 means unbounded
}

// Bounded constructs a RepeatCount with an explicit upper bound.
func Bounded(min, max int) RepeatCount { return RepeatCount{Min: min, Max: max} }

// Unbounded constructs a RepeatCount with no upper bound.
func Unbounded(min int) RepeatCount { return RepeatCount{Min: min, Max: 0} }

// Allows reports whether one more occurrence is permitted given the
// current count (i.e. whether count+1 would still satisfy Max).
func (r RepeatCount) Allows(count int) bool {
	if r.Max == 0 {
		return true
	}
	return count < r.Max
}

// Satisfied reports whether count already meets the minimum.
func (r RepeatCount) Satisfied(count int) bool {
	return count >= r.Min
}

// ElementDef is the identity, length bounds, and kind of a single
// element. Numeric kind invariant: Precision <= MaxLength, checked by
// Catalog.Finalize via InvalidSchemaError.
type ElementDef struct {
	ID         string
	Name       string
	MinLength  int
	MaxLength  int
	Kind       ElementKind
	Precision  int      // only meaningful for KindNumeric
	ValidCodes []string // only meaningful for KindIdentifier
}

func (e *ElementDef) validate() error {
	if e.Kind == KindNumeric && e.Precision > e.MaxLength {
		return &InvalidSchemaError{
			Reason: fmt.Sprintf("element %s: precision %d exceeds max_length %d", e.ID, e.Precision, e.MaxLength),
		}
	}
	if e.MinLength > e.MaxLength {
		return &InvalidSchemaError{
			Reason: fmt.Sprintf("element %s: min_length %d exceeds max_length %d", e.ID, e.MinLength, e.MaxLength),
		}
	}
	return nil
}

// ComponentUse binds an ElementDef at a 1-indexed position within a
// CompositeDef.
type ComponentUse struct {
	Position int
	Def      *ElementDef
	Usage    Usage
}

// CompositeDef is an ordered list of component element uses.
type CompositeDef struct {
	ID         string
	Name       string
	Components []ComponentUse
}

// ElementUse binds an ElementDef or CompositeDef at a 1-indexed position
// within a SegmentDef.
type ElementUse struct {
	Position     int
	ElementDef   *ElementDef
	CompositeDef *CompositeDef
	Usage        Usage
	Repeat       RepeatCount
}

func (u ElementUse) IsComposite() bool { return u.CompositeDef != nil }

// SegmentDef is the identity, purpose, and ordered element uses of one
// segment. Structure does not include the segment id itself.
type SegmentDef struct {
	ID        string
	Name      string
	Purpose   string
	Structure []ElementUse
}

// ChildUse binds either a SegmentDef or a nested LoopDef at a position
// within a LoopDef or TransactionSetDef (FunctionalGroupDef and
// InterchangeDef use EnvelopeChildUse instead).
type ChildUse struct {
	Position   int
	SegmentDef *SegmentDef
	LoopDef    *LoopDef
	Usage      Usage
	Repeat     RepeatCount
}

func (c ChildUse) IsLoop() bool { return c.LoopDef != nil }

// EnvelopeChildUse binds one permitted code to a Usage/RepeatCount at a
// position within a FunctionalGroupDef's or InterchangeDef's Structure —
// an ST01 transaction-set code nested inside a functional group, or a
// GS01 functional-identifier code nested inside an interchange. It gives
// the two outermost envelope levels the same "ordered structure of
// permitted children with usage and repeat count" shape ChildUse gives
// segments and loops one level down, rather than a flat list of allowed
// codes with no requirement or repeat bound.
type EnvelopeChildUse struct {
	Position int
	Code     string
	Usage    Usage
	Repeat   RepeatCount
}

// leadSegmentID returns the segment id that begins this child (for a
// segment use, its own id; for a loop use, its first structural
// segment's id), used by the parser to decide whether a token could open
// this child.
func (c ChildUse) leadSegmentID() string {
	if c.SegmentDef != nil {
		return c.SegmentDef.ID
	}
	if c.LoopDef != nil && len(c.LoopDef.Structure) > 0 {
		return c.LoopDef.Structure[0].leadSegmentID()
	}
	return ""
}

// LoopDef is an ordered structure of permitted children (segment uses or
// further nested loop uses) with its own requirement and repeat count.
type LoopDef struct {
	ID        string
	Name      string
	Usage     Usage
	Repeat    RepeatCount
	Structure []ChildUse
}

// TransactionSetDef describes one ST/SE-delimited business document.
type TransactionSetDef struct {
	Code        string
	VersionCode string
	Name        string
	Structure   []ChildUse
}

// FunctionalGroupDef describes the GS/GE envelope for one functional
// identifier code: which ST01 transaction-set codes it may carry, in
// what order and how often, via the same ordered-structure shape a
// TransactionSetDef gives its own segment/loop children.
type FunctionalGroupDef struct {
	FunctionalIdentifierCode string
	Structure                []EnvelopeChildUse
}

// InterchangeDef carries the ISA/IEA version tag and the GS01 functional
// group codes it may contain, in what order and how often.
type InterchangeDef struct {
	VersionID string
	Structure []EnvelopeChildUse
}

// InvalidSchemaError reports that schema construction contradicts an
// invariant (e.g. numeric precision exceeding max length). It is raised
// at Catalog.Finalize time, never at parse time, and is always fatal.
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %s", e.Reason)
}

// Catalog is the schema registry addressed by interchange version id and
// transaction-set code; this module builds it programmatically or loads
// it from YAML (see LoadCatalogYAML in catalog.go). Finalize does not
// lock it: the Add methods still register definitions after Finalize
// (DemoCatalog relies on this), and nothing synchronizes those writes,
// so concurrent readers are safe only once additions have stopped.
type Catalog struct {
	elements        map[string]*ElementDef
	composites      map[string]*CompositeDef
	segments        map[string]*SegmentDef
	loops           map[string]*LoopDef
	transactionSets map[string]*TransactionSetDef // key: code + "/" + version
	functionalGroups map[string]*FunctionalGroupDef
	interchanges    map[string]*InterchangeDef
	finalized       bool
}

// NewCatalog constructs an empty, mutable Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		elements:         map[string]*ElementDef{},
		composites:       map[string]*CompositeDef{},
		segments:         map[string]*SegmentDef{},
		loops:            map[string]*LoopDef{},
		transactionSets:  map[string]*TransactionSetDef{},
		functionalGroups: map[string]*FunctionalGroupDef{},
		interchanges:     map[string]*InterchangeDef{},
	}
}

func (c *Catalog) AddElement(def *ElementDef)       { c.elements[def.ID] = def }
func (c *Catalog) AddComposite(def *CompositeDef)   { c.composites[def.ID] = def }
func (c *Catalog) AddSegment(def *SegmentDef)       { c.segments[def.ID] = def }
func (c *Catalog) AddLoop(def *LoopDef)             { c.loops[def.ID] = def }
func (c *Catalog) AddFunctionalGroup(def *FunctionalGroupDef) {
	c.functionalGroups[def.FunctionalIdentifierCode] = def
}
func (c *Catalog) AddInterchange(def *InterchangeDef) { c.interchanges[def.VersionID] = def }

func (c *Catalog) AddTransactionSet(def *TransactionSetDef) {
	c.transactionSets[transactionSetKey(def.Code, def.VersionCode)] = def
}

func transactionSetKey(code, version string) string { return code + "/" + version }

// ElementDef looks up an element definition by id.
func (c *Catalog) ElementDef(id string) (*ElementDef, bool) {
	d, ok := c.elements[id]
	return d, ok
}

// SegmentDict returns the full segment dictionary. The version parameter
// is accepted for interface symmetry with spec.md's
// `segment_dict(version)`; this module keeps one flat dictionary shared
// across versions rather than a dictionary per version, since the
// demonstration catalog doesn't carry multiple conflicting versions of
// the same segment id.
func (c *Catalog) SegmentDict(version string) map[string]*SegmentDef {
	return c.segments
}

// SegmentDef looks up a segment definition by id.
func (c *Catalog) SegmentDef(id string) (*SegmentDef, bool) {
	d, ok := c.segments[id]
	return d, ok
}

// TransactionSetDef looks up a transaction set definition by code and
// version.
func (c *Catalog) TransactionSetDef(version, code string) (*TransactionSetDef, bool) {
	d, ok := c.transactionSets[transactionSetKey(code, version)]
	return d, ok
}

// FunctionalGroupDef looks up a functional group definition by functional
// identifier code.
func (c *Catalog) FunctionalGroupDef(version, fgCode string) (*FunctionalGroupDef, bool) {
	d, ok := c.functionalGroups[fgCode]
	return d, ok
}

// InterchangeDef looks up an interchange definition by version id.
func (c *Catalog) InterchangeDef(version string) (*InterchangeDef, bool) {
	d, ok := c.interchanges[version]
	return d, ok
}

// Finalize validates the registered element definitions and the position
// density of segment, composite, functional-group and interchange
// structures; loop and transaction-set structures are not checked. It
// sets an internal finalized flag that no other method consults, so it
// may be called again after further additions.
func (c *Catalog) Finalize() error {
	ids := lo.Keys(c.elements)
	for _, id := range lo.Uniq(ids) {
		if err := c.elements[id].validate(); err != nil {
			return err
		}
	}
	for _, seg := range c.segments {
		if err := validateDensePositions(seg.Structure); err != nil {
			return fmt.Errorf("segment %s: %w", seg.ID, err)
		}
	}
	for _, comp := range c.composites {
		for i, cu := range comp.Components {
			if cu.Position != i+1 {
				return &InvalidSchemaError{Reason: fmt.Sprintf("composite %s: component positions must be dense starting at 1", comp.ID)}
			}
		}
	}
	for _, fg := range c.functionalGroups {
		if err := validateDenseEnvelopePositions("functional group", fg.FunctionalIdentifierCode, fg.Structure); err != nil {
			return err
		}
	}
	for _, ic := range c.interchanges {
		if err := validateDenseEnvelopePositions("interchange", ic.VersionID, ic.Structure); err != nil {
			return err
		}
	}
	c.finalized = true
	return nil
}

// validateDenseEnvelopePositions enforces the same 1-indexed, dense
// position invariant validateDensePositions gives element uses, for a
// FunctionalGroupDef's or InterchangeDef's Structure.
func validateDenseEnvelopePositions(kind, id string, uses []EnvelopeChildUse) error {
	for i, u := range uses {
		if u.Position != i+1 {
			return &InvalidSchemaError{Reason: fmt.Sprintf("%s %s: position at index %d is %d, expected %d", kind, id, i, u.Position, i+1)}
		}
	}
	return nil
}

// validateDensePositions enforces that positions within a parent are
// 1-indexed and dense; NotUsed is permitted and still counts as a
// position.
func validateDensePositions(uses []ElementUse) error {
	for i, u := range uses {
		if u.Position != i+1 {
			return &InvalidSchemaError{Reason: fmt.Sprintf("element use at index %d has position %d, expected %d", i, u.Position, i+1)}
		}
	}
	return nil
}

// childAt returns the ChildUse at a 1-indexed position, or an
// out-of-range error.
func childAt(structure []ChildUse, position int) (ChildUse, error) {
	if position < 1 || position > len(structure) {
		return ChildUse{}, fmt.Errorf("position %d out of range [1,%d]", position, len(structure))
	}
	return structure[position-1], nil
}
