package stupidedi

import (
	"container/list"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ParseResult is C6's output: a constructed tree plus a list of
// structural errors in stream order, and a correlation id useful for
// tying a result's errors back to a specific ingest attempt in caller
// logs.
type ParseResult struct {
	Tree    *Node
	Errors  []StructuralError
	TraceID string
}

// Parser drives the schema-directed descent described by spec.md 4.6
// against a Catalog.
type Parser struct {
	Catalog *Catalog
}

// NewParser constructs a Parser bound to catalog.
func NewParser(catalog *Catalog) *Parser {
	return &Parser{Catalog: catalog}
}

// Parse reads one interchange from r. The InterchangeDef is looked up in
// the Parser's Catalog by the ISA12 version element on the wire; each
// FunctionalGroupDef is then looked up by GS01 and each TransactionSetDef
// by ST01/ST03.
//
// A single parse holds no global state and only suspends at the byte
// source boundary inside the Tokenizer; ctx cancellation and premature
// end-of-stream are both treated as clean termination. The partial tree
// is returned with MissingMandatory reported for unsatisfied mandatory
// transaction-set children, functional-group and transaction-set codes,
// and an absent IEA trailer; an absent GE or SE trailer is not reported.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	tok := NewTokenizer(r)
	queue := newSegmentDeque()

	for {
		if ctx.Err() != nil {
			break
		}
		st, ok, err := tok.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		queue.Append(st)
	}

	result := &ParseResult{TraceID: uuid.New().String()}

	isaTok := queue.PopLeft()
	if isaTok == nil || isaTok.ID != isaSegmentID {
		return nil, &MalformedHeaderError{Reason: "stream does not begin with ISA"}
	}
	seps := tok.Separators()

	isaNode := buildEnvelopeSegment(*isaTok, p.Catalog, isaSegmentID, seps)
	interchange := &Node{Kind: InterchangeNode, Name: "INTERCHANGE", Separators: seps, Position: isaTok.Position}
	interchange.Children = append(interchange.Children, isaNode)

	var errs []StructuralError

	icVersion := elementRaw(*isaTok, isaIndexVersion)
	icDef, icOK := p.Catalog.InterchangeDef(icVersion)
	var icCursor *envelopeCursor
	if icOK {
		icCursor = newEnvelopeCursor(icDef.Structure)
	}

	sawIEA := false
	for queue.Length() > 0 && ctx.Err() == nil {
		next := queue.PeekLeft()
		if next == nil {
			break
		}
		if next.ID == ieaSegmentID {
			ieaTok := queue.PopLeft()
			interchange.Children = append(interchange.Children, buildEnvelopeSegment(*ieaTok, p.Catalog, ieaSegmentID, seps))
			sawIEA = true
			break
		}
		if next.ID != gsSegmentID {
			errs = append(errs, StructuralError{
				Kind: unexpectedKind(next), Position: next.Position, DefRef: next.ID,
				Message: fmt.Sprintf("expected GS or IEA, got %s", next.ID),
			})
			queue.PopLeft()
			continue
		}

		if icCursor != nil {
			fgCode := elementRaw(*next, gsIndexFunctionalIDCode)
			icCursor.match(fgCode, next.Position, &errs)
		}

		fgNode, fgErrs := p.parseFunctionalGroup(queue, seps, icVersion)
		errs = append(errs, fgErrs...)
		interchange.Children = append(interchange.Children, fgNode)
	}

	if icCursor != nil {
		icCursor.finish(&errs)
	}
	if !sawIEA {
		errs = append(errs, StructuralError{
			Kind: MissingMandatory, Position: Position{StreamOffset: tok.offset, SegmentIndex: tok.segIndex},
			DefRef: ieaSegmentID, Message: "missing mandatory IEA",
		})
	}

	// Every node of the interchange carries the interchange's separators,
	// so Write/Format on any subtree renders with the right delimiters.
	var stamp func(*Node)
	stamp = func(n *Node) {
		n.Separators = seps
		for _, c := range n.Children {
			stamp(c)
		}
	}
	stamp(interchange)

	result.Tree = interchange
	result.Errors = errs
	return result, nil
}

func (p *Parser) parseFunctionalGroup(queue *segmentDeque, seps Separators, icVersion string) (*Node, []StructuralError) {
	var errs []StructuralError

	gsTok := queue.PopLeft()
	gsNode := buildEnvelopeSegment(*gsTok, p.Catalog, gsSegmentID, seps)
	fg := &Node{Kind: FunctionalGroupNode, Name: functionalGroupName, Position: gsTok.Position}
	fg.Children = append(fg.Children, gsNode)

	fgCode := elementRaw(*gsTok, gsIndexFunctionalIDCode)
	fgDef, fgOK := p.Catalog.FunctionalGroupDef(icVersion, fgCode)
	var fgCursor *envelopeCursor
	if fgOK {
		fgCursor = newEnvelopeCursor(fgDef.Structure)
	}

	for queue.Length() > 0 {
		next := queue.PeekLeft()
		if next.ID == geSegmentID {
			geTok := queue.PopLeft()
			fg.Children = append(fg.Children, buildEnvelopeSegment(*geTok, p.Catalog, geSegmentID, seps))
			break
		}
		if next.ID != stSegmentID {
			errs = append(errs, StructuralError{
				Kind: unexpectedKind(next), Position: next.Position, DefRef: next.ID,
				Message: fmt.Sprintf("expected ST or GE, got %s", next.ID),
			})
			queue.PopLeft()
			continue
		}

		if fgCursor != nil {
			tsCode := elementRaw(*next, stIndexTransactionSetCode)
			fgCursor.match(tsCode, next.Position, &errs)
		}

		tsNode, tsErrs := p.parseTransactionSet(queue, seps)
		errs = append(errs, tsErrs...)
		fg.Children = append(fg.Children, tsNode)
	}

	if fgCursor != nil {
		fgCursor.finish(&errs)
	}
	return fg, errs
}

// envelopeCursor validates one occurrence at a time against a
// FunctionalGroupDef's or InterchangeDef's Structure, mirroring
// matchStructure's cursor-advance, lookahead, and missing-mandatory rules
// but keyed by an extracted code (GS01/ST01) rather than by segment id,
// and driven by a single match call per peeked occurrence rather than by
// looping over a pre-drained queue — the nested functional group or
// transaction set still has to be recursively parsed between one
// occurrence and the next.
type envelopeCursor struct {
	structure []EnvelopeChildUse
	counts    []int
	cursor    int
}

func newEnvelopeCursor(structure []EnvelopeChildUse) *envelopeCursor {
	return &envelopeCursor{structure: structure, counts: make([]int, len(structure))}
}

// match reports whether code is accepted at the cursor's current position,
// advancing past any satisfied or non-required children and reporting
// MissingMandatory for any required child code skips past. The nested
// subtree is parsed regardless of the outcome, so a GE/IEA count and the
// queue stay consistent; match only adds to errs.
func (e *envelopeCursor) match(code string, pos Position, errs *[]StructuralError) bool {
	for e.cursor < len(e.structure) {
		child := e.structure[e.cursor]
		if child.Code == code {
			if !child.Repeat.Allows(e.counts[e.cursor]) {
				*errs = append(*errs, StructuralError{
					Kind: TooManyRepetitions, Position: pos, DefRef: code,
					Message: fmt.Sprintf("%s exceeds repeat count %d", code, child.Repeat.Max),
				})
				return false
			}
			e.counts[e.cursor]++
			return true
		}
		if child.Repeat.Satisfied(e.counts[e.cursor]) || !child.Usage.Required() {
			e.cursor++
			continue
		}

		laterMatch := -1
		for j := e.cursor + 1; j < len(e.structure); j++ {
			if e.structure[j].Code == code {
				laterMatch = j
				break
			}
		}
		if laterMatch >= 0 {
			*errs = append(*errs, StructuralError{
				Kind: MissingMandatory, Position: pos, DefRef: child.Code,
				Message: fmt.Sprintf("missing mandatory %s", child.Code),
			})
			e.cursor++
			continue
		}
		break
	}

	*errs = append(*errs, StructuralError{
		Kind: UnexpectedSegment, Position: pos, DefRef: code,
		Message: fmt.Sprintf("%s is not a recognized code at this level", code),
	})
	return false
}

// finish reports MissingMandatory for any required child this cursor
// never reached, once every occurrence has been matched.
func (e *envelopeCursor) finish(errs *[]StructuralError) {
	for ; e.cursor < len(e.structure); e.cursor++ {
		child := e.structure[e.cursor]
		if child.Usage.Required() && !child.Repeat.Satisfied(e.counts[e.cursor]) {
			*errs = append(*errs, StructuralError{
				Kind: MissingMandatory, DefRef: child.Code,
				Message: fmt.Sprintf("missing mandatory %s", child.Code),
			})
		}
	}
}

// unexpectedKind reports UnknownSegment when tok's own id is malformed
// (not the clean uppercase-alphanumeric shape every schema-registered
// segment id has), independent of whether any structure could have placed
// it here; otherwise UnexpectedSegment, meaning the id is well-formed but
// not accepted at this position.
func unexpectedKind(tok *SegmentToken) ErrorKind {
	if tok.Unknown {
		return UnknownSegment
	}
	return UnexpectedSegment
}

func (p *Parser) parseTransactionSet(queue *segmentDeque, seps Separators) (*Node, []StructuralError) {
	var errs []StructuralError

	stTok := queue.PopLeft()
	stNode := buildEnvelopeSegment(*stTok, p.Catalog, stSegmentID, seps)
	ts := &Node{Kind: TransactionSetNode, Name: transactionSetName, Position: stTok.Position}
	ts.Children = append(ts.Children, stNode)

	code := elementRaw(*stTok, stIndexTransactionSetCode)
	version := elementRaw(*stTok, stIndexVersionCode)
	def, ok := p.Catalog.TransactionSetDef(version, code)

	if ok {
		body := matchStructure(queue, def.Structure, p.Catalog, &errs, false)
		ts.Children = append(ts.Children, body...)
	}

	for queue.Length() > 0 {
		next := queue.PeekLeft()
		if next.ID == seSegmentID {
			seTok := queue.PopLeft()
			ts.Children = append(ts.Children, buildEnvelopeSegment(*seTok, p.Catalog, seSegmentID, seps))
			break
		}
		// Segments that the transaction-set body couldn't place land
		// here; report and skip, per the Unmatched-at-root rule.
		errs = append(errs, StructuralError{
			Kind: unexpectedKind(next), Position: next.Position, DefRef: next.ID,
			Message: fmt.Sprintf("segment %s not accepted by transaction set %s/%s", next.ID, code, version),
		})
		queue.PopLeft()
	}
	return ts, errs
}

// matchStructure implements the core C6 zipper over one ordered
// structure (a loop's or transaction set's Structure list), applying the
// five placement rules from spec.md 4.6: same-child-repeat, advance past
// satisfied children, open a loop, (close handled by the caller once
// this returns), and unexpected-at-root (handled by the transaction-set
// caller once every structure in the stack has been tried).
//
// isLoopBody is true when structure is a LoopDef's own Structure, i.e.
// this call represents one iteration of an already-opened loop rather
// than a transaction set's or functional group's top-level structure.
// It changes how a child hitting its own repeat bound is handled: at
// top level that's a genuine TooManyRepetitions (nothing else in the
// structure can absorb the excess token), but inside a loop body the
// loop itself is what repeats — a lead segment reappearing once this
// iteration's quota is spent means a new loop occurrence should open,
// not that the token is an overflow to be dropped.
func matchStructure(queue *segmentDeque, structure []ChildUse, catalog *Catalog, errs *[]StructuralError, isLoopBody bool) []*Node {
	counts := make([]int, len(structure))
	var children []*Node
	cursor := 0

	for queue.Length() > 0 && cursor < len(structure) {
		tok := queue.PeekLeft()
		child := structure[cursor]
		leadID := child.leadSegmentID()

		if tok.ID == leadID {
			if !child.Repeat.Allows(counts[cursor]) {
				if isLoopBody {
					cursor++
					continue
				}
				dropped := queue.PopLeft()
				*errs = append(*errs, StructuralError{
					Kind: TooManyRepetitions, Position: dropped.Position, DefRef: leadID,
					Message: fmt.Sprintf("%s exceeds repeat count %d", leadID, child.Repeat.Max),
				})
				continue
			}
			if child.IsLoop() {
				inner := matchStructure(queue, child.LoopDef.Structure, catalog, errs, true)
				loopNode := &Node{
					Kind: LoopNode, Name: child.LoopDef.ID, Usage: child.Usage,
					Occurrence: counts[cursor], Children: inner, loopDef: child.LoopDef,
				}
				children = append(children, loopNode)
			} else {
				segTok := queue.PopLeft()
				segNode, segErrs := buildSegmentNode(*segTok, child.SegmentDef, child.Usage, catalog)
				segNode.Occurrence = counts[cursor]
				*errs = append(*errs, segErrs...)
				children = append(children, segNode)
			}
			counts[cursor]++
			continue
		}

		if child.Repeat.Satisfied(counts[cursor]) || (!child.Usage.Required() && counts[cursor] == 0) {
			if child.Usage.Required() && !child.Repeat.Satisfied(counts[cursor]) {
				*errs = append(*errs, missingMandatoryErr(child, tok.Position))
			}
			cursor++
			continue
		}

		laterMatch := -1
		for j := cursor + 1; j < len(structure); j++ {
			if structure[j].leadSegmentID() == tok.ID {
				laterMatch = j
				break
			}
		}
		if laterMatch >= 0 {
			*errs = append(*errs, missingMandatoryErr(child, tok.Position))
			cursor++
			continue
		}
		break
	}

	for ; cursor < len(structure); cursor++ {
		child := structure[cursor]
		if child.Usage.Required() && !child.Repeat.Satisfied(counts[cursor]) {
			*errs = append(*errs, missingMandatoryErr(child, Position{}))
		}
	}
	return children
}

func missingMandatoryErr(child ChildUse, pos Position) StructuralError {
	return StructuralError{
		Kind: MissingMandatory, Position: pos, DefRef: child.leadSegmentID(),
		Message: fmt.Sprintf("missing mandatory %s", child.leadSegmentID()),
	}
}

// buildSegmentNode zips a SegmentToken's element tokens against a
// SegmentDef's element uses, per spec.md 4.6's "Element population".
func buildSegmentNode(tok SegmentToken, def *SegmentDef, usage Usage, catalog *Catalog) (*Node, []StructuralError) {
	var errs []StructuralError
	node := &Node{Kind: SegmentNode, Name: tok.ID, Usage: usage, Position: tok.Position, segDef: def}

	if def == nil {
		return node, errs
	}

	for i, use := range def.Structure {
		pos := tok.Position
		pos.ElementIndex = i + 1

		if use.Usage == NotUsed {
			// Still occupies this positional slot in Children: omitting
			// it outright would shift every later element left when the
			// segment is rendered back to wire.
			node.Children = append(node.Children, emptyElementNode(use, usage, pos))
			continue
		}

		var etok ElementToken
		has := i < len(tok.Elements)
		if has {
			etok = tok.Elements[i]
		}
		blank := !has || (len(etok.Values) > 0 && len(etok.Values[0]) > 0 && etok.Values[0][0] == "" && !etok.IsComposite() && !etok.IsRepeated())

		if blank {
			if use.Usage == Mandatory {
				errs = append(errs, StructuralError{
					Kind: MissingMandatory, Position: pos, DefRef: elemUseName(use),
					Message: "missing mandatory element",
				})
			}
			node.Children = append(node.Children, emptyElementNode(use, usage, pos))
			continue
		}

		if use.Repeat.Max != 1 && etok.IsRepeated() {
			var reps []*Node
			for ri, compVals := range etok.Values {
				rp := pos
				rp.ComponentIndex = ri
				reps = append(reps, buildLeafOrComposite(use, usage, rp, compVals))
			}
			node.Children = append(node.Children, &Node{
				Kind: RepeatElementNode, Usage: usage, Position: pos, Children: reps,
			})
		} else {
			var comps []string
			if len(etok.Values) > 0 {
				comps = etok.Values[0]
			}
			node.Children = append(node.Children, buildLeafOrComposite(use, usage, pos, comps))
		}
	}
	return node, errs
}

func buildLeafOrComposite(use ElementUse, usage Usage, pos Position, comps []string) *Node {
	if use.IsComposite() {
		cnode := &Node{Kind: CompositeNode, Usage: usage, Position: pos}
		for i, compUse := range use.CompositeDef.Components {
			var raw string
			if i < len(comps) {
				raw = comps[i]
			}
			cp := pos
			cp.ComponentIndex = i + 1
			val := parseLeafValue(compUse.Def, compUse.Usage, cp, raw)
			cnode.Children = append(cnode.Children, &Node{Kind: ElementNode, Usage: compUse.Usage, Position: cp, Value: val})
		}
		return cnode
	}
	raw := ""
	if len(comps) > 0 {
		raw = comps[0]
	}
	val := parseLeafValue(use.ElementDef, usage, pos, raw)
	return &Node{Kind: ElementNode, Usage: usage, Position: pos, Value: val}
}

func emptyElementNode(use ElementUse, usage Usage, pos Position) *Node {
	if use.IsComposite() {
		return buildLeafOrComposite(use, usage, pos, nil)
	}
	val := parseLeafValue(use.ElementDef, usage, pos, "")
	return &Node{Kind: ElementNode, Usage: usage, Position: pos, Value: val}
}

func parseLeafValue(def *ElementDef, usage Usage, pos Position, raw string) ElementValue {
	if def == nil {
		fallback := &ElementDef{Kind: KindString, MaxLength: 999}
		return ParseString(fallback, usage, pos, KindString, raw, nil)
	}
	switch def.Kind {
	case KindNumeric:
		return ParseDecimal(def, usage, pos, raw)
	case KindReal:
		return ParseReal(def, usage, pos, raw)
	case KindDate:
		return ParseDate(def, usage, pos, raw)
	case KindTime:
		return ParseTime(def, usage, pos, raw)
	case KindIdentifier:
		return ParseString(def, usage, pos, KindIdentifier, raw, def.ValidCodes)
	default:
		return ParseString(def, usage, pos, KindString, raw, nil)
	}
}

func elemUseName(use ElementUse) string {
	if use.ElementDef != nil {
		return use.ElementDef.ID
	}
	if use.CompositeDef != nil {
		return use.CompositeDef.ID
	}
	return ""
}

// buildEnvelopeSegment builds a Segment node for one of the six fixed
// control segments (ISA/GS/ST/SE/GE/IEA). If the Catalog carries a
// SegmentDef for the id it's used for full element typing; otherwise a
// generic string-typed node is built so the tree stays complete even
// against a minimal catalog.
func buildEnvelopeSegment(tok SegmentToken, catalog *Catalog, id string, seps Separators) *Node {
	def, _ := catalog.SegmentDef(id)
	node, _ := buildSegmentNode(tok, def, Mandatory, catalog)
	node.Separators = seps
	return node
}

func elementRaw(tok SegmentToken, position int) string {
	i := position - 1
	if i < 0 || i >= len(tok.Elements) {
		return ""
	}
	if len(tok.Elements[i].Values) == 0 || len(tok.Elements[i].Values[0]) == 0 {
		return ""
	}
	return tok.Elements[i].Values[0][0]
}

// segmentDeque mimics a double-ended queue of SegmentTokens; segments
// not yet placed into the tree wait here between frames.
type segmentDeque struct {
	items *list.List
}

func newSegmentDeque() *segmentDeque {
	return &segmentDeque{items: list.New()}
}

func (d *segmentDeque) Append(tok SegmentToken) {
	t := tok
	d.items.PushBack(&t)
}

func (d *segmentDeque) PopLeft() *SegmentToken {
	if d.items.Len() == 0 {
		return nil
	}
	front := d.items.Front()
	d.items.Remove(front)
	return front.Value.(*SegmentToken)
}

func (d *segmentDeque) PeekLeft() *SegmentToken {
	if d.items.Len() == 0 {
		return nil
	}
	return d.items.Front().Value.(*SegmentToken)
}

func (d *segmentDeque) Length() int {
	return d.items.Len()
}
