package stupidedi

import (
	"fmt"

	"github.com/samber/lo"
)

// EnvelopeErrorKind enumerates the envelope cross-check failures
// ValidateEnvelopeCounters can report. These are structural consistency
// checks declared by the envelope layout itself (control number pairs
// and included-segment/transaction-set counts), not business rules, so
// they stay in scope even though spec.md's Non-goals exclude
// "business-rule validation beyond the structural and type constraints
// declared by schemas" — count/pair matching is exactly such a
// structural constraint.
type EnvelopeErrorKind int

const (
	ControlNumberMismatch EnvelopeErrorKind = iota
	IncludedCountMismatch
)

type EnvelopeError struct {
	Kind    EnvelopeErrorKind
	Segment string
	Message string
}

func (e EnvelopeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Segment, e.Message)
}

// ValidateEnvelopeCounters checks ISA13/IEA02, GS06/GE02, ST02/SE02
// control-number pairing, and the GE01/SE01 included-count fields,
// against an Interchange node built by Parser.Parse.
func ValidateEnvelopeCounters(interchange *Node) []EnvelopeError {
	var errs []EnvelopeError

	isa, hasISA := interchange.Segment(isaSegmentID, 0)
	iea, hasIEA := interchange.Segment(ieaSegmentID, 0)
	if hasISA && hasIEA {
		errs = append(errs, checkControlNumber(isa, isaIndexControlNumber, iea, ieaIndexControlNumber, "ISA13/IEA02")...)
	}

	functionalGroups := lo.Filter(interchange.Children, func(n *Node, _ int) bool { return n.Kind == FunctionalGroupNode })
	for _, fg := range functionalGroups {
		gs, hasGS := fg.Segment(gsSegmentID, 0)
		ge, hasGE := fg.Segment(geSegmentID, 0)
		if !hasGS || !hasGE {
			continue
		}
		errs = append(errs, checkControlNumber(gs, gsIndexControlNumber, ge, geIndexControlNumber, "GS06/GE02")...)

		transactionSets := lo.Filter(fg.Children, func(n *Node, _ int) bool { return n.Kind == TransactionSetNode })
		if want, ok := intValueOf(ge, geIndexIncludedTransactionSets); ok && want != len(transactionSets) {
			errs = append(errs, EnvelopeError{
				Kind: IncludedCountMismatch, Segment: "GE01",
				Message: fmt.Sprintf("GE01 declares %d transaction sets, found %d", want, len(transactionSets)),
			})
		}

		for _, ts := range transactionSets {
			st, hasST := ts.Segment(stSegmentID, 0)
			se, hasSE := ts.Segment(seSegmentID, 0)
			if !hasST || !hasSE {
				continue
			}
			errs = append(errs, checkControlNumber(st, stIndexControlNumber, se, seIndexControlNumber, "ST02/SE02")...)
			if want, ok := intValueOf(se, seIndexIncludedSegments); ok && want != countSegments(ts) {
				errs = append(errs, EnvelopeError{
					Kind: IncludedCountMismatch, Segment: "SE01",
					Message: fmt.Sprintf("SE01 declares %d segments, found %d", want, countSegments(ts)),
				})
			}
		}
	}
	return errs
}

func checkControlNumber(headerSeg *Node, headerIdx int, trailerSeg *Node, trailerIdx int, label string) []EnvelopeError {
	headerVal := rawElement(headerSeg, headerIdx)
	trailerVal := rawElement(trailerSeg, trailerIdx)
	if headerVal != trailerVal {
		return []EnvelopeError{{
			Kind: ControlNumberMismatch, Segment: label,
			Message: fmt.Sprintf("control numbers do not match: %q vs %q", headerVal, trailerVal),
		}}
	}
	return nil
}

func rawElement(seg *Node, position int) string {
	el, err := seg.Element(position)
	if err != nil || el.Value == nil {
		return ""
	}
	return el.Value.ToWire(false)
}

func intValueOf(seg *Node, position int) (int, bool) {
	raw := rawElement(seg, position)
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// countSegments counts every SegmentNode in the subtree rooted at ts,
// ST and SE included, which is what SE01 declares by the X12 standard's
// own convention.
func countSegments(ts *Node) int {
	count := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == SegmentNode {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(ts)
	return count
}
