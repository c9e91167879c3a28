package stupidedi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeKind distinguishes the levels of the constructed tree.
type NodeKind int

const (
	InterchangeNode NodeKind = iota
	FunctionalGroupNode
	TransactionSetNode
	LoopNode
	SegmentNode
	CompositeNode
	ElementNode
	RepeatElementNode
)

func (k NodeKind) String() string {
	switch k {
	case InterchangeNode:
		return "Interchange"
	case FunctionalGroupNode:
		return "FunctionalGroup"
	case TransactionSetNode:
		return "TransactionSet"
	case LoopNode:
		return "Loop"
	case SegmentNode:
		return "Segment"
	case CompositeNode:
		return "Composite"
	case ElementNode:
		return "Element"
	case RepeatElementNode:
		return "RepeatElement"
	default:
		return "Unknown"
	}
}

// Node is the uniform parent/child tree node described by spec.md 3/4.5:
// schema definition, usage, separators, position, and an ordered list of
// children. Segment nodes' children are element/composite values;
// composite nodes' children are component element values; higher nodes'
// children are lower nodes. Element nodes carry a Value instead of
// Children.
type Node struct {
	Kind       NodeKind
	Name       string
	Usage      Usage
	Separators Separators
	Position   Position
	Occurrence int
	Children   []*Node
	Value      ElementValue

	segDef  *SegmentDef
	loopDef *LoopDef
}

// NewNode constructs a Node of the given kind and name with no children
// and no value set yet.
func NewNode(kind NodeKind, name string) *Node {
	return &Node{Kind: kind, Name: name}
}

// Append adds a child to the end of Children. It is a thin convenience
// wrapper used while building a tree bottom-up (the parser and tests);
// once a tree is handed out of the package, callers should prefer Copy.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// Element returns the i'th (1-indexed) child of a segment or composite
// node.
func (n *Node) Element(i int) (*Node, error) {
	if i < 1 || i > len(n.Children) {
		return nil, fmt.Errorf("element index %d out of range [1,%d]", i, len(n.Children))
	}
	return n.Children[i-1], nil
}

// SegmentDef returns the schema definition a segment node was built
// against, or nil if the catalog had none for its id.
func (n *Node) SegmentDef() *SegmentDef { return n.segDef }

// LoopDef returns the schema definition a loop node was built against.
func (n *Node) LoopDef() *LoopDef { return n.loopDef }

// Segment searches the subtree rooted at n (inclusive) for the
// occurrence'th (0-indexed) segment node with the given id, in document
// order.
func (n *Node) Segment(id string, occurrence int) (*Node, bool) {
	found := 0
	var walk func(*Node) (*Node, bool)
	walk = func(cur *Node) (*Node, bool) {
		if cur.Kind == SegmentNode && cur.Name == id {
			if found == occurrence {
				return cur, true
			}
			found++
		}
		for _, c := range cur.Children {
			if r, ok := walk(c); ok {
				return r, true
			}
		}
		return nil, false
	}
	return walk(n)
}

// At resolves a "/"-separated path of child indices (1-indexed) from n.
func (n *Node) At(path string) (*Node, error) {
	cur := n
	var idx int
	for _, part := range splitPath(path) {
		if _, err := fmt.Sscanf(part, "%d", &idx); err != nil {
			return nil, fmt.Errorf("invalid path segment %q: %w", part, err)
		}
		next, err := cur.Element(idx)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		parts = append(parts, path[start:])
	}
	return parts
}

// NodeChanges names the fields Copy should replace; nil fields are left
// as-is. This is the "explicit change sets" mechanism spec.md's
// Lifecycles section requires in place of mutation.
type NodeChanges struct {
	Name       *string
	Usage      *Usage
	Separators *Separators
	Position   *Position
	Occurrence *int
	Children   *[]*Node
	Value      *ElementValue
}

// Copy returns a new Node with the listed fields replaced; all others are
// shared with the receiver (children slices are copied shallowly unless
// Children is given explicitly, so replacing a deep descendant still
// requires rebuilding the path to it, same as any persistent tree).
func (n *Node) Copy(changes NodeChanges) *Node {
	out := &Node{
		Kind:       n.Kind,
		Name:       n.Name,
		Usage:      n.Usage,
		Separators: n.Separators,
		Position:   n.Position,
		Occurrence: n.Occurrence,
		Value:      n.Value,
		segDef:     n.segDef,
		loopDef:    n.loopDef,
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		copy(out.Children, n.Children)
	}

	if changes.Name != nil {
		out.Name = *changes.Name
	}
	if changes.Usage != nil {
		out.Usage = *changes.Usage
	}
	if changes.Separators != nil {
		out.Separators = *changes.Separators
	}
	if changes.Position != nil {
		out.Position = *changes.Position
	}
	if changes.Occurrence != nil {
		out.Occurrence = *changes.Occurrence
	}
	if changes.Children != nil {
		out.Children = *changes.Children
	}
	if changes.Value != nil {
		out.Value = *changes.Value
	}
	return out
}

// withRawValue returns a copy of an element node whose value is replaced
// by a plain string built from raw. It exists only to support the
// narrowly-scoped ReplaceEnvelopeSeparators operation, which rewrites the
// literal characters of ISA11/ISA16 without touching element semantics
// elsewhere in the tree.
func (n *Node) withRawValue(raw string) *Node {
	def := &ElementDef{MinLength: 0, MaxLength: len(raw), Kind: KindString}
	val := ElementValue(ParseString(def, n.Usage, n.Position, KindString, raw, nil))
	return n.Copy(NodeChanges{Value: &val})
}

// Format renders the node tree's wire representation using the node's
// own Separators (see Write in writer.go for the top-level entry point
// callers should normally use instead).
func (n *Node) Format() []byte {
	var buf bytes.Buffer
	writeNode(&buf, n, n.Separators)
	return buf.Bytes()
}

// nodeJSON is the JSON-friendly projection of a Node; used by
// MarshalJSON so element values render as their wire strings rather than
// as the internal tagged-sum representation.
type nodeJSON struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Usage      string      `json:"usage"`
	Occurrence int         `json:"occurrence,omitempty"`
	Value      string      `json:"value,omitempty"`
	State      string      `json:"state,omitempty"`
	Children   []*Node     `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	proj := nodeJSON{
		Kind:       n.Kind.String(),
		Name:       n.Name,
		Usage:      n.Usage.String(),
		Occurrence: n.Occurrence,
		Children:   n.Children,
	}
	if n.Value != nil {
		proj.Value = n.Value.ToWire(false)
		proj.State = n.Value.State().String()
	}
	return json.Marshal(proj)
}
