package stupidedi

import (
	"bytes"
	"io"
)

// WriteOptions controls Writer behavior. Truncate governs whether
// element rendering truncates over-long values (see ElementValue.ToWire).
// DefaultWriteOptions below sets Truncate to true, the Writer's specified
// behavior; the zero WriteOptions value has Truncate false and renders
// over-long values in full.
type WriteOptions struct {
	Truncate bool
}

// DefaultWriteOptions matches the Writer's specified behavior:
// truncate=true.
var DefaultWriteOptions = WriteOptions{Truncate: true}

// Write performs the pre-order traversal described by spec.md 4.7,
// rendering tree into w under tree's own Separators.
func Write(w io.Writer, tree *Node, opts WriteOptions) error {
	var buf bytes.Buffer
	writeNodeOpts(&buf, tree, tree.Separators, opts)
	_, err := w.Write(buf.Bytes())
	return err
}

// writeNode is the Format-method entry point; it always truncates, which
// is the Writer's specified default.
func writeNode(buf *bytes.Buffer, n *Node, seps Separators) {
	writeNodeOpts(buf, n, seps, DefaultWriteOptions)
}

func writeNodeOpts(buf *bytes.Buffer, n *Node, seps Separators, opts WriteOptions) {
	switch n.Kind {
	case SegmentNode:
		writeSegment(buf, n, seps, opts)
	default:
		for _, child := range n.Children {
			writeNodeOpts(buf, child, seps, opts)
		}
	}
}

// writeSegment renders one segment: its id, then each element slot
// joined by the element delimiter, with trailing Empty elements omitted
// (never a middle Empty, which would shift positions), terminated by the
// segment delimiter.
func writeSegment(buf *bytes.Buffer, seg *Node, seps Separators, opts WriteOptions) {
	rendered := make([]string, 0, len(seg.Children))
	trimmable := make([]bool, 0, len(seg.Children))
	for _, child := range seg.Children {
		rendered = append(rendered, writeElementSlot(child, seps, opts))
		trimmable = append(trimmable, isEmptySlot(child))
	}

	end := len(rendered)
	for end > 0 && trimmable[end-1] {
		end--
	}
	rendered = rendered[:end]

	buf.WriteString(seg.Name)
	for _, r := range rendered {
		buf.WriteByte(seps.Element)
		buf.WriteString(r)
	}
	buf.WriteByte(seps.Segment)
}

// writeElementSlot renders one element-use slot: a simple element, a
// composite (components joined by the component delimiter), or a
// repeated element (repetitions joined by the repetition delimiter).
func writeElementSlot(n *Node, seps Separators, opts WriteOptions) string {
	switch n.Kind {
	case ElementNode:
		if n.Value == nil {
			return ""
		}
		return n.Value.ToWire(opts.Truncate)
	case CompositeNode:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = writeElementSlot(c, seps, opts)
		}
		return joinBytes(parts, seps.Component)
	case RepeatElementNode:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = writeElementSlot(c, seps, opts)
		}
		return joinBytes(parts, seps.Repetition)
	default:
		return ""
	}
}

// isEmptySlot reports whether an element-use slot holds no wire-significant
// data, i.e. every underlying value is in the Empty state. A trailing
// Invalid slot (unparseable but present on the wire) renders to the same
// "" as an Empty one but must not be trimmed, or a value the source
// actually sent would silently disappear on round-trip.
func isEmptySlot(n *Node) bool {
	switch n.Kind {
	case ElementNode:
		return n.Value == nil || n.Value.State() == Empty
	case CompositeNode, RepeatElementNode:
		for _, c := range n.Children {
			if !isEmptySlot(c) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func joinBytes(parts []string, sep byte) string {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(sep)
		}
		buf.WriteString(p)
	}
	return buf.String()
}
