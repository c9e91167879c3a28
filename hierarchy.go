package stupidedi

// HierarchicalLevel is one reconstructed node of an HL loop tree: the
// flat HL segments in a transaction set, regrouped by HL02 (parent id)
// into actual parent/child nesting.
type HierarchicalLevel struct {
	ID        string
	ParentID  string
	LevelCode string
	HasChild  bool
	Segment   *Node
	Children  []*HierarchicalLevel
}

// BuildHierarchy walks ts's HL segments (wherever they sit in the tree,
// since HL segments are typically themselves wrapped one-per-loop) and
// reconstructs the parent/child tree HL02 describes. Segments with an
// empty or unresolvable parent id become roots.
func BuildHierarchy(ts *Node) []*HierarchicalLevel {
	var flat []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == SegmentNode && n.Name == hlSegmentID {
			flat = append(flat, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(ts)

	byID := make(map[string]*HierarchicalLevel, len(flat))
	levels := make([]*HierarchicalLevel, 0, len(flat))

	for _, seg := range flat {
		lvl := &HierarchicalLevel{
			ID:        rawElement(seg, hlIndexHierarchicalID),
			ParentID:  rawElement(seg, hlIndexParentID),
			LevelCode: rawElement(seg, hlIndexLevelCode),
			Segment:   seg,
		}
		if rawElement(seg, hlIndexChildCode) == "1" {
			lvl.HasChild = true
		}
		byID[lvl.ID] = lvl
		levels = append(levels, lvl)
	}

	var roots []*HierarchicalLevel
	for _, lvl := range levels {
		if lvl.ParentID == "" {
			roots = append(roots, lvl)
			continue
		}
		parent, ok := byID[lvl.ParentID]
		if !ok {
			roots = append(roots, lvl)
			continue
		}
		parent.Children = append(parent.Children, lvl)
	}
	return roots
}
