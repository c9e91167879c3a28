package stupidedi

// RegisterEnvelopeSegments adds SegmentDefs for the six fixed control
// segments (ISA/GS/ST/SE/GE/IEA) plus the HL hierarchical-level segment
// to cat. These are the only segment shapes the engine itself builds in,
// since their layout is part of the X12 standard rather than a
// per-transaction-set schema choice; every other segment id comes from a
// loaded Catalog (see LoadCatalogYAML).
func RegisterEnvelopeSegments(cat *Catalog) {
	cat.AddSegment(isaSegmentDef())
	cat.AddSegment(fixedStringSegment(gsSegmentID, "Functional Group Header", []fieldSpec{
		{"GS01", 2, 2}, {"GS02", 2, 15}, {"GS03", 2, 15}, {"GS04", 8, 8},
		{"GS05", 4, 8}, {"GS06", 1, 9}, {"GS07", 1, 2}, {"GS08", 1, 12},
	}))
	cat.AddSegment(fixedStringSegment(stSegmentID, "Transaction Set Header", []fieldSpec{
		{"ST01", 3, 3}, {"ST02", 4, 9}, {"ST03", 0, 35},
	}))
	cat.AddSegment(fixedStringSegment(seSegmentID, "Transaction Set Trailer", []fieldSpec{
		{"SE01", 1, 10}, {"SE02", 4, 9},
	}))
	cat.AddSegment(fixedStringSegment(geSegmentID, "Functional Group Trailer", []fieldSpec{
		{"GE01", 1, 6}, {"GE02", 1, 9},
	}))
	cat.AddSegment(fixedStringSegment(ieaSegmentID, "Interchange Control Trailer", []fieldSpec{
		{"IEA01", 1, 5}, {"IEA02", 9, 9},
	}))
	cat.AddSegment(fixedStringSegment(hlSegmentID, "Hierarchical Level", []fieldSpec{
		{"HL01", 1, 12}, {"HL02", 0, 12}, {"HL03", 1, 2}, {"HL04", 0, 1},
	}))
}

type fieldSpec struct {
	id        string
	minLength int
	maxLength int
}

func fixedStringSegment(id, name string, fields []fieldSpec) *SegmentDef {
	def := &SegmentDef{ID: id, Name: name}
	for i, f := range fields {
		def.Structure = append(def.Structure, ElementUse{
			Position:   i + 1,
			ElementDef: &ElementDef{ID: f.id, MinLength: f.minLength, MaxLength: f.maxLength, Kind: KindString},
			Usage:      Mandatory,
			Repeat:     Bounded(1, 1),
		})
	}
	return def
}

// isaSegmentDef mirrors the ISA's 16 fixed-width positional elements
// (the segment id itself isn't one of the 16). ISA11 and ISA16 are the
// single-byte repetition/component separator fields.
func isaSegmentDef() *SegmentDef {
	widths := []int{2, 10, 2, 10, 2, 15, 2, 15, 6, 4, 1, 5, 9, 1, 1, 1}
	names := []string{
		"ISA01", "ISA02", "ISA03", "ISA04", "ISA05", "ISA06", "ISA07", "ISA08",
		"ISA09", "ISA10", "ISA11", "ISA12", "ISA13", "ISA14", "ISA15", "ISA16",
	}
	def := &SegmentDef{ID: isaSegmentID, Name: "Interchange Control Header"}
	for i, w := range widths {
		def.Structure = append(def.Structure, ElementUse{
			Position:   i + 1,
			ElementDef: &ElementDef{ID: names[i], MinLength: w, MaxLength: w, Kind: KindString},
			Usage:      Mandatory,
			Repeat:     Bounded(1, 1),
		})
	}
	return def
}
