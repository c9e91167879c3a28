package stupidedi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlElementDef/yamlSegmentDef/... are the YAML-authorable shapes a
// Catalog is built from, loaded with gopkg.in/yaml.v3 (grounded in
// DerAndereAndi-mash's specparse.ParseSharedTypes/LoadSharedTypes
// pattern). They mirror the Go-side Catalog types field-for-field, kept
// separate so the YAML document's shape doesn't have to track internal
// representation details like the map-vs-slice choice Catalog makes for
// lookups.
type yamlElementDef struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	MinLength  int      `yaml:"min_length"`
	MaxLength  int      `yaml:"max_length"`
	Kind       string   `yaml:"kind"`
	Precision  int      `yaml:"precision"`
	ValidCodes []string `yaml:"valid_codes"`
}

type yamlComponentUse struct {
	Position int    `yaml:"position"`
	Element  string `yaml:"element"`
	Usage    string `yaml:"usage"`
}

type yamlCompositeDef struct {
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	Components []yamlComponentUse `yaml:"components"`
}

type yamlElementUse struct {
	Position  int    `yaml:"position"`
	Element   string `yaml:"element"`
	Composite string `yaml:"composite"`
	Usage     string `yaml:"usage"`
	RepeatMin int    `yaml:"repeat_min"`
	RepeatMax int    `yaml:"repeat_max"`
}

type yamlSegmentDef struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Purpose   string           `yaml:"purpose"`
	Structure []yamlElementUse `yaml:"structure"`
}

type yamlChildUse struct {
	Position  int    `yaml:"position"`
	Segment   string `yaml:"segment"`
	Loop      string `yaml:"loop"`
	Usage     string `yaml:"usage"`
	RepeatMin int    `yaml:"repeat_min"`
	RepeatMax int    `yaml:"repeat_max"`
}

type yamlLoopDef struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Usage     string         `yaml:"usage"`
	RepeatMin int            `yaml:"repeat_min"`
	RepeatMax int            `yaml:"repeat_max"`
	Structure []yamlChildUse `yaml:"structure"`
}

type yamlTransactionSetDef struct {
	Code        string         `yaml:"code"`
	VersionCode string         `yaml:"version_code"`
	Name        string         `yaml:"name"`
	Structure   []yamlChildUse `yaml:"structure"`
}

// yamlEnvelopeChildUse is the YAML shape for one EnvelopeChildUse: a
// permitted code at a position within a functional group's or
// interchange's structure, carrying the same usage/repeat_min/repeat_max
// fields a segment/loop child use does.
type yamlEnvelopeChildUse struct {
	Position  int    `yaml:"position"`
	Code      string `yaml:"code"`
	Usage     string `yaml:"usage"`
	RepeatMin int    `yaml:"repeat_min"`
	RepeatMax int    `yaml:"repeat_max"`
}

type yamlFunctionalGroupDef struct {
	FunctionalIdentifierCode string                 `yaml:"functional_identifier_code"`
	Structure                []yamlEnvelopeChildUse `yaml:"structure"`
}

type yamlInterchangeDef struct {
	VersionID string                 `yaml:"version_id"`
	Structure []yamlEnvelopeChildUse `yaml:"structure"`
}

// yamlCatalog is the top-level document shape for LoadCatalogYAML.
type yamlCatalog struct {
	Elements        []yamlElementDef         `yaml:"elements"`
	Composites      []yamlCompositeDef       `yaml:"composites"`
	Segments        []yamlSegmentDef         `yaml:"segments"`
	Loops           []yamlLoopDef            `yaml:"loops"`
	TransactionSets []yamlTransactionSetDef  `yaml:"transaction_sets"`
	FunctionalGroups []yamlFunctionalGroupDef `yaml:"functional_groups"`
	Interchanges    []yamlInterchangeDef     `yaml:"interchanges"`
}

func parseKind(s string) ElementKind {
	switch s {
	case "numeric":
		return KindNumeric
	case "real":
		return KindReal
	case "date":
		return KindDate
	case "time":
		return KindTime
	case "identifier":
		return KindIdentifier
	default:
		return KindString
	}
}

func parseUsage(s string) Usage {
	switch s {
	case "mandatory":
		return Mandatory
	case "relational":
		return Relational
	case "not_used":
		return NotUsed
	default:
		return Optional
	}
}

// parseRepeat mirrors RepeatCount's own convention: max == 0 means
// unbounded, matching how a YAML document spells an unbounded repeat
// (repeat_max: 0) rather than forcing authors to pick a large number.
// Used for segment/loop child uses, where this catalog format always
// states repeat_min/repeat_max explicitly.
func parseRepeat(min, max int) RepeatCount {
	return RepeatCount{Min: min, Max: max}
}

// parseElementRepeat is parseRepeat's element-use counterpart. Most
// elements never repeat and a YAML segment definition typically omits
// repeat_min/repeat_max for them entirely, so an omitted (zero-value)
// max defaults to 1 rather than unbounded; an author who wants a
// repeating element states repeat_max explicitly.
func parseElementRepeat(min, max int) RepeatCount {
	if max == 0 {
		max = 1
	}
	return RepeatCount{Min: min, Max: max}
}

// ParseCatalogYAML parses a YAML document into a finalized Catalog. Loop
// definitions and composite definitions may be declared in any order
// since segment/loop structures reference them by id and are resolved
// after every definition has been read.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	cat := NewCatalog()
	for _, e := range doc.Elements {
		cat.AddElement(&ElementDef{
			ID: e.ID, Name: e.Name, MinLength: e.MinLength, MaxLength: e.MaxLength,
			Kind: parseKind(e.Kind), Precision: e.Precision, ValidCodes: e.ValidCodes,
		})
	}
	for _, c := range doc.Composites {
		comp := &CompositeDef{ID: c.ID, Name: c.Name}
		for _, cu := range c.Components {
			ed, _ := cat.ElementDef(cu.Element)
			comp.Components = append(comp.Components, ComponentUse{
				Position: cu.Position, Def: ed, Usage: parseUsage(cu.Usage),
			})
		}
		cat.AddComposite(comp)
	}
	for _, s := range doc.Segments {
		seg := &SegmentDef{ID: s.ID, Name: s.Name, Purpose: s.Purpose}
		for _, eu := range s.Structure {
			use := ElementUse{
				Position: eu.Position, Usage: parseUsage(eu.Usage),
				Repeat: parseElementRepeat(eu.RepeatMin, eu.RepeatMax),
			}
			if eu.Composite != "" {
				use.CompositeDef = cat.composites[eu.Composite]
			} else {
				ed, _ := cat.ElementDef(eu.Element)
				use.ElementDef = ed
			}
			seg.Structure = append(seg.Structure, use)
		}
		cat.AddSegment(seg)
	}
	// Loops may reference other loops declared later in the document, so
	// register shells first and link structures in a second pass.
	for _, l := range doc.Loops {
		cat.AddLoop(&LoopDef{ID: l.ID, Name: l.Name, Usage: parseUsage(l.Usage), Repeat: parseRepeat(l.RepeatMin, l.RepeatMax)})
	}
	for _, l := range doc.Loops {
		loopDef := cat.loops[l.ID]
		loopDef.Structure = resolveChildUses(cat, l.Structure)
	}
	for _, t := range doc.TransactionSets {
		cat.AddTransactionSet(&TransactionSetDef{
			Code: t.Code, VersionCode: t.VersionCode, Name: t.Name,
			Structure: resolveChildUses(cat, t.Structure),
		})
	}
	for _, f := range doc.FunctionalGroups {
		cat.AddFunctionalGroup(&FunctionalGroupDef{
			FunctionalIdentifierCode: f.FunctionalIdentifierCode,
			Structure:                resolveEnvelopeChildUses(f.Structure),
		})
	}
	for _, i := range doc.Interchanges {
		cat.AddInterchange(&InterchangeDef{
			VersionID: i.VersionID,
			Structure: resolveEnvelopeChildUses(i.Structure),
		})
	}

	if err := cat.Finalize(); err != nil {
		return nil, err
	}
	return cat, nil
}

// resolveEnvelopeChildUses mirrors resolveChildUses one level further
// out: a functional group's or interchange's structure carries plain
// codes rather than catalog references, so there's nothing to resolve
// against cat — it's still a function of the same shape for symmetry
// with resolveChildUses and to keep the construction site uniform.
func resolveEnvelopeChildUses(uses []yamlEnvelopeChildUse) []EnvelopeChildUse {
	out := make([]EnvelopeChildUse, 0, len(uses))
	for _, u := range uses {
		out = append(out, EnvelopeChildUse{
			Position: u.Position, Code: u.Code, Usage: parseUsage(u.Usage),
			Repeat: parseRepeat(u.RepeatMin, u.RepeatMax),
		})
	}
	return out
}

func resolveChildUses(cat *Catalog, uses []yamlChildUse) []ChildUse {
	out := make([]ChildUse, 0, len(uses))
	for _, cu := range uses {
		child := ChildUse{Position: cu.Position, Usage: parseUsage(cu.Usage), Repeat: parseRepeat(cu.RepeatMin, cu.RepeatMax)}
		if cu.Loop != "" {
			child.LoopDef = cat.loops[cu.Loop]
		} else {
			child.SegmentDef = cat.segments[cu.Segment]
		}
		out = append(out, child)
	}
	return out
}

// LoadCatalogYAML reads a YAML catalog document from path.
func LoadCatalogYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return ParseCatalogYAML(data)
}
