package stupidedi

// demoCatalogYAML is a small, self-contained transaction-set definition
// used by this module's own test suite and by cmd/stupidedi's example
// invocation. The full per-version X12 segment/element dictionary (the
// enumerated schema catalog spec.md 1 places out of scope) is not
// reproduced here; this is just enough schema to exercise every part of
// the engine end to end: a mandatory header segment, an optional
// repeatable name loop, a mandatory segment carrying a fixed-precision
// decimal element, and a repeatable line-item loop.
const demoCatalogYAML = `
elements:
  - {id: BEG01, name: "Purpose Code", min_length: 2, max_length: 2, kind: identifier, valid_codes: ["00", "01"]}
  - {id: BEG02, name: "Transaction Type", min_length: 2, max_length: 2, kind: string}
  - {id: BEG03, name: "PO Number", min_length: 1, max_length: 22, kind: string}
  - {id: BEG05, name: "PO Date", min_length: 8, max_length: 8, kind: date}
  - {id: N101, name: "Entity Identifier Code", min_length: 2, max_length: 3, kind: identifier, valid_codes: ["BT", "ST", "SE"]}
  - {id: N102, name: "Name", min_length: 1, max_length: 60, kind: string}
  - {id: AMT01, name: "Amount Qualifier", min_length: 1, max_length: 3, kind: identifier, valid_codes: ["TT"]}
  - {id: AMT02, name: "Monetary Amount", min_length: 1, max_length: 15, kind: numeric, precision: 2}
  - {id: PO101, name: "Line Item Number", min_length: 1, max_length: 6, kind: string}
  - {id: PO102, name: "Quantity", min_length: 1, max_length: 6, kind: numeric, precision: 0}
  - {id: PO103, name: "Unit of Measure", min_length: 2, max_length: 2, kind: string}
  - {id: PO104, name: "Unit Price", min_length: 1, max_length: 10, kind: numeric, precision: 2}

segments:
  - id: BEG
    name: "Beginning Segment for Purchase Order"
    structure:
      - {position: 1, element: BEG01, usage: mandatory}
      - {position: 2, element: BEG02, usage: mandatory}
      - {position: 3, element: BEG03, usage: mandatory}
      - {position: 4, element: BEG03, usage: not_used}
      - {position: 5, element: BEG05, usage: optional}
  - id: N1
    name: "Name"
    structure:
      - {position: 1, element: N101, usage: mandatory}
      - {position: 2, element: N102, usage: optional}
  - id: AMT
    name: "Monetary Amount"
    structure:
      - {position: 1, element: AMT01, usage: mandatory}
      - {position: 2, element: AMT02, usage: mandatory}
  - id: PO1
    name: "Baseline Item Data"
    structure:
      - {position: 1, element: PO101, usage: mandatory}
      - {position: 2, element: PO102, usage: mandatory}
      - {position: 3, element: PO103, usage: optional}
      - {position: 4, element: PO104, usage: optional}

loops:
  - id: N1_LOOP
    name: "Name Loop"
    usage: optional
    repeat_min: 0
    repeat_max: 0
    structure:
      - {position: 1, segment: N1, usage: mandatory, repeat_min: 1, repeat_max: 1}
  - id: PO1_LOOP
    name: "Baseline Item Loop"
    usage: optional
    repeat_min: 0
    repeat_max: 0
    structure:
      - {position: 1, segment: PO1, usage: mandatory, repeat_min: 1, repeat_max: 1}

transaction_sets:
  - code: "DEM"
    version_code: "000000"
    name: "Demonstration Purchase Order"
    structure:
      - {position: 1, segment: BEG, usage: mandatory, repeat_min: 1, repeat_max: 1}
      - {position: 2, loop: N1_LOOP, usage: optional, repeat_min: 0, repeat_max: 0}
      - {position: 3, segment: AMT, usage: mandatory, repeat_min: 1, repeat_max: 1}
      - {position: 4, loop: PO1_LOOP, usage: optional, repeat_min: 0, repeat_max: 0}

functional_groups:
  - functional_identifier_code: "PO"
    structure:
      - {position: 1, code: "DEM", usage: mandatory, repeat_min: 1, repeat_max: 0}

interchanges:
  - version_id: "00000"
    structure:
      - {position: 1, code: "PO", usage: mandatory, repeat_min: 1, repeat_max: 0}
`

// DemoCatalog builds the Catalog used by this module's own tests: the
// six fixed envelope control segments and the HL segment (see
// RegisterEnvelopeSegments) plus the demonstration transaction set
// defined by demoCatalogYAML.
func DemoCatalog() (*Catalog, error) {
	cat, err := ParseCatalogYAML([]byte(demoCatalogYAML))
	if err != nil {
		return nil, err
	}
	// ParseCatalogYAML already finalized cat without the envelope
	// segments; register them and finalize again so the full catalog
	// (envelope + demo transaction set) is validated together.
	RegisterEnvelopeSegments(cat)
	if err := cat.Finalize(); err != nil {
		return nil, err
	}
	return cat, nil
}
