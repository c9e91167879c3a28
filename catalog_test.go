package stupidedi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCatalogStructure(t *testing.T) {
	cat := mustDemoCatalog(t)

	beg, ok := cat.SegmentDef("BEG")
	require.True(t, ok)
	require.Len(t, beg.Structure, 5)
	assert.Equal(t, NotUsed, beg.Structure[3].Usage)

	ts, ok := cat.TransactionSetDef("000000", "DEM")
	require.True(t, ok)
	require.Len(t, ts.Structure, 4)
	assert.True(t, ts.Structure[1].IsLoop())
	assert.Equal(t, "N1_LOOP", ts.Structure[1].LoopDef.ID)
	assert.Equal(t, RepeatCount{Min: 0, Max: 0}, ts.Structure[1].LoopDef.Repeat)

	fg, ok := cat.FunctionalGroupDef("00000", "PO")
	require.True(t, ok)
	require.Len(t, fg.Structure, 1)
	assert.Equal(t, "DEM", fg.Structure[0].Code)
	assert.Equal(t, Mandatory, fg.Structure[0].Usage)
	assert.Equal(t, RepeatCount{Min: 1, Max: 0}, fg.Structure[0].Repeat)

	ic, ok := cat.InterchangeDef("00000")
	require.True(t, ok)
	require.Len(t, ic.Structure, 1)
	assert.Equal(t, "PO", ic.Structure[0].Code)
	assert.Equal(t, Mandatory, ic.Structure[0].Usage)
	assert.Equal(t, RepeatCount{Min: 1, Max: 0}, ic.Structure[0].Repeat)
}

func TestParseCatalogYAMLLoopForwardReference(t *testing.T) {
	const doc = `
elements:
  - {id: A1, name: "A", min_length: 1, max_length: 5, kind: string}

segments:
  - id: SEGA
    structure:
      - {position: 1, element: A1, usage: mandatory}

loops:
  - id: OUTER
    usage: optional
    repeat_min: 0
    repeat_max: 0
    structure:
      - {position: 1, loop: INNER, usage: optional, repeat_min: 0, repeat_max: 0}
  - id: INNER
    usage: optional
    repeat_min: 0
    repeat_max: 1
    structure:
      - {position: 1, segment: SEGA, usage: mandatory, repeat_min: 1, repeat_max: 1}

transaction_sets:
  - code: "ABC"
    version_code: "1"
    structure:
      - {position: 1, loop: OUTER, usage: optional, repeat_min: 0, repeat_max: 0}
`
	cat, err := ParseCatalogYAML([]byte(doc))
	require.NoError(t, err)

	ts, ok := cat.TransactionSetDef("1", "ABC")
	require.True(t, ok)
	require.Len(t, ts.Structure, 1)
	outer := ts.Structure[0].LoopDef
	require.NotNil(t, outer)
	require.Len(t, outer.Structure, 1)
	inner := outer.Structure[0].LoopDef
	require.NotNil(t, inner, "a loop declared after the loop that references it must still resolve")
	assert.Equal(t, "SEGA", inner.Structure[0].SegmentDef.ID)
}

func TestParseCatalogYAMLElementRepeatDefaultsToOne(t *testing.T) {
	const doc = `
elements:
  - {id: A1, name: "A", min_length: 1, max_length: 5, kind: string}
segments:
  - id: SEGA
    structure:
      - {position: 1, element: A1, usage: mandatory}
`
	cat, err := ParseCatalogYAML([]byte(doc))
	require.NoError(t, err)
	seg, ok := cat.SegmentDef("SEGA")
	require.True(t, ok)
	assert.Equal(t, RepeatCount{Min: 0, Max: 1}, seg.Structure[0].Repeat, "an element use with no repeat_max stated must default to non-repeating, not unbounded")
}

func TestParseCatalogYAMLInvalidPrecisionFails(t *testing.T) {
	const doc = `
elements:
  - {id: BAD, min_length: 1, max_length: 2, kind: numeric, precision: 9}
`
	_, err := ParseCatalogYAML([]byte(doc))
	require.Error(t, err)
}
