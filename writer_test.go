package stupidedi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriterRoundTripsNotUsedElement exercises the BEG segment's NotUsed
// 4th element slot (position 4, re-using BEG03's definition but marked
// not_used in the demo catalog): the element must still occupy its wire
// position so BEG05 isn't shifted left into its place.
func TestWriterRoundTripsNotUsedElement(t *testing.T) {
	wire := demoInterchange(t, "0001", []string{
		"BEG*00*RE*PO-998877**20260803",
		"AMT*TT*12345",
	})
	result := parseDemo(t, wire)
	require.Empty(t, result.Errors)

	beg, ok := result.Tree.Segment("BEG", 0)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, beg, DefaultWriteOptions))
	assert.Equal(t, "BEG*00*RE*PO-998877**20260803~", buf.String(), "the not_used slot must render as an empty element, preserving position")
}

// TestWriterFullInterchangeRoundTrip parses a message with two occurrences
// each of the N1 and PO1 loops and checks that writing the whole tree back
// out reproduces the original bytes exactly.
func TestWriterFullInterchangeRoundTrip(t *testing.T) {
	wire := demoInterchange(t, "0002", []string{
		"BEG*00*RE*PO-1**20260803",
		"N1*BT*Buyer One",
		"N1*ST*Ship To Co",
		"AMT*TT*500",
		"PO1*1*10*EA*250",
		"PO1*2*5*EA*300",
	})
	result := parseDemo(t, wire)
	require.Empty(t, result.Errors)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result.Tree, WriteOptions{Truncate: false}))
	assert.Equal(t, wire, buf.String())
}

// TestWriterOmitsOnlyTrailingEmptySlots verifies that trailing Empty slots
// are omitted from the rendered wire: with BEG03 as the last element sent,
// both the NotUsed BEG04 and the blank optional BEG05 are trailing, so
// neither is rendered. (TestWriterRoundTripsNotUsedElement covers a NotUsed
// slot in the middle, which is kept.)
func TestWriterOmitsOnlyTrailingEmptySlots(t *testing.T) {
	wire := demoInterchange(t, "0003", []string{
		"BEG*00*RE*PO-1",
		"AMT*TT*100",
	})
	result := parseDemo(t, wire)
	require.Empty(t, result.Errors)

	beg, ok := result.Tree.Segment("BEG", 0)
	require.True(t, ok)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, beg, DefaultWriteOptions))
	assert.Equal(t, "BEG*00*RE*PO-1~", buf.String())
}

func TestWriterTruncatesOverLongNumeric(t *testing.T) {
	def := &ElementDef{ID: "AMT02", MinLength: 1, MaxLength: 3, Kind: KindNumeric, Precision: 0}
	seg := &Node{Kind: SegmentNode, Name: "AMT", Children: []*Node{
		{Kind: ElementNode, Value: ParseDecimal(def, Mandatory, Position{}, "12345")},
	}}
	var buf bytes.Buffer
	writeNode(&buf, seg, DefaultSeparators)
	assert.Equal(t, "AMT*123~", buf.String())
}

func TestWriterRepeatedElement(t *testing.T) {
	def := &ElementDef{ID: "N101", MinLength: 1, MaxLength: 10, Kind: KindString}
	rep := &Node{Kind: RepeatElementNode, Children: []*Node{
		{Kind: ElementNode, Value: ParseString(def, Mandatory, Position{}, KindString, "AAA", nil)},
		{Kind: ElementNode, Value: ParseString(def, Mandatory, Position{}, KindString, "BBB", nil)},
	}}
	seg := &Node{Kind: SegmentNode, Name: "REF", Children: []*Node{rep}}
	var buf bytes.Buffer
	writeNode(&buf, seg, DefaultSeparators)
	assert.Equal(t, "REF*AAA^BBB~", buf.String())
}
