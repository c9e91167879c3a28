package stupidedi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSeparators(t *testing.T) {
	isa := buildISA(t, defaultISAFields(), '*', '~')
	seps, err := InferSeparators([]byte(isa))
	require.NoError(t, err)
	assert.Equal(t, byte('~'), seps.Segment)
	assert.Equal(t, byte('*'), seps.Element)
	assert.Equal(t, byte(':'), seps.Component)
	assert.Equal(t, byte('^'), seps.Repetition)
}

func TestInferSeparatorsCustomDelimiters(t *testing.T) {
	f := defaultISAFields()
	f.repetitionSep = "\\"
	f.componentSep = "}"
	isa := buildISA(t, f, '|', '\n')
	seps, err := InferSeparators([]byte(isa))
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), seps.Segment)
	assert.Equal(t, byte('|'), seps.Element)
	assert.Equal(t, byte('}'), seps.Component)
	assert.Equal(t, byte('\\'), seps.Repetition)
}

func TestInferSeparatorsTooShort(t *testing.T) {
	_, err := InferSeparators([]byte("ISA*00*"))
	require.Error(t, err)
	var malformed *MalformedHeaderError
	assert.ErrorAs(t, err, &malformed)
}

func TestInferSeparatorsBadPrefix(t *testing.T) {
	bad := make([]byte, isaByteCount)
	copy(bad, []byte("XSA*00*"))
	_, err := InferSeparators(bad)
	require.Error(t, err)
}

func TestSeparatorsValidateCollision(t *testing.T) {
	seps := DefaultSeparators
	seps.Component = seps.Element
	err := seps.validate()
	require.Error(t, err)
}

func TestSeparatorsWith(t *testing.T) {
	next, err := DefaultSeparators.With(ComponentField, '}')
	require.NoError(t, err)
	assert.Equal(t, byte('}'), next.Component)
	assert.Equal(t, DefaultSeparators.Element, next.Element)

	_, err = DefaultSeparators.With(ComponentField, DefaultSeparators.Element)
	require.Error(t, err)
}

func TestSeparatorsEqual(t *testing.T) {
	assert.True(t, DefaultSeparators.Equal(DefaultSeparators))
	other, err := DefaultSeparators.With(RepetitionField, '\\')
	require.NoError(t, err)
	assert.False(t, DefaultSeparators.Equal(other))
}

// TestReplaceEnvelopeSeparators checks that only ISA11 (repetition) and
// ISA16 (component) are rewritten, and that every other ISA element
// (specifically ISA12, the version, immediately after the repetition
// separator slot) is left untouched.
func TestReplaceEnvelopeSeparators(t *testing.T) {
	cat := mustDemoCatalog(t)

	p := NewParser(cat)
	wire := demoInterchange(t, "0001", []string{
		"BEG*00*RE*PO-1",
		"AMT*TT*100",
	})
	result, err := p.Parse(context.Background(), strings.NewReader(wire))
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	isaNode, ok := result.Tree.Segment(isaSegmentID, 0)
	require.True(t, ok)

	versionBefore, err := isaNode.Element(isaIndexVersion)
	require.NoError(t, err)
	require.Equal(t, "00000", versionBefore.Value.ToWire(false))

	next, err := DefaultSeparators.With(RepetitionField, '\\')
	require.NoError(t, err)
	next, err = next.With(ComponentField, '}')
	require.NoError(t, err)

	replaced, err := ReplaceEnvelopeSeparators(isaNode, next)
	require.NoError(t, err)

	rep, err := replaced.Element(isaIndexRepetitionSeparator)
	require.NoError(t, err)
	assert.Equal(t, "\\", rep.Value.ToWire(false))

	comp, err := replaced.Element(isaIndexComponentElementSeparator)
	require.NoError(t, err)
	assert.Equal(t, "}", comp.Value.ToWire(false))

	version, err := replaced.Element(isaIndexVersion)
	require.NoError(t, err)
	assert.Equal(t, "00000", version.Value.ToWire(false), "ISA12 must be untouched by a repetition/component separator swap")

	senderID, err := replaced.Element(isaIndexSenderID)
	require.NoError(t, err)
	assert.Equal(t, "SENDER"+strings.Repeat(" ", 9), senderID.Value.ToWire(false))

	assert.True(t, replaced.Separators.Equal(next))
	// The ISA header carries no decimal mark, so inference leaves Decimal unset.
	inferred := DefaultSeparators
	inferred.Decimal = 0
	assert.Equal(t, inferred, isaNode.Separators, "original node must be unmodified")
}

func TestReplaceEnvelopeSeparatorsRejectsNonISA(t *testing.T) {
	n := &Node{Kind: SegmentNode, Name: "GS"}
	_, err := ReplaceEnvelopeSeparators(n, DefaultSeparators)
	require.Error(t, err)
}
