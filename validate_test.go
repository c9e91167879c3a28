package stupidedi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelopeCountersCleanMessage(t *testing.T) {
	wire := demoInterchange(t, "0001", []string{
		"BEG*00*RE*PO-1",
		"AMT*TT*100",
	})
	result := parseDemo(t, wire)
	require.Empty(t, result.Errors)

	errs := ValidateEnvelopeCounters(result.Tree)
	assert.Empty(t, errs)
}

func TestValidateEnvelopeCountersDetectsControlNumberMismatch(t *testing.T) {
	wire := demoInterchange(t, "0001", []string{
		"BEG*00*RE*PO-1",
		"AMT*TT*100",
	})
	// corrupt SE02 so it no longer matches ST02
	corrupted := replaceFirst(t, wire, "SE*4*0001~", "SE*4*9999~")
	result := parseDemo(t, corrupted)
	require.Empty(t, result.Errors)

	errs := ValidateEnvelopeCounters(result.Tree)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == ControlNumberMismatch && e.Segment == "ST02/SE02" {
			found = true
		}
	}
	assert.True(t, found, "expected an ST02/SE02 control number mismatch, got: %v", errs)
}

func TestValidateEnvelopeCountersDetectsIncludedCountMismatch(t *testing.T) {
	wire := demoInterchange(t, "0001", []string{
		"BEG*00*RE*PO-1",
		"AMT*TT*100",
	})
	corrupted := replaceFirst(t, wire, "SE*4*0001~", "SE*99*0001~")
	result := parseDemo(t, corrupted)
	require.Empty(t, result.Errors)

	errs := ValidateEnvelopeCounters(result.Tree)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == IncludedCountMismatch && e.Segment == "SE01" {
			found = true
		}
	}
	assert.True(t, found, "expected an SE01 included-count mismatch, got: %v", errs)
}

func replaceFirst(t *testing.T, s, old, new string) string {
	t.Helper()
	i := indexOf(s, old)
	require.GreaterOrEqualf(t, i, 0, "expected %q to contain %q", s, old)
	return s[:i] + new + s[i+len(old):]
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
