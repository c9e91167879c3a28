package stupidedi

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isaFields holds the 16 ISA01..ISA16 values a test wants to assemble into
// a wire-format ISA segment. Fields are given already at their wire width;
// buildISA does not pad or validate lengths, so a test constructing a
// deliberately malformed header can simply pass a short/long string.
type isaFields struct {
	authQualifier, authInfo           string
	securityQualifier, securityInfo   string
	senderQualifier, senderID         string
	receiverQualifier, receiverID     string
	date, timeOfDay                   string
	repetitionSep                     string
	version                           string
	controlNumber                     string
	ackRequested                      string
	usageIndicator                    string
	componentSep                      string
}

// defaultISAFields returns a self-consistent set of ISA field values (not
// yet padded), using the default separators and today's fixture date.
func defaultISAFields() isaFields {
	return isaFields{
		authQualifier:     "00",
		authInfo:          "",
		securityQualifier: "00",
		securityInfo:      "",
		senderQualifier:   "ZZ",
		senderID:          "SENDER",
		receiverQualifier: "ZZ",
		receiverID:        "RECEIVER",
		date:              "260803",
		timeOfDay:         "1200",
		repetitionSep:     "^",
		version:           "00000",
		controlNumber:     "000000001",
		ackRequested:      "0",
		usageIndicator:    "T",
		componentSep:      ":",
	}
}

// buildISA renders f into a fixed-width 106-byte ISA segment (each value
// followed by trailing spaces up to its field's wire width), joined by elementSep
// and terminated by segmentSep. Building it this way, instead of typing
// out a literal fixed-width string by hand, guarantees the byte widths are
// exactly right.
func buildISA(t *testing.T, f isaFields, elementSep, segmentSep byte) string {
	t.Helper()
	widths := []int{2, 10, 2, 10, 2, 15, 2, 15, 6, 4, 1, 5, 9, 1, 1, 1}
	values := []string{
		f.authQualifier, f.authInfo, f.securityQualifier, f.securityInfo,
		f.senderQualifier, f.senderID, f.receiverQualifier, f.receiverID,
		f.date, f.timeOfDay, f.repetitionSep, f.version,
		f.controlNumber, f.ackRequested, f.usageIndicator, f.componentSep,
	}
	require.Len(t, values, len(widths))

	var sb strings.Builder
	sb.WriteString("ISA")
	for i, v := range values {
		sb.WriteByte(elementSep)
		require.LessOrEqualf(t, len(v), widths[i], "field %d value %q exceeds width %d", i, v, widths[i])
		sb.WriteString(v)
		sb.WriteString(strings.Repeat(" ", widths[i]-len(v)))
	}
	sb.WriteByte(segmentSep)
	return sb.String()
}

// demoInterchange assembles a full interchange wire string around the
// transaction-set body built from the given segment lines (already
// element-delimited, e.g. "BEG*00*SA*PO-12345**20260803"), using
// DefaultSeparators throughout.
func demoInterchange(t *testing.T, controlNumber string, body []string) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(buildISA(t, defaultISAFields(), DefaultSeparators.Element, DefaultSeparators.Segment))
	sb.WriteString("GS*PO*SENDER*RECEIVER*20260803*1200*000000*X*000000~")
	sb.WriteString(fmt.Sprintf("ST*DEM*%s*000000~", controlNumber))
	for _, line := range body {
		sb.WriteString(line)
		sb.WriteByte('~')
	}
	segCount := len(body) + 2 // ST and SE themselves count too
	sb.WriteString(fmt.Sprintf("SE*%d*%s~", segCount, controlNumber))
	sb.WriteString("GE*1*000000~")
	sb.WriteString(fmt.Sprintf("IEA*1*%s~", defaultISAFields().controlNumber))
	return sb.String()
}

func mustDemoCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := DemoCatalog()
	require.NoError(t, err)
	return cat
}

func parseDemo(t *testing.T, wire string) *ParseResult {
	t.Helper()
	cat := mustDemoCatalog(t)
	p := NewParser(cat)
	result, err := p.Parse(context.Background(), bytes.NewBufferString(wire))
	require.NoError(t, err)
	return result
}
