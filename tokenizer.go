package stupidedi

import (
	"bufio"
	"io"
	"strings"
)

// ElementToken is either a simple element (one repetition, one
// component) or a composite/repeated element (more than one of either).
// Values[i] is the i'th repetition's ordered component slices; a simple
// element is Values == [][]string{{raw}}.
type ElementToken struct {
	Values [][]string
}

// Raw returns Values[0][0], the first component of the first
// repetition. For a simple element that is its whole wire text; for a
// composite or repeated element the other components and repetitions
// are not included.
func (e ElementToken) Raw() string {
	if len(e.Values) == 0 || len(e.Values[0]) == 0 {
		return ""
	}
	return e.Values[0][0]
}

func (e ElementToken) IsComposite() bool {
	return len(e.Values) > 0 && len(e.Values[0]) > 1
}

func (e ElementToken) IsRepeated() bool {
	return len(e.Values) > 1
}

// SegmentToken is a 2-or-3-letter segment id, its ordered element
// tokens, and its position in the byte stream. Unknown is set when the
// id isn't uppercase alphanumeric, per the UnknownSegment error policy;
// the token is still emitted.
type SegmentToken struct {
	ID       string
	Elements []ElementToken
	Position Position
	Unknown  bool
}

// Tokenizer consumes a byte source and yields a lazy, finite,
// non-restartable sequence of SegmentTokens. The first call to Next
// consumes the fixed 106-byte ISA prefix to infer Separators; every
// subsequent call splits on the inferred segment delimiter.
type Tokenizer struct {
	src        *bufio.Reader
	seps       Separators
	haveSeps   bool
	segIndex   int
	offset     int
	exhausted  bool
}

// NewTokenizer wraps r. Separators aren't known until the first Next
// call consumes the ISA prefix.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{src: bufio.NewReader(r)}
}

// Separators returns the inferred Separators, valid only once at least
// one token has been pulled successfully.
func (t *Tokenizer) Separators() Separators { return t.seps }

// Next pulls the next SegmentToken. ok is false once the stream is
// exhausted; err is non-nil only for the fatal MalformedHeaderError case
// (an unreadable or malformed ISA prefix).
func (t *Tokenizer) Next() (SegmentToken, bool, error) {
	if t.exhausted {
		return SegmentToken{}, false, nil
	}
	if !t.haveSeps {
		return t.readISA()
	}
	return t.readSegment()
}

func (t *Tokenizer) readISA() (SegmentToken, bool, error) {
	prefix := make([]byte, isaByteCount)
	n, err := io.ReadFull(t.src, prefix)
	if err != nil && n < isaByteCount {
		t.exhausted = true
		return SegmentToken{}, false, &MalformedHeaderError{Reason: "unable to read full ISA prefix: " + err.Error()}
	}

	seps, infErr := InferSeparators(prefix)
	if infErr != nil {
		t.exhausted = true
		return SegmentToken{}, false, infErr
	}
	t.seps = seps
	t.haveSeps = true

	body := prefix[:isaByteCount-1] // drop trailing segment terminator
	fields := strings.Split(string(body), string(seps.Element))

	tok := SegmentToken{
		ID:       isaSegmentID,
		Position: Position{StreamOffset: t.offset, SegmentIndex: t.segIndex},
	}
	for _, f := range fields[1:] {
		tok.Elements = append(tok.Elements, ElementToken{Values: [][]string{{f}}})
	}
	t.offset += isaByteCount
	t.segIndex++
	return tok, true, nil
}

func (t *Tokenizer) readSegment() (SegmentToken, bool, error) {
	// skip whitespace/newlines between segments
	for {
		b, err := t.src.Peek(1)
		if err != nil {
			t.exhausted = true
			return SegmentToken{}, false, nil
		}
		if b[0] == '\r' || b[0] == '\n' || b[0] == ' ' || b[0] == '\t' {
			t.src.ReadByte()
			t.offset++
			continue
		}
		break
	}

	frame, err := t.src.ReadBytes(t.seps.Segment)
	if len(frame) == 0 && err != nil {
		t.exhausted = true
		return SegmentToken{}, false, nil
	}

	terminated := len(frame) > 0 && frame[len(frame)-1] == t.seps.Segment
	if terminated {
		frame = frame[:len(frame)-1]
	}
	// tolerate a trailing CR/LF inside the frame (teacher's textCleanup
	// equivalent)
	frame = bytesTrimRight(frame, "\r\n")

	if err != nil && !terminated && len(frame) == 0 {
		t.exhausted = true
		return SegmentToken{}, false, nil
	}
	if err == io.EOF {
		t.exhausted = true
	}

	raw := string(frame)
	parts := strings.Split(raw, string(t.seps.Element))
	id := parts[0]

	tok := SegmentToken{
		ID:       id,
		Position: Position{StreamOffset: t.offset, SegmentIndex: t.segIndex},
		Unknown:  !isSegmentID(id),
	}
	for _, p := range parts[1:] {
		tok.Elements = append(tok.Elements, splitElement(p, t.seps))
	}

	t.offset += len(frame) + 1
	t.segIndex++
	if err == io.EOF && terminated {
		// more bytes may remain in the buffered reader even though the
		// underlying source reported EOF already; only mark exhausted
		// once a subsequent read confirms there's nothing left.
		if _, peekErr := t.src.Peek(1); peekErr != nil {
			t.exhausted = true
		}
	}
	return tok, true, nil
}

func splitElement(raw string, seps Separators) ElementToken {
	reps := strings.Split(raw, string(seps.Repetition))
	values := make([][]string, len(reps))
	for i, r := range reps {
		values[i] = strings.Split(r, string(seps.Component))
	}
	return ElementToken{Values: values}
}

func isSegmentID(id string) bool {
	if len(id) < 2 || len(id) > 3 {
		return false
	}
	for _, r := range id {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func bytesTrimRight(b []byte, cutset string) []byte {
	return []byte(strings.TrimRight(string(b), cutset))
}
