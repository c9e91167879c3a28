package stupidedi

import (
	"bytes"
	"context"
	"io"
)

// ReadMessage is the top-level convenience entry point: parse r against
// catalog and return a typed Interchange view alongside the structural
// error list, mirroring the shape of Parser.Parse but saving callers the
// ParseResult.Tree unwrap.
func ReadMessage(ctx context.Context, r io.Reader, catalog *Catalog) (*Interchange, []StructuralError, error) {
	parser := NewParser(catalog)
	result, err := parser.Parse(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return &Interchange{Node: result.Tree}, result.Errors, nil
}

// Bytes renders the interchange back to wire bytes under opts.
func (i *Interchange) Bytes(opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, i.Node, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
