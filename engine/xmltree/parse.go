package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace { return tracing.Select("svgpp.xmltree") }

// ParseError reports a line/column-anchored XML parse failure, matching
// the position information spec §7 asks E_PARSE_XML to carry when the
// underlying parser provides it.
type ParseError struct {
	Line, Column int
	Err          error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xml parse error at %d:%d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads an XML byte stream and builds an element tree. No root-tag
// check is performed here — "reject input whose root is not {diag}diagram"
// (spec §2 stage 1) is a svg++-specific rule that belongs to the compile
// package, once the diag namespace URI is known; this parser only knows
// general XML.
//
// Character-encoding sniffing is delegated to golang.org/x/net/html/charset
// so included files declaring (or lacking) an explicit encoding are
// transcoded to UTF-8 before the XML tokenizer sees them, the same way a
// browser-grade HTML parser would.
func Parse(r io.Reader) (*Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), "")
	if err != nil {
		// charset detection failing is not fatal — fall back to the raw bytes,
		// which is what a plain encoding/xml.Decoder would have done anyway.
		utf8Reader = bytes.NewReader(raw)
	}
	dec := xml.NewDecoder(utf8Reader)
	dec.Strict = false // svg++ documents routinely carry undeclared HTML-ish entities in text

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := decoderPos(dec, raw)
			return nil, &ParseError{Line: line, Column: col, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: Name{Space: t.Name.Space, Local: t.Name.Local}}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: Name{Space: a.Name.Space, Local: a.Name.Local}, Value: a.Value})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].Append(n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			text := string(t)
			if n := len(cur.Children); n > 0 {
				cur.Children[n-1].Tail += text
			} else {
				cur.Text += text
			}
		}
	}
	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("empty document")}
	}
	tracer().Debugf("parsed document with root <%s>", root.Name)
	return root, nil
}

// decoderPos best-efforts a line/column for the decoder's current byte
// offset; encoding/xml only exposes InputOffset(), so the line/column are
// recovered by scanning the raw buffer up to that offset.
func decoderPos(dec *xml.Decoder, raw []byte) (line, col int) {
	off := dec.InputOffset()
	if off < 0 || int(off) > len(raw) {
		return 0, 0
	}
	line = 1
	lastNL := -1
	for i := 0; i < int(off); i++ {
		if raw[i] == '\n' {
			line++
			lastNL = i
		}
	}
	col = int(off) - lastNL
	return
}
