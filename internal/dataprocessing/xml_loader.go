package dataprocessing

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var xmlDeclaration = []byte("<?xml")

// xmlNode is a minimal element tree. text is the character data before the
// first child element; hasText tells an empty element from an empty string.
type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     string
	hasText  bool
}

// value is the cell an element contributes: null without text, whitespace
// kept verbatim, anything else parsed like a delimited cell
func (n *xmlNode) value() domain.Value {
	switch {
	case !n.hasText:
		return domain.Null()
	case strings.TrimSpace(n.text) == "":
		return domain.Text(n.text)
	}
	return parseCell(n.text)
}

// parseXMLTree reads the document into a tree and returns its root
func parseXMLTree(dec *xml.Decoder) (*xmlNode, error) {
	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				if n := stack[len(stack)-1]; len(n.children) == 0 {
					n.text += string(t)
					n.hasText = true
				}
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// xmlRows turns each direct child of root into a row. Sub-element tags
// become columns; a leaf child becomes a single-column row of its own tag.
// With attrs, the row element's attributes are columns as well.
func xmlRows(root *xmlNode, attrs bool) (*domain.Table, error) {
	order := newKeyOrder()
	var records []map[string]domain.Value
	for _, child := range root.children {
		rec := make(map[string]domain.Value)
		put := func(key string, v domain.Value) {
			order.add(key)
			rec[key] = v
		}
		if attrs {
			for _, a := range child.attrs {
				put(a.Name.Local, parseCell(a.Value))
			}
		}
		if len(child.children) > 0 {
			for _, sub := range child.children {
				put(sub.name, sub.value())
			}
		} else {
			put(child.name, child.value())
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errNoRows
	}
	return tableFromRecords(order.keys, records)
}

// parseXMLStrict is the element-tree reading of the document
func parseXMLStrict(raw []byte) (*domain.Table, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	root, err := parseXMLTree(dec)
	if err != nil {
		return nil, err
	}
	return xmlRows(root, false)
}

// parseXMLGeneric is a lenient reading for documents that carry an XML
// declaration, honouring any declared charset
func parseXMLGeneric(raw []byte) (*domain.Table, error) {
	if !bytes.HasPrefix(bytes.TrimPrefix(raw, utf8BOM), xmlDeclaration) {
		return nil, errors.New("content does not start with an XML declaration")
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader
	root, err := parseXMLTree(dec)
	if err != nil {
		return nil, err
	}
	return xmlRows(root, true)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (l *Loader) xmlStrategies(raw []byte) *ladder {
	lad := newLadder("xml", l.logger)
	lad.add("xml:tree", "", func() (*domain.Table, error) {
		return parseXMLStrict(raw)
	})
	lad.add("xml:generic", "", func() (*domain.Table, error) {
		return parseXMLGeneric(raw)
	})
	return lad
}
