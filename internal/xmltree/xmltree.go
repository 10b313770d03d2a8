// Package xmltree parses raw XML into simplified node trees suitable for
// structural comparison.
package xmltree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrMalformedXML is returned when an input document cannot be parsed.
var ErrMalformedXML = errors.New("malformed xml")

// UNode is a normalized view of one XML element: an id unique within its
// parse, the element name, an attribute map, the element's direct text, and
// its element children in document order. Comments, processing instructions,
// and the relative order of text vs. child elements are not modeled.
type UNode struct {
	ID       int
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*UNode
}

// Parser converts raw XML documents into UNode trees.
type Parser struct{}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts an XML document into its root UNode. Ids are dense and
// restart at zero for every call, so trees from separate parses overlap
// unless the caller scopes them apart.
func (p *Parser) Parse(xmlText string) (*UNode, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedXML)
	}

	counter := 0
	return convert(root, &counter), nil
}

// convert recursively converts an etree element into a UNode. All direct
// character data chunks are concatenated into Text, whitespace preserved.
func convert(el *etree.Element, counter *int) *UNode {
	node := &UNode{
		ID:    *counter,
		Name:  FullName(el.Space, el.Tag),
		Attrs: make(map[string]string, len(el.Attr)),
	}
	*counter++

	for _, attr := range el.Attr {
		node.Attrs[FullName(attr.Space, attr.Key)] = attr.Value
	}

	var text strings.Builder
	for _, child := range el.Child {
		switch t := child.(type) {
		case *etree.CharData:
			text.WriteString(t.Data)
		case *etree.Element:
			node.Children = append(node.Children, convert(t, counter))
		}
	}
	node.Text = text.String()

	return node
}

// FullName joins a namespace prefix and a local name back into the opaque
// form the document used. Prefixes are never resolved.
func FullName(space, local string) string {
	if space == "" {
		return local
	}
	return space + ":" + local
}
