// Package overlay projects diff tokens onto MusicXML documents as color
// attributes a renderer can highlight.
package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/Duck-and-Squid/arrangement-hub/internal/diff"
	"github.com/Duck-and-Squid/arrangement-hub/internal/xmltree"
)

// Colors assigned per edit type. Canonical uppercase hex triplets.
const (
	ColorInsert = "#00FF00"
	ColorDelete = "#FF0000"
	ColorChange = "#FFFF00"
)

// colorableTags is the fixed set of MusicXML elements eligible to carry an
// overlay color. Fixed policy, not configurable at runtime.
var colorableTags = map[string]bool{
	"note":       true,
	"direction":  true,
	"harmony":    true,
	"backup":     true,
	"forward":    true,
	"attributes": true,
	"clef":       true,
	"key":        true,
	"time":       true,
	"part":       true,
	"measure":    true,
	"rest":       true,
}

// Result carries the two colored documents and the tokens that could not be
// projected, in input order.
type Result struct {
	OldXML       string
	NewXML       string
	UnusedTokens []diff.Token
}

// Projector applies diff tokens as color overlays onto document pairs.
type Projector struct{}

// NewProjector creates a new overlay projector
func NewProjector() *Projector {
	return &Projector{}
}

// Project parses both documents, colors the nearest colorable ancestor of
// every token's target, and serializes the results. It never adds, removes,
// or reorders anything other than color attributes on colorable elements;
// pre-existing color attributes are replaced. Unresolvable tokens are
// collected, never fatal.
func (p *Projector) Project(oldXML, newXML string, tokens []diff.Token) (*Result, error) {
	oldDoc := etree.NewDocument()
	if err := oldDoc.ReadFromString(oldXML); err != nil {
		return nil, fmt.Errorf("%w: old document: %v", xmltree.ErrMalformedXML, err)
	}
	newDoc := etree.NewDocument()
	if err := newDoc.ReadFromString(newXML); err != nil {
		return nil, fmt.Errorf("%w: new document: %v", xmltree.ErrMalformedXML, err)
	}

	var unused []diff.Token
	for _, tok := range tokens {
		if !p.apply(oldDoc, newDoc, tok) {
			unused = append(unused, tok)
		}
	}

	oldOut, err := oldDoc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("serializing old document: %w", err)
	}
	newOut, err := newDoc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("serializing new document: %w", err)
	}

	return &Result{OldXML: oldOut, NewXML: newOut, UnusedTokens: unused}, nil
}

// apply colors the element(s) selected by tok and reports whether the token
// was used. Element inserts color the new side green, element deletes the
// old side red. Attribute and content edits have no element of their own on
// either side, so both sides show as a change on the nearest colorable
// ancestor.
func (p *Projector) apply(oldDoc, newDoc *etree.Document, tok diff.Token) bool {
	path := elementPath(tok.XPath)

	if tok.NodeType == diff.NodeElement {
		switch tok.EditType {
		case diff.EditInsert:
			return colorAt(newDoc, path, ColorInsert)
		case diff.EditDelete:
			return colorAt(oldDoc, path, ColorDelete)
		}
		// The planner never emits element CHANGE; one arriving over the
		// wire falls through to the two-sided change rule.
	}

	oldOK := colorAt(oldDoc, path, ColorChange)
	newOK := colorAt(newDoc, path, ColorChange)
	return oldOK || newOK
}

// elementPath strips a trailing /@attr or /text() locator, leaving the path
// of the owning element.
func elementPath(xpath string) string {
	if i := strings.LastIndex(xpath, "/@"); i >= 0 {
		return xpath[:i]
	}
	return strings.TrimSuffix(xpath, "/text()")
}

func colorAt(doc *etree.Document, path, color string) bool {
	el := resolve(doc, path)
	if el == nil {
		return false
	}
	target := colorableAncestor(el)
	if target == nil {
		return false
	}
	target.CreateAttr("color", color)
	return true
}

// colorableAncestor walks upward starting at el itself and returns the first
// element whose tag is colorable, or nil.
func colorableAncestor(el *etree.Element) *etree.Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if colorableTags[xmltree.FullName(cur.Space, cur.Tag)] {
			return cur
		}
	}
	return nil
}

// resolve evaluates an absolute /tag[k] path against the document. The [k]
// predicate counts 1-based among same-name siblings, matching the positional
// scheme the planner emits; no other XPath features are supported.
func resolve(doc *etree.Document, path string) *etree.Element {
	if !strings.HasPrefix(path, "/") {
		return nil
	}
	segments := strings.Split(path[1:], "/")
	if len(segments) == 0 {
		return nil
	}

	root := doc.Root()
	if root == nil {
		return nil
	}
	name, index, ok := parseSegment(segments[0])
	if !ok || index != 1 || xmltree.FullName(root.Space, root.Tag) != name {
		return nil
	}

	cur := root
	for _, seg := range segments[1:] {
		segName, segIndex, segOK := parseSegment(seg)
		if !segOK {
			return nil
		}
		cur = childAt(cur, segName, segIndex)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// parseSegment splits "tag[k]" into its parts; k defaults to 1.
func parseSegment(seg string) (name string, index int, ok bool) {
	if seg == "" {
		return "", 0, false
	}
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 1, true
	}
	if open == 0 || !strings.HasSuffix(seg, "]") {
		return "", 0, false
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return seg[:open], n, true
}

// childAt returns the index-th child element named name, counting only
// same-name siblings.
func childAt(parent *etree.Element, name string, index int) *etree.Element {
	count := 0
	for _, child := range parent.ChildElements() {
		if xmltree.FullName(child.Space, child.Tag) != name {
			continue
		}
		count++
		if count == index {
			return child
		}
	}
	return nil
}
