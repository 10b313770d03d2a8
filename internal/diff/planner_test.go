package diff

import (
	"strings"
	"testing"
)

// tok builds an expected token; empty old/new strings mean "absent".
type tok struct {
	edit EditType
	node NodeType
	path string
	name string
	old  string
	new  string
}

func assertTokens(t *testing.T, got []Token, want []tok) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %+v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.EditType != w.edit || g.NodeType != w.node || g.XPath != w.path || g.Name != w.name {
			t.Errorf("token %d = {%s %s %s %q}, want {%s %s %s %q}",
				i, g.EditType, g.NodeType, g.XPath, g.Name, w.edit, w.node, w.path, w.name)
		}
		if deref(g.OldValue) != w.old {
			t.Errorf("token %d oldValue = %q, want %q", i, deref(g.OldValue), w.old)
		}
		if deref(g.NewValue) != w.new {
			t.Errorf("token %d newValue = %q, want %q", i, deref(g.NewValue), w.new)
		}
	}
}

func computeTokens(t *testing.T, oldXML, newXML string) []Token {
	t.Helper()
	return NewPlanner().Diff(mustParse(t, oldXML), mustParse(t, newXML))
}

func TestPlanner_Diff(t *testing.T) {
	tests := []struct {
		name   string
		oldXML string
		newXML string
		want   []tok
	}{
		{
			name:   "identical documents produce no tokens",
			oldXML: `<score><note id="1">A</note></score>`,
			newXML: `<score><note id="1">A</note></score>`,
			want:   nil,
		},
		{
			name:   "self-closing form is equivalent",
			oldXML: "<x/>",
			newXML: "<x></x>",
			want:   nil,
		},
		{
			name:   "inserted child element",
			oldXML: "<foo/>",
			newXML: "<foo><bar/></foo>",
			want: []tok{
				{edit: EditInsert, node: NodeElement, path: "/foo/bar", name: "bar"},
			},
		},
		{
			name:   "attribute value change",
			oldXML: `<foo bar="old"/>`,
			newXML: `<foo bar="new"/>`,
			want: []tok{
				{edit: EditChange, node: NodeAttribute, path: "/foo/@bar", name: "bar", old: "old", new: "new"},
			},
		},
		{
			name:   "content change on a positional sibling",
			oldXML: "<root><note>A</note><note>B</note></root>",
			newXML: "<root><note>A</note><note>C</note></root>",
			want: []tok{
				{edit: EditChange, node: NodeContent, path: "/root/note[2]/text()", old: "B", new: "C"},
			},
		},
		{
			name:   "renamed element becomes delete plus insert",
			oldXML: "<foo><bar/></foo>",
			newXML: "<foo><baz/></foo>",
			want: []tok{
				{edit: EditDelete, node: NodeElement, path: "/foo/bar", name: "bar"},
				{edit: EditInsert, node: NodeElement, path: "/foo/baz", name: "baz"},
			},
		},
		{
			name:   "mixed change, delete, and insert",
			oldXML: "<foo><a>old</a><b/><c/></foo>",
			newXML: "<foo><a>new</a><c/><d/></foo>",
			want: []tok{
				{edit: EditChange, node: NodeContent, path: "/foo/a/text()", old: "old", new: "new"},
				{edit: EditDelete, node: NodeElement, path: "/foo/b", name: "b"},
				{edit: EditInsert, node: NodeElement, path: "/foo/d", name: "d"},
			},
		},
		{
			name:   "root rename is a coarse delete plus insert",
			oldXML: "<foo><a/></foo>",
			newXML: "<bar><a/></bar>",
			want: []tok{
				{edit: EditDelete, node: NodeElement, path: "/foo", name: "foo"},
				{edit: EditInsert, node: NodeElement, path: "/bar", name: "bar"},
			},
		},
		{
			name:   "attribute insert and delete",
			oldXML: `<foo a="1"/>`,
			newXML: `<foo b="2"/>`,
			want: []tok{
				{edit: EditDelete, node: NodeAttribute, path: "/foo/@a", name: "a", old: "1"},
				{edit: EditInsert, node: NodeAttribute, path: "/foo/@b", name: "b", new: "2"},
			},
		},
		{
			name:   "content delete and insert",
			oldXML: "<r><a>gone</a><b/></r>",
			newXML: "<r><a/><b>here</b></r>",
			want: []tok{
				{edit: EditDelete, node: NodeContent, path: "/r/a/text()", old: "gone"},
				{edit: EditInsert, node: NodeContent, path: "/r/b/text()", new: "here"},
			},
		},
		{
			name:   "attributes before content before children",
			oldXML: `<foo a="1">t<x/></foo>`,
			newXML: `<foo a="2">u<x/><y/></foo>`,
			want: []tok{
				{edit: EditChange, node: NodeAttribute, path: "/foo/@a", name: "a", old: "1", new: "2"},
				{edit: EditChange, node: NodeContent, path: "/foo/text()", old: "t", new: "u"},
				{edit: EditInsert, node: NodeElement, path: "/foo/y", name: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTokens(t, tt.oldXML, tt.newXML)
			assertTokens(t, got, tt.want)
		})
	}
}

func TestPlanner_PositionalUniqueness(t *testing.T) {
	oldXML := "<m><n>1</n><n>2</n><n>3</n></m>"
	newXML := "<m><n>1</n><n>x</n><n>y</n></m>"

	got := computeTokens(t, oldXML, newXML)
	if len(got) == 0 {
		t.Fatal("expected tokens")
	}
	for _, g := range got {
		if !strings.Contains(g.XPath, "/n[") {
			t.Errorf("token %+v lacks a positional predicate among same-name siblings", g)
		}
	}
}

func TestPlanner_NoPhantomEdits(t *testing.T) {
	oldXML := `<s a="1" b="2"><n>t</n><n>u</n></s>`
	newXML := `<s a="1" b="3"><n>t</n><n>v</n></s>`

	for _, g := range computeTokens(t, oldXML, newXML) {
		if g.EditType != EditChange {
			continue
		}
		if deref(g.OldValue) == deref(g.NewValue) {
			t.Errorf("CHANGE token with identical values: %+v", g)
		}
	}
}

func TestPlanner_Deterministic(t *testing.T) {
	oldXML := `<s x="1" y="2" z="3"><a/><b/><c/></s>`
	newXML := `<s x="9" w="2" z="8"><b/><c/><d/></s>`

	first := computeTokens(t, oldXML, newXML)
	for i := 0; i < 10; i++ {
		again := computeTokens(t, oldXML, newXML)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d tokens, first produced %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].XPath != first[j].XPath || again[j].EditType != first[j].EditType {
				t.Fatalf("run %d token %d = %+v, first = %+v", i, j, again[j], first[j])
			}
		}
	}
}

// Matching is preferred over delete plus insert when costs tie: with two
// identical candidates and room for one, the first is matched and the
// trailing sibling reported deleted.
func TestPlanner_PrefersMatchOnTies(t *testing.T) {
	got := computeTokens(t, "<m><n>a</n><n>a</n></m>", "<m><n>a</n></m>")
	assertTokens(t, got, []tok{
		{edit: EditDelete, node: NodeElement, path: "/m/n[2]", name: "n"},
	})
}

// An appended sibling is reported at the trailing position, not as a chain
// of changes.
func TestPlanner_TrailingInsert(t *testing.T) {
	got := computeTokens(t,
		"<m><n>a</n><n>b</n></m>",
		"<m><n>a</n><n>b</n><n>c</n></m>")
	assertTokens(t, got, []tok{
		{edit: EditInsert, node: NodeElement, path: "/m/n[3]", name: "n"},
	})
}

// A changed sibling reports as a change rather than a replacement.
func TestPlanner_ChangeOverReplace(t *testing.T) {
	got := computeTokens(t, "<r><n>a</n></r>", "<r><n>b</n></r>")
	assertTokens(t, got, []tok{
		{edit: EditChange, node: NodeContent, path: "/r/n/text()", old: "a", new: "b"},
	})
}

func TestPlanner_DeepRecursion(t *testing.T) {
	oldXML := "<a><b><c><d>x</d></c></b></a>"
	newXML := "<a><b><c><d>y</d></c></b></a>"

	got := computeTokens(t, oldXML, newXML)
	assertTokens(t, got, []tok{
		{edit: EditChange, node: NodeContent, path: "/a/b/c/d/text()", old: "x", new: "y"},
	})
}
