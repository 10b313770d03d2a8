package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SummaryGenerator renders token streams as human-readable report lines.
type SummaryGenerator struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewSummaryGenerator creates a new summary generator
func NewSummaryGenerator() *SummaryGenerator {
	return &SummaryGenerator{dmp: diffmatchpatch.New()}
}

// Summarize produces one line per token, prefixed with +, - or ~ for
// inserts, deletes and changes. The output is informational only and is
// never parsed back.
func (g *SummaryGenerator) Summarize(tokens []Token) string {
	if len(tokens) == 0 {
		return "no differences\n"
	}

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(g.line(tok))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *SummaryGenerator) line(tok Token) string {
	marker := "~"
	switch tok.EditType {
	case EditInsert:
		marker = "+"
	case EditDelete:
		marker = "-"
	}

	switch tok.NodeType {
	case NodeElement:
		return fmt.Sprintf("%s element %s", marker, tok.XPath)
	case NodeAttribute:
		return fmt.Sprintf("%s attribute %s%s", marker, tok.XPath, g.values(tok))
	default:
		return fmt.Sprintf("%s content %s%s", marker, tok.XPath, g.values(tok))
	}
}

func (g *SummaryGenerator) values(tok Token) string {
	switch tok.EditType {
	case EditInsert:
		return fmt.Sprintf(": %q", deref(tok.NewValue))
	case EditDelete:
		return fmt.Sprintf(": %q", deref(tok.OldValue))
	default:
		oldVal, newVal := deref(tok.OldValue), deref(tok.NewValue)
		if tok.NodeType == NodeContent {
			return fmt.Sprintf(": %q -> %q (%s)", oldVal, newVal, g.inlineDiff(oldVal, newVal))
		}
		return fmt.Sprintf(": %q -> %q", oldVal, newVal)
	}
}

// inlineDiff renders a compact character diff of two text values, marking
// removed runs as -{...} and added runs as +{...}.
func (g *SummaryGenerator) inlineDiff(oldVal, newVal string) string {
	diffs := g.dmp.DiffMain(oldVal, newVal, false)
	diffs = g.dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-{")
			sb.WriteString(d.Text)
			sb.WriteString("}")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+{")
			sb.WriteString(d.Text)
			sb.WriteString("}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
