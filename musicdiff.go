// Package arrangementhub computes structural diffs between XML documents and
// projects them onto MusicXML colored overlays. The diff engine parses both
// documents into normalized trees, computes a minimal-cost edit mapping with
// memoized tree-edit distance, and emits typed tokens addressed by positional
// XPath locators; the overlay projector colors the nearest musically
// meaningful ancestor of each edit so a downstream renderer can highlight
// insertions, deletions, and changes.
package arrangementhub

import (
	"fmt"
	"time"

	"github.com/Duck-and-Squid/arrangement-hub/internal/diff"
	"github.com/Duck-and-Squid/arrangement-hub/internal/metrics"
	"github.com/Duck-and-Squid/arrangement-hub/internal/overlay"
	"github.com/Duck-and-Squid/arrangement-hub/internal/xmltree"
)

// ErrMalformedXML is returned when either input document cannot be parsed.
var ErrMalformedXML = xmltree.ErrMalformedXML

// OverlayResult carries the two colored documents and any tokens that could
// not be projected, in input order.
type OverlayResult struct {
	OldXML       string  `json:"oldXml"`
	NewXML       string  `json:"newXml"`
	UnusedTokens []Token `json:"unusedTokens"`
}

// ComputeXMLDiffTokens computes the edit token stream between two XML
// documents. Every token's XPath is valid in the side(s) it addresses: the
// old document for deletes, the new document for inserts, both for changes.
func ComputeXMLDiffTokens(oldXML, newXML string) ([]Token, error) {
	return defaultDiffer.ComputeTokens(oldXML, newXML)
}

// ProcessMusicXMLDiff applies a token stream to both documents as color
// overlays: element inserts green, element deletes red, and every attribute
// or content token yellow on both sides, always on the nearest colorable
// MusicXML ancestor.
func ProcessMusicXMLDiff(oldXML, newXML string, tokens []Token) (*OverlayResult, error) {
	return defaultDiffer.ApplyOverlay(oldXML, newXML, tokens)
}

var defaultDiffer = NewDiffer()

// Differ bundles the parser, planner, projector, and summary generator
// behind one configurable front. The zero-option Differ is stateless; every
// call runs with its own memoization tables, so a single Differ is safe for
// concurrent use.
type Differ struct {
	config    *DifferConfig
	parser    *xmltree.Parser
	planner   *diff.Planner
	projector *overlay.Projector
	generator *diff.SummaryGenerator
	collector *metrics.Collector
}

// DifferConfig contains configuration for a Differ
type DifferConfig struct {
	MetricsEnabled bool
}

// DifferOption configures a Differ instance
type DifferOption func(*Differ)

// WithMetrics enables the built-in metrics collector.
func WithMetrics() DifferOption {
	return func(d *Differ) {
		d.config.MetricsEnabled = true
	}
}

// NewDiffer creates a new Differ instance
func NewDiffer(options ...DifferOption) *Differ {
	d := &Differ{
		config:    &DifferConfig{},
		parser:    xmltree.NewParser(),
		planner:   diff.NewPlanner(),
		projector: overlay.NewProjector(),
		generator: diff.NewSummaryGenerator(),
	}

	for _, option := range options {
		option(d)
	}

	if d.config.MetricsEnabled {
		d.collector = metrics.NewCollector()
	}

	return d
}

// ComputeTokens computes the edit token stream between two XML documents.
func (d *Differ) ComputeTokens(oldXML, newXML string) ([]Token, error) {
	oldRoot, err := d.parser.Parse(oldXML)
	if err != nil {
		d.recordDiffFailure()
		return nil, fmt.Errorf("parsing old document: %w", err)
	}
	newRoot, err := d.parser.Parse(newXML)
	if err != nil {
		d.recordDiffFailure()
		return nil, fmt.Errorf("parsing new document: %w", err)
	}

	tokens := fromInternalTokens(d.planner.Diff(oldRoot, newRoot))
	if d.collector != nil {
		d.collector.RecordDiff(len(tokens))
	}
	return tokens, nil
}

// ApplyOverlay projects a token stream onto both documents as color
// attributes and reports the tokens that did not resolve.
func (d *Differ) ApplyOverlay(oldXML, newXML string, tokens []Token) (*OverlayResult, error) {
	res, err := d.projector.Project(oldXML, newXML, toInternalTokens(tokens))
	if err != nil {
		if d.collector != nil {
			d.collector.RecordOverlayFailure()
		}
		return nil, err
	}

	if d.collector != nil {
		d.collector.RecordOverlay(len(res.UnusedTokens))
	}
	return &OverlayResult{
		OldXML:       res.OldXML,
		NewXML:       res.NewXML,
		UnusedTokens: fromInternalTokens(res.UnusedTokens),
	}, nil
}

// Summarize renders a token stream as a human-readable report, one line per
// token with inline character diffs for content changes.
func (d *Differ) Summarize(tokens []Token) string {
	return d.generator.Summarize(toInternalTokens(tokens))
}

// DiffResult represents the complete result of a diff analysis
type DiffResult struct {
	Tokens      []Token            `json:"tokens"`
	Metadata    DiffMetadata       `json:"metadata"`
	Performance PerformanceMetrics `json:"performance"`
}

// DiffMetadata contains metadata about the diff operation
type DiffMetadata struct {
	OldXMLSize int    `json:"old_xml_size"`
	NewXMLSize int    `json:"new_xml_size"`
	TokenCount int    `json:"token_count"`
	Complexity string `json:"complexity"`
}

// PerformanceMetrics tracks performance of the diff operation
type PerformanceMetrics struct {
	ParseTime time.Duration `json:"parse_time"`
	PlanTime  time.Duration `json:"plan_time"`
	TotalTime time.Duration `json:"total_time"`
}

// Diff performs a complete diff analysis with metadata and timings.
func (d *Differ) Diff(oldXML, newXML string) (*DiffResult, error) {
	startTime := time.Now()

	parseStart := time.Now()
	oldRoot, err := d.parser.Parse(oldXML)
	if err != nil {
		d.recordDiffFailure()
		return nil, fmt.Errorf("parsing old document: %w", err)
	}
	newRoot, err := d.parser.Parse(newXML)
	if err != nil {
		d.recordDiffFailure()
		return nil, fmt.Errorf("parsing new document: %w", err)
	}
	parseTime := time.Since(parseStart)

	planStart := time.Now()
	tokens := fromInternalTokens(d.planner.Diff(oldRoot, newRoot))
	planTime := time.Since(planStart)

	if d.collector != nil {
		d.collector.RecordDiff(len(tokens))
	}

	return &DiffResult{
		Tokens: tokens,
		Metadata: DiffMetadata{
			OldXMLSize: len(oldXML),
			NewXMLSize: len(newXML),
			TokenCount: len(tokens),
			Complexity: determineComplexity(tokens),
		},
		Performance: PerformanceMetrics{
			ParseTime: parseTime,
			PlanTime:  planTime,
			TotalTime: time.Since(startTime),
		},
	}, nil
}

// determineComplexity analyzes the overall complexity of a token stream
func determineComplexity(tokens []Token) string {
	switch {
	case len(tokens) == 0:
		return "none"
	case len(tokens) <= 2:
		return "simple"
	case len(tokens) <= 5:
		return "moderate"
	default:
		return "complex"
	}
}

// Metrics is a snapshot of the Differ's built-in counters.
type Metrics struct {
	DiffsComputed   int64
	DiffFailures    int64
	TokensEmitted   int64
	OverlaysApplied int64
	OverlayFailures int64
	UnusedTokens    int64
	Uptime          time.Duration
}

// Metrics returns the current counter snapshot. The zero value is returned
// when the Differ was built without WithMetrics.
func (d *Differ) Metrics() Metrics {
	if d.collector == nil {
		return Metrics{}
	}
	m := d.collector.GetMetrics()
	return Metrics{
		DiffsComputed:   m.DiffsComputed,
		DiffFailures:    m.DiffFailures,
		TokensEmitted:   m.TokensEmitted,
		OverlaysApplied: m.OverlaysApplied,
		OverlayFailures: m.OverlayFailures,
		UnusedTokens:    m.UnusedTokens,
		Uptime:          m.Uptime,
	}
}

func (d *Differ) recordDiffFailure() {
	if d.collector != nil {
		d.collector.RecordDiffFailure()
	}
}
