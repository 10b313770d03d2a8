package arrangementhub

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns a configured XML minifier (singleton)
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/xml", xml.Minify)
	})
	return minifier
}

// CompactXML strips inter-element whitespace from a document. Overlay output
// is faithful to the input by default; compaction is strictly opt-in for
// transports that care about payload size.
func CompactXML(xmlContent string) string {
	if !strings.Contains(xmlContent, "<") {
		return strings.TrimSpace(xmlContent)
	}

	minified, err := getMinifier().String("text/xml", xmlContent)
	if err != nil {
		// If minification fails, fall back to original content
		return xmlContent
	}
	return minified
}
