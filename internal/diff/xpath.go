package diff

import (
	"fmt"

	"github.com/Duck-and-Squid/arrangement-hub/internal/xmltree"
)

// buildXPath appends the segment for child to parentPath. When the sibling
// list holds more than one element with the child's tag, the segment carries
// the child's 1-based position among those same-name siblings.
func buildXPath(parentPath string, child *xmltree.UNode, siblings []*xmltree.UNode) string {
	count := 0
	position := 0
	for _, s := range siblings {
		if s.Name != child.Name {
			continue
		}
		count++
		if s == child {
			position = count
		}
	}

	if count <= 1 {
		return parentPath + "/" + child.Name
	}
	return fmt.Sprintf("%s/%s[%d]", parentPath, child.Name, position)
}
