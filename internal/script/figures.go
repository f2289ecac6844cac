package script

import (
	"regexp"
	"strconv"
)

// figureRefPattern matches "Figure N" case-insensitively, as the
// source's regex does.
var figureRefPattern = regexp.MustCompile(`(?i)\bfigure\s+(\d+)\b`)

// extractFigureRefs returns the unique figure numbers mentioned in
// text, in first-seen order.
func extractFigureRefs(text string) []int {
	matches := figureRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(matches))
	var refs []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !seen[n] {
			seen[n] = true
			refs = append(refs, n)
		}
	}
	return refs
}
