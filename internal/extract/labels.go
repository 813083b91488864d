package extract

import (
	"regexp"
	"strings"
)

// sectionPrefix marks the start of a new section in the flattened text of
// COMPR.AR detail pages.
const sectionPrefix = "####"

// FindAfterLabel locates a line that equals label (case-insensitive) and
// returns the next non-empty line, looking at most lookahead lines forward.
// Returns "" when the label is absent or a new section starts first.
func FindAfterLabel(lines []string, label string, lookahead int) string {
	for idx, line := range lines {
		if !strings.EqualFold(strings.TrimSpace(line), label) {
			continue
		}
		limit := idx + 1 + lookahead
		if limit > len(lines) {
			limit = len(lines)
		}
		for j := idx + 1; j < limit; j++ {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" {
				continue
			}
			if strings.HasPrefix(candidate, sectionPrefix) {
				break
			}
			return candidate
		}
	}
	return ""
}

// FindColonValue scans for a "Label: value" line and returns the value.
func FindColonValue(lines []string, label string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:\s*(.+)`)
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
