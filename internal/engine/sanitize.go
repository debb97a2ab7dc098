package engine

import (
	"regexp"
	"strings"
)

// The model occasionally echoes internal control markers despite the prompt.
// Sanitization strips whole marker lines first, then trailing marker
// fragments on content lines, and never returns an empty reply for a
// non-empty input.
var (
	markerLineRE = regexp.MustCompile(`^\s*(?:\[(?:INTERNAL|SYSTEM|DEBUG|ANALYSIS|SAVED|NOSAVE)[^\]]*\]|<\|[^|>]*\|>)\s*$`)
	markerTailRE = regexp.MustCompile(`\s*(?:\[(?:INTERNAL|SYSTEM|DEBUG|ANALYSIS|SAVED|NOSAVE)[^\]]*\]|<\|[^|>]*\|>)\s*$`)
)

// Sanitize removes internal marker artifacts from a model reply.
func Sanitize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if markerLineRE.MatchString(line) {
			continue
		}
		for {
			stripped := markerTailRE.ReplaceAllString(line, "")
			if stripped == line {
				break
			}
			line = stripped
		}
		kept = append(kept, line)
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if out == "" {
		return strings.TrimSpace(text)
	}
	return out
}
