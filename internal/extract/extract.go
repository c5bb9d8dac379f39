// Package extract isolates the HTML document from raw generator output, which
// often wraps the page in prose or code fences.
package extract

const (
	doctypeMarker = "<!doctype"
	closeMarker   = "</html>"
)

// Result is the outcome of extraction. Degraded is set when no complete document
// was found and Document holds the raw text unchanged.
type Result struct {
	Document string
	Degraded bool
}

// Extract returns the substring from the first "<!doctype" through the first "</html>"
// that follows it, inclusive, matching both markers case-insensitively.
func Extract(raw string) Result {
	start := indexFold(raw, doctypeMarker)
	if start < 0 {
		return Result{Document: raw, Degraded: true}
	}

	end := indexFold(raw[start:], closeMarker)
	if end < 0 {
		return Result{Document: raw, Degraded: true}
	}
	end += start + len(closeMarker)

	return Result{Document: raw[start:end]}
}

// LooksLikeHTML reports whether text contains an opening html tag.
func LooksLikeHTML(text string) bool {
	return indexFold(text, "<html") >= 0
}

// indexFold returns the byte offset of the first match of the lowercase ASCII marker
// in s, ignoring ASCII case. Offsets index s itself, whatever else s contains.
func indexFold(s, marker string) int {
	for i := 0; i+len(marker) <= len(s); i++ {
		if hasPrefixFold(s[i:], marker) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, marker string) bool {
	for j := 0; j < len(marker); j++ {
		c := s[j]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != marker[j] {
			return false
		}
	}
	return true
}
