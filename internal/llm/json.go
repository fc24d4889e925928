package llm

import "strings"

// extractJSON returns the JSON payload of a model response. It prefers a
// ```json fence, then any fence, then the first balanced object or array.
// The input is returned unchanged when none is found.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		if body, ok := fenced(s, fence); ok {
			return body
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}

func fenced(s, open string) (string, bool) {
	idx := strings.Index(s, open)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimLeft(s[idx+len(open):], "\r\n")
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimRight(rest[:end], "\r\n"), true
}
