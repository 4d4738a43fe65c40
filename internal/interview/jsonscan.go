package interview

import "strings"

// stripFences removes a leading markdown code fence, with or without a
// language tag, so fenced generator output can still be parsed.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	parts := strings.SplitN(content, "```", 3)
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// firstObject extracts the first balanced {...} span from content and
// returns it with whatever follows. Generators sometimes emit two JSON
// objects back to back; brace matching splits them without a full parse.
func firstObject(content string) (obj, rest string, ok bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", "", false
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], strings.TrimSpace(content[i+1:]), true
			}
		}
	}
	return "", "", false
}
