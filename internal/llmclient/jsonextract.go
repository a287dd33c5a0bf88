package llmclient

// extractBalancedJSON finds the first balanced {...} substring in s,
// respecting quoted strings and escapes, per §4.2/§6: "the client extracts
// the first balanced JSON substring from the response before parsing."
// Returns "" if no balanced object is found.
func extractBalancedJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
