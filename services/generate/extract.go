package generate

import "strings"

// extractYAML pulls playbook content out of a model response. Fenced blocks
// win over raw text; without markers the whole response is taken as-is.
func extractYAML(response string) string {
	if idx := strings.Index(response, "```yaml"); idx != -1 {
		start := idx + len("```yaml")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if idx := strings.Index(response, "```"); idx != -1 {
		start := idx + len("```")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	return strings.TrimSpace(response)
}
