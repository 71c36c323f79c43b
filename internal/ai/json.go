package ai

import "strings"

// ExtractJSON strips markdown code fences and any prose around the outermost JSON object.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```") {
		start := strings.Index(response, "```json")
		if start == -1 {
			start = strings.Index(response, "```")
		}
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			response = response[start+nl+1:]
		}
		if end := strings.LastIndex(response, "```"); end != -1 {
			response = response[:end]
		}
		response = strings.TrimSpace(response)
	}

	if !strings.HasPrefix(response, "{") {
		if i := strings.Index(response, "{"); i != -1 {
			response = response[i:]
		}
	}
	if j := strings.LastIndex(response, "}"); j != -1 {
		response = response[:j+1]
	}

	return response
}
