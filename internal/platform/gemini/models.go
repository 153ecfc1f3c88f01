package gemini

import "strings"

const generateContentAction = "generateContent"

// DefaultFallbackModels is tried, in order, when discovery fails or finds nothing.
var DefaultFallbackModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
	"gemini-1.0-pro",
}

// GenerativeModels keeps models whose name mentions "gemini" and that support
// content generation, with the "models/" prefix stripped. Listing order is kept.
func GenerativeModels(models []Model) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		if !strings.Contains(m.Name, "gemini") {
			continue
		}
		if !supports(m.SupportedActions, generateContentAction) {
			continue
		}
		out = append(out, strings.TrimPrefix(m.Name, "models/"))
	}
	return out
}

func supports(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}
