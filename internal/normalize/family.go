package normalize

import (
	"regexp"
	"strings"
)

var (
	// Trailing date stamps: -20241022, -2024-10-22, -0125, -1106
	dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|\d{4})$`)
	// Trailing release qualifiers: -latest, -preview, -exp, -beta, -001
	qualifierSuffix = regexp.MustCompile(`-(latest|preview|exp(erimental)?|beta|stable|\d{3})$`)
)

// Family derives the grouping key for a model id: a normalized prefix of the
// native identifier with org prefix, variant tag, and version/date suffixes
// stripped. Pure string transform, deterministic per id.
//
//	anthropic/claude-3-5-sonnet-20241022 -> claude-3-5-sonnet
//	gpt-4o-2024-05-13                    -> gpt-4o
//	gemini-1.5-pro-latest                -> gemini-1.5-pro
//	meta-llama/llama-3.1-70b:free        -> llama-3.1-70b
func Family(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))

	// Drop the org prefix (openrouter-style "org/model").
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	// Drop variant tags like ":free" or ":extended".
	if i := strings.Index(id, ":"); i >= 0 {
		id = id[:i]
	}

	// Strip suffixes repeatedly; ids like "gemini-1.5-flash-002-preview"
	// carry more than one.
	for {
		next := dateSuffix.ReplaceAllString(id, "")
		next = qualifierSuffix.ReplaceAllString(next, "")
		if next == id || next == "" {
			break
		}
		id = next
	}

	if id == "" {
		return strings.ToLower(strings.TrimSpace(modelID))
	}
	return id
}
