package providers

import (
	"regexp"
	"strconv"
	"strings"
)

// Pricing pages mix model rows with quality options, footnotes, and feature
// blurbs inside the same tables. These filters keep only rows that name an
// actual model.

var invalidModelNames = map[string]bool{
	"low": true, "medium": true, "high": true, "hd": true, "standard": true,
	"small": true, "large": true, "xl": true, "xxl": true,
	"square": true, "portrait": true, "landscape": true,
	"1024x1024": true, "1024x1792": true, "1792x1024": true, "512x512": true, "256x256": true,
	"model": true, "input": true, "output": true, "cached input": true, "context": true,
	"price": true, "pricing": true, "cost": true, "token": true, "tokens": true,
	"quality": true, "size": true, "resolution": true, "format": true,
}

var featureKeywords = []string{
	"storage", "tool call", "api only", "responses api",
	"file search", "web search", "image upload", "file upload",
	"all models", "reasoning models", "non-reasoning",
	"data sharing", "with sharing", "including",
}

var knownModelPrefixes = []string{
	"gpt", "o1", "o3", "o4", "claude", "whisper", "dall-e", "tts",
	"text-embedding", "chatgpt", "davinci", "codex", "omni", "computer-use",
	"gemini", "gemma", "imagen", "veo", "grok",
}

var (
	priceRe      = regexp.MustCompile(`\$?([\d,.]+)`)
	footnoteRe   = regexp.MustCompile(`\[\d+\]`)
	longParenRe  = regexp.MustCompile(`\([^)]{15,}\)`)
	dimensionRe  = regexp.MustCompile(`^\d+x\d+$`)
	versionishRe = regexp.MustCompile(`[a-z][-.]?\d|^\d+[.-]`)
	parenNoteRe  = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	nonIDCharRe  = regexp.MustCompile(`[^\w\s.-]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	dashRunRe    = regexp.MustCompile(`-+`)
)

// parsePrice parses a price cell like "$2.50" or "$1,250.00". Dashes, "Free"
// and empty cells return nil.
func parsePrice(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" || text == "—" || strings.EqualFold(text, "free") || strings.EqualFold(text, "n/a") {
		return nil
	}
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseContextLength parses "128K", "1M" or "1,047,576" into a token count.
func parseContextLength(text string) *int {
	text = strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(text)), ",", "")
	if text == "" {
		return nil
	}
	if m := regexp.MustCompile(`([\d.]+)K`).FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			n := int(v * 1000)
			return &n
		}
	}
	if m := regexp.MustCompile(`([\d.]+)M`).FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			n := int(v * 1000000)
			return &n
		}
	}
	if m := regexp.MustCompile(`(\d+)`).FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}

// normalizeScrapedID converts a display name into the lowercase dashed id
// form. Parenthetical "(Preview)" notes become a -preview suffix.
func normalizeScrapedID(name string) string {
	hasPreview := regexp.MustCompile(`(?i)\((Preview|Deprecated)\)`).MatchString(name)
	id := parenNoteRe.ReplaceAllString(name, " ")
	id = strings.ToLower(strings.TrimSpace(id))
	id = nonIDCharRe.ReplaceAllString(id, "")
	id = spaceRunRe.ReplaceAllString(id, " ")
	id = strings.ReplaceAll(strings.TrimSpace(id), " ", "-")
	id = dashRunRe.ReplaceAllString(id, "-")
	if hasPreview && !strings.HasSuffix(id, "-preview") {
		id += "-preview"
	}
	return id
}

// isValidModelName filters out the non-model rows pricing tables contain.
func isValidModelName(name string) bool {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	if lower == "" || len(lower) < 2 || len(lower) > 50 {
		return false
	}
	if invalidModelNames[lower] {
		return false
	}
	for _, kw := range featureKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	if footnoteRe.MatchString(lower) || longParenRe.MatchString(lower) || dimensionRe.MatchString(lower) {
		return false
	}
	if !regexp.MustCompile(`^[a-z0-9]`).MatchString(lower) {
		return false
	}

	for _, prefix := range knownModelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return versionishRe.MatchString(lower)
}
