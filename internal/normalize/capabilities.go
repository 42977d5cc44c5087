package normalize

import (
	"strings"

	"pricedex/internal/models"
)

// tagAliases maps source vocabulary onto the canonical capability set.
// Unrecognized tags bucket into "other" so totals stay auditable.
var tagAliases = map[string]string{
	"text":              models.CapText,
	"chat":              models.CapText,
	"completion":        models.CapText,
	"vision":            models.CapVision,
	"image":             models.CapVision,
	"multimodal":        models.CapVision,
	"audio":             models.CapAudio,
	"speech":            models.CapAudio,
	"embedding":         models.CapEmbedding,
	"embeddings":        models.CapEmbedding,
	"tools":             models.CapToolUse,
	"tool_choice":       models.CapToolUse,
	"tool_use":          models.CapToolUse,
	"function_calling":  models.CapToolUse,
	"reasoning":         models.CapReasoning,
	"thinking":          models.CapReasoning,
	"include_reasoning": models.CapReasoning,
	"image_generation":  models.CapImageGeneration,
	"video_generation":  models.CapVideoGeneration,
	"tts":               models.CapTTS,
	"moderation":        models.CapModeration,
	"web_search":        models.CapWebSearch,
	"computer_use":      models.CapComputerUse,
}

// Model-id pattern tables. Sources frequently omit capability metadata, so
// family knowledge fills the gaps the same way the upstream docs do.
var (
	visionPatterns   = []string{"gpt-4o", "gpt-4.1", "gpt-4.5", "gpt-5", "chatgpt-4o", "o3", "o4-mini", "o1", "gemini", "llama-4", "llama4", "grok-3", "grok-4", "grok-2-vision", "ministral", "pixtral", "claude-3", "claude-4", "claude-opus", "claude-sonnet", "claude-haiku"}
	noVisionPatterns = []string{"realtime", "audio", "transcribe", "codex", "nano", "o1-mini", "o1-pro", "o3-mini", "embed", "whisper", "tts"}

	reasoningPatterns = []string{"o1", "o3", "o4", "gpt-5", "deepseek-r1", "-r1", "qwq", "-think", "thinking", "grok-3", "grok-4", "gemini-2.5", "gemini-2-5", "claude-3-7", "claude-3.7", "claude-4", "claude-opus-4", "claude-sonnet-4", "claude-haiku-4"}

	toolUsePatterns   = []string{"gpt-5", "gpt-4", "gpt-3.5", "chatgpt", "claude", "gemini", "mistral", "ministral", "llama-3", "llama-4", "llama3", "llama4", "command", "grok", "qwen", "deepseek", "o1", "o3", "o4"}
	noToolUsePatterns = []string{"o1-mini", "o1-pro", "o3-mini", "embed", "whisper", "tts", "moderation", "transcribe"}
)

// DetectCapabilities maps a record's source tags and modality lists onto the
// canonical capability set, falling back to model-id pattern inference where
// the source is silent.
func DetectCapabilities(nativeID string, raw models.RawRecord) []string {
	id := strings.ToLower(nativeID)
	set := newTagSet()

	// Specialized model classes carry a single capability.
	switch {
	case strings.Contains(id, "embed") || strings.Contains(strings.ToLower(raw.Category), "embedding"):
		return []string{models.CapEmbedding}
	case strings.Contains(id, "dall-e") || strings.Contains(id, "gpt-image") || strings.Contains(id, "imagen"):
		return []string{models.CapImageGeneration}
	case strings.Contains(id, "veo") || strings.Contains(id, "sora"):
		return []string{models.CapVideoGeneration}
	case strings.Contains(id, "whisper") || strings.Contains(id, "transcribe"):
		return []string{models.CapAudio}
	case strings.Contains(id, "tts"):
		return []string{models.CapTTS}
	case strings.Contains(id, "moderation"):
		return []string{models.CapModeration}
	}

	// Source-declared tags first.
	for _, tag := range raw.Tags {
		if canonical, ok := tagAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
			set.add(canonical)
		} else {
			set.add(models.CapOther)
		}
	}

	// Modalities declared by the source.
	if contains(raw.InputModalities, "text") || contains(raw.OutputModalities, "text") || len(raw.InputModalities) == 0 {
		set.add(models.CapText)
	}
	if contains(raw.InputModalities, "image") {
		set.add(models.CapVision)
	}
	if contains(raw.InputModalities, "audio") || contains(raw.OutputModalities, "audio") {
		set.add(models.CapAudio)
	}
	if contains(raw.OutputModalities, "image") {
		set.add(models.CapImageGeneration)
	}

	// Pattern fallbacks for what the source didn't declare.
	if !set.has(models.CapVision) && matchesAny(id, visionPatterns) && !matchesAny(id, noVisionPatterns) {
		set.add(models.CapVision)
	}
	if !set.has(models.CapReasoning) {
		if p := raw.Price(models.PriceReasoningOutput); p != nil && *p > 0 {
			set.add(models.CapReasoning)
		} else if matchesAny(id, reasoningPatterns) {
			set.add(models.CapReasoning)
		}
	}
	if !set.has(models.CapToolUse) && matchesAny(id, toolUsePatterns) && !matchesAny(id, noToolUsePatterns) {
		set.add(models.CapToolUse)
	}
	if !set.has(models.CapAudio) && strings.Contains(id, "gemini-2") {
		set.add(models.CapAudio)
	}

	if len(set.order) == 0 {
		return []string{models.CapText}
	}
	return set.order
}

// DetectModalities derives input/output modality sets. Source-declared
// modalities win; otherwise they follow from the capability set.
func DetectModalities(caps []string, raw models.RawRecord) ([]string, []string) {
	in := append([]string(nil), raw.InputModalities...)
	out := append([]string(nil), raw.OutputModalities...)

	if len(in) == 0 {
		inSet := newTagSet()
		for _, c := range caps {
			switch c {
			case models.CapText, models.CapToolUse, models.CapReasoning, models.CapImageGeneration, models.CapVideoGeneration, models.CapTTS, models.CapModeration, models.CapEmbedding:
				inSet.add("text")
			case models.CapVision:
				inSet.add("text")
				inSet.add("image")
			case models.CapAudio:
				inSet.add("audio")
			}
		}
		in = inSet.order
	}

	if len(out) == 0 {
		outSet := newTagSet()
		for _, c := range caps {
			switch c {
			case models.CapText, models.CapToolUse, models.CapReasoning, models.CapVision:
				outSet.add("text")
			case models.CapImageGeneration:
				outSet.add("image")
			case models.CapVideoGeneration:
				outSet.add("video")
			case models.CapAudio, models.CapTTS:
				outSet.add("audio")
			case models.CapEmbedding:
				outSet.add("embedding")
			}
		}
		out = outSet.order
	}

	if len(in) == 0 {
		in = []string{"text"}
	}
	if len(out) == 0 {
		out = []string{"text"}
	}
	return in, out
}

type tagSet struct {
	seen  map[string]bool
	order []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]bool)}
}

func (s *tagSet) add(v string) {
	if !s.seen[v] {
		s.seen[v] = true
		s.order = append(s.order, v)
	}
}

func (s *tagSet) has(v string) bool { return s.seen[v] }

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func matchesAny(id string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(id, p) {
			return true
		}
	}
	return false
}
