package schema

import "strings"

// AgentTypeCategory is one of the fixed presentation buckets a node's
// declared agent type is classified into. The set is closed: classification
// is total and every category maps to exactly one presentation color.
type AgentTypeCategory string

const (
	CategoryCore    AgentTypeCategory = "core"
	CategoryLLM     AgentTypeCategory = "llm"
	CategoryStorage AgentTypeCategory = "storage"
	CategoryFile    AgentTypeCategory = "file"
	CategoryCustom  AgentTypeCategory = "custom"
	CategoryUnknown AgentTypeCategory = "unknown"
)

// CustomAgentPrefix marks user-defined agent types. Any agent type of the
// form "custom:<anything>" classifies as CategoryCustom regardless of the
// suffix.
const CustomAgentPrefix = "custom:"

// knownAgentTypes maps built-in agent type names to their category.
// Lookup is case-sensitive; unlisted values classify as CategoryUnknown.
var knownAgentTypes = map[string]AgentTypeCategory{
	"echo":      CategoryCore,
	"default":   CategoryCore,
	"input":     CategoryCore,
	"branching": CategoryCore,
	"success":   CategoryCore,
	"failure":   CategoryCore,
	"graph":     CategoryCore,

	"llm":       CategoryLLM,
	"openai":    CategoryLLM,
	"anthropic": CategoryLLM,
	"gemini":    CategoryLLM,

	"csv_reader":    CategoryStorage,
	"csv_writer":    CategoryStorage,
	"json_reader":   CategoryStorage,
	"json_writer":   CategoryStorage,
	"vector_reader": CategoryStorage,
	"vector_writer": CategoryStorage,

	"file_reader": CategoryFile,
	"file_writer": CategoryFile,
}

// categoryColors is the default presentation palette.
var categoryColors = map[AgentTypeCategory]string{
	CategoryCore:    "#dbeafe",
	CategoryLLM:     "#ede9fe",
	CategoryStorage: "#dcfce7",
	CategoryFile:    "#fef9c3",
	CategoryCustom:  "#fce7f3",
	CategoryUnknown: "#e5e7eb",
}

// ClassifyAgentType maps an agent type string to its presentation category.
// Total: every input, including the empty string, yields exactly one category.
func ClassifyAgentType(agentType string) AgentTypeCategory {
	if strings.HasPrefix(agentType, CustomAgentPrefix) {
		return CategoryCustom
	}
	if cat, ok := knownAgentTypes[agentType]; ok {
		return cat
	}
	return CategoryUnknown
}

// Categories returns the closed category set in a stable order.
func Categories() []AgentTypeCategory {
	return []AgentTypeCategory{
		CategoryCore, CategoryLLM, CategoryStorage,
		CategoryFile, CategoryCustom, CategoryUnknown,
	}
}

// CategoryColor returns the default color for a category. Unknown inputs
// fall back to the CategoryUnknown color so the palette is total too.
func CategoryColor(cat AgentTypeCategory) string {
	if c, ok := categoryColors[cat]; ok {
		return c
	}
	return categoryColors[CategoryUnknown]
}

// DefaultPalette returns a copy of the default category → color mapping.
// Callers may overwrite entries (e.g. from config) without affecting the
// package default.
func DefaultPalette() map[AgentTypeCategory]string {
	p := make(map[AgentTypeCategory]string, len(categoryColors))
	for k, v := range categoryColors {
		p[k] = v
	}
	return p
}
