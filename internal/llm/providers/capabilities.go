// Package providers implements one adapter per backend capability surface.
// Each adapter translates the normalized transport.Request into its
// provider's wire format and parses the provider envelope back into a
// normalized transport.Response. Provider quirks live here as data
// transforms; no business logic elsewhere branches on provider identity.
package providers

import (
	"strings"

	"github.com/lldarena/arena/internal/domain"
)

// ReasoningDialect names the parameter family a model uses for reasoning
// control. The two dialects are mutually exclusive on the wire.
type ReasoningDialect int

const (
	// DialectNone: the model accepts no reasoning parameters.
	DialectNone ReasoningDialect = iota

	// DialectEffort: top-level "reasoning_effort" in {low, medium, high}
	// plus a boolean flag to request the reasoning trace.
	DialectEffort

	// DialectFormat: "reasoning_effort" restricted to {none, default} plus a
	// "reasoning_format" in {parsed, hidden}. The "raw" format exists but is
	// never sent alongside a structured-output clause.
	DialectFormat
)

// Capabilities describes what a model family supports. Resolved once per
// model at adapter construction; request building only reads the table.
type Capabilities struct {
	SupportsSystemRole       bool
	SupportsStructuredOutput bool
	Reasoning                ReasoningDialect
}

// familyRule maps a model-ID prefix to its capabilities. Longest matching
// prefix wins; the empty prefix is the provider default.
type familyRule struct {
	prefix string
	caps   Capabilities
}

var openAIFamilies = []familyRule{
	{prefix: "", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectNone}},
	{prefix: "o1", caps: Capabilities{SupportsSystemRole: false, SupportsStructuredOutput: true, Reasoning: DialectEffort}},
	{prefix: "o3", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectEffort}},
	{prefix: "o4", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectEffort}},
}

var groqFamilies = []familyRule{
	{prefix: "", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectNone}},
	{prefix: "qwen/", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectFormat}},
	{prefix: "deepseek-r1", caps: Capabilities{SupportsSystemRole: true, SupportsStructuredOutput: true, Reasoning: DialectFormat}},
	{prefix: "gemma", caps: Capabilities{SupportsSystemRole: false, SupportsStructuredOutput: false, Reasoning: DialectNone}},
}

// resolveCapabilities picks the longest matching family rule for a model.
func resolveCapabilities(rules []familyRule, modelID string) Capabilities {
	best := rules[0].caps
	bestLen := -1
	for _, r := range rules {
		if strings.HasPrefix(modelID, r.prefix) && len(r.prefix) > bestLen {
			best = r.caps
			bestLen = len(r.prefix)
		}
	}
	return best
}

// buildCapabilityTable resolves capabilities for every catalog model of the
// given provider so request building is a map lookup.
func buildCapabilityTable(provider domain.Provider, rules []familyRule) map[string]Capabilities {
	table := make(map[string]Capabilities)
	for _, entry := range domain.Catalog() {
		if entry.Provider == provider {
			table[entry.ModelID] = resolveCapabilities(rules, entry.ModelID)
		}
	}
	return table
}

// capabilitiesFor returns the precomputed capabilities for a model, falling
// back to prefix resolution for models outside the static catalog.
func capabilitiesFor(table map[string]Capabilities, rules []familyRule, modelID string) Capabilities {
	if caps, ok := table[modelID]; ok {
		return caps
	}
	return resolveCapabilities(rules, modelID)
}
