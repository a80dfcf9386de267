// Package llm provides the structured-completion client: prompt in, schema-
// validated JSON out, across heterogeneous provider APIs. Provider-specific
// wire formats live in the providers package; this package orchestrates the
// call, recovers JSON from unruly model output, and folds every failure into
// a typed result.
package llm

import "strings"

// ExtractJSONObject recovers the first balanced JSON object from raw model
// text. Models routinely ignore formatting instructions, so the text may
// carry a markdown code fence, leading commentary, or trailing prose; string
// literals and escape sequences inside the JSON are honored so braces in
// quoted text never affect nesting depth.
//
// Returns false when no balanced object exists.
func ExtractJSONObject(raw string) (string, bool) {
	text := stripCodeFence(raw)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// stripCodeFence returns the text between the first pair of ``` fences,
// dropping a language tag on the opening fence line. Text without a closed
// fence is returned unchanged; the brace scan copes with the rest.
func stripCodeFence(raw string) string {
	open := strings.Index(raw, "```")
	if open < 0 {
		return raw
	}

	inner := raw[open+3:]
	end := strings.Index(inner, "```")
	if end < 0 {
		return raw
	}
	inner = inner[:end]

	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		tag := strings.TrimSpace(inner[:nl])
		if tag != "" && !strings.ContainsAny(tag, "{}") {
			inner = inner[nl+1:]
		}
	}

	return inner
}
