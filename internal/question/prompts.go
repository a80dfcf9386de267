// Package question builds interview-question prompts and drives structured
// completions against a prioritized list of models.
package question

import (
	"fmt"
	"strings"

	"github.com/lldarena/arena/internal/domain"
)

// systemPrompt states the difficulty and instructs the model to stay away
// from short titles the caller has already seen.
func systemPrompt(difficulty domain.Difficulty, asked []string) string {
	var b strings.Builder
	b.WriteString("You are an experienced interviewer who writes low-level design interview questions. ")
	fmt.Fprintf(&b, "Produce one %s-difficulty object-oriented design question. ", difficulty)
	b.WriteString("Respond with a single JSON object containing the question statement, ")
	b.WriteString("its constraints, a concise unique shortTitle in SCREAMING_SNAKE_CASE, ")
	b.WriteString("and optional functional and non-functional requirements.")
	if len(asked) > 0 {
		b.WriteString(" Never reuse any short title the candidate has already been given.")
	}
	return b.String()
}

// userPrompt enumerates the already-asked short titles verbatim, or states
// that none exist.
func userPrompt(asked []string) string {
	if len(asked) == 0 {
		return "Generate a new design question. No questions have been asked so far."
	}
	return fmt.Sprintf(
		"Generate a new design question. The following questions were already asked: %s. The new question must differ from all of them.",
		strings.Join(asked, ", "),
	)
}
