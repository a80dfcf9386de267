package domain

import (
	"encoding/json"
	"errors"
)

// Difficulty grades a generated design question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionResponse is the structured payload every generation call must
// produce. It is created fresh per call and never mutated afterwards; only
// ShortTitle propagates into history stores, where it serves as the
// de-duplication key for future rounds.
type QuestionResponse struct {
	Question                  string   `json:"question"`
	Constraints               []string `json:"constraints"`
	ShortTitle                string   `json:"shortTitle"`
	FunctionalRequirements    []string `json:"functionalRequirements,omitempty"`
	NonFunctionalRequirements []string `json:"nonFunctionalRequirements,omitempty"`
}

// Validate checks the fields the schema marks required. The completion
// client calls this after decoding; a miss is a schema-validation failure,
// not a crash.
func (q *QuestionResponse) Validate() error {
	if q.Question == "" {
		return errors.New("question is empty")
	}
	if q.ShortTitle == "" {
		return errors.New("shortTitle is empty")
	}
	return nil
}

// questionSchemaJSON is the JSON schema sent as the structured-output clause
// for question generation. Kept as a raw literal so it round-trips to
// providers byte for byte.
const questionSchemaJSON = `{
  "type": "object",
  "properties": {
    "question": {
      "type": "string",
      "description": "The full interview question statement."
    },
    "constraints": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Explicit constraints the candidate must honor."
    },
    "shortTitle": {
      "type": "string",
      "description": "Concise unique identifier for the question, e.g. PARKING_LOT."
    },
    "functionalRequirements": {
      "type": "array",
      "items": {"type": "string"}
    },
    "nonFunctionalRequirements": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["question", "constraints", "shortTitle"],
  "additionalProperties": false
}`

// QuestionSchemaName is the schema name providers echo back in
// structured-output clauses.
const QuestionSchemaName = "lld_question"

// QuestionSchema returns the structured-output schema body for
// QuestionResponse.
func QuestionSchema() json.RawMessage {
	return json.RawMessage(questionSchemaJSON)
}
