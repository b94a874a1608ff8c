package filter

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// matchAnalysisSchema is the structured output the Agent Manager's
// worker.analysis scope asks the model to produce. Grounded on
// signal_analysis_schema.go's shape: a validator-tagged struct that
// doubles as both the JSON schema source (via jsonSchema()) and the
// response-side validation gate before anything derived from it is
// trusted.
type matchAnalysisSchema struct {
	Score      int      `json:"score" validate:"gte=0,lte=100"`
	Priority   string   `json:"priority" validate:"required,oneof=HIGH MEDIUM LOW NONE"`
	Summary    string   `json:"summary" validate:"required"`
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
}

// Validate validates the schema using go-playground/validator.
func (s *matchAnalysisSchema) Validate() error {
	return validator.New().Struct(s)
}

// jsonSchema returns the map[string]interface{} JSON-schema
// representation AgentRequest.OutputSchema expects, so the Gemini
// provider can enforce it as structured output.
func matchAnalysisJSONSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score": map[string]interface{}{
				"type":        "integer",
				"description": "Match quality from 0 (no fit) to 100 (ideal fit)",
				"minimum":     float64(0),
				"maximum":     float64(100),
			},
			"priority": map[string]interface{}{
				"type": "string",
				"enum": []string{"HIGH", "MEDIUM", "LOW", "NONE"},
			},
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "One or two sentence rationale for the score",
			},
			"strengths": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"concerns": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"score", "priority", "summary"},
	}
}

func parseMatchAnalysis(raw string) (*matchAnalysisSchema, error) {
	var schema matchAnalysisSchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
