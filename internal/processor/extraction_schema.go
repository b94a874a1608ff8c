package processor

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// listingExtractionSchema is the AI response contract for the JOB/EXTRACT
// step: turn a scraped page's markdown body into
// structured fields. Grounded on the same validator-tagged-struct-as-
// contract pattern as filter/analysis_schema.go.
type listingExtractionSchema struct {
	Title          string   `json:"title" validate:"required"`
	CompanyName    string   `json:"companyName" validate:"required"`
	Location       string   `json:"location"`
	Remote         bool     `json:"remote"`
	SalaryMin      *float64 `json:"salaryMin"`
	SalaryMax      *float64 `json:"salaryMax"`
	SalaryCurrency string   `json:"salaryCurrency"`
	PostedAt       string   `json:"postedAt"` // RFC3339 if known, else ""
	Description    string   `json:"description" validate:"required"`
}

func (s *listingExtractionSchema) Validate() error {
	return validator.New().Struct(s)
}

func listingExtractionJSONSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":          map[string]interface{}{"type": "string"},
			"companyName":    map[string]interface{}{"type": "string"},
			"location":       map[string]interface{}{"type": "string"},
			"remote":         map[string]interface{}{"type": "boolean"},
			"salaryMin":      map[string]interface{}{"type": "number"},
			"salaryMax":      map[string]interface{}{"type": "number"},
			"salaryCurrency": map[string]interface{}{"type": "string"},
			"postedAt":       map[string]interface{}{"type": "string", "description": "RFC3339 timestamp if known, else empty"},
			"description":    map[string]interface{}{"type": "string"},
		},
		"required": []string{"title", "companyName", "description"},
	}
}

func parseListingExtraction(raw string) (*listingExtractionSchema, error) {
	var parsed listingExtractionSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}
	return &parsed, nil
}

// companyExtractionSchema is the AI response contract for COMPANY/EXTRACT.
type companyExtractionSchema struct {
	Name        string   `json:"name" validate:"required"`
	Domain      string   `json:"domain"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	SizeRange   string   `json:"sizeRange"`
	Locations   []string `json:"locations"`
}

func (s *companyExtractionSchema) Validate() error {
	return validator.New().Struct(s)
}

func companyExtractionJSONSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":        map[string]interface{}{"type": "string"},
			"domain":      map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"industry":    map[string]interface{}{"type": "string"},
			"sizeRange":   map[string]interface{}{"type": "string"},
			"locations":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		},
		"required": []string{"name"},
	}
}

func parseCompanyExtraction(raw string) (*companyExtractionSchema, error) {
	var parsed companyExtractionSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decoding company extraction response: %w", err)
	}
	return &parsed, nil
}
