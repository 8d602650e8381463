// Package schemas validates artifacts and model responses against the JSON Schemas
// embedded in the root schemas package.
package schemas

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	rootschemas "github.com/jonathan/hiring-panel/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation at a JSON path
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document, sorted by field.
// Its message is fed back to the model verbatim on corrective retries.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Schema != "" {
		fmt.Fprintf(&sb, "%s ", ve.Schema)
	}
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself could not be loaded or compiled
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// compiled embedded schemas by name
var compiled sync.Map

func compile(name string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}
	content, err := rootschemas.Get(name)
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "schema not embedded", Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "invalid schema", Cause: err}
	}
	actual, _ := compiled.LoadOrStore(name, s)
	return actual.(*gojsonschema.Schema), nil
}

// ValidateNamed validates JSON content against an embedded schema.
func ValidateNamed(name, jsonContent string) error {
	schema, err := compile(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return resultError(name, result)
}

// ValidateNamedFile validates a JSON file against an embedded schema.
func ValidateNamedFile(name, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", jsonPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ValidateNamed(name, string(data))
}

// ValidateJSONString validates a document against schema content given inline.
func ValidateJSONString(schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaContent), gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &SchemaLoadError{Schema: "(inline)", Message: "schema validation failed during load", Cause: err}
	}
	return resultError("", result)
}

func resultError(schema string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	seen := map[FieldError]bool{}
	ve := &ValidationError{Schema: schema}
	for _, desc := range result.Errors() {
		fe := FieldError{Field: desc.Field(), Message: desc.Description()}
		if fe.Field == "" {
			fe.Field = "(root)"
		}
		if !seen[fe] {
			seen[fe] = true
			ve.Errors = append(ve.Errors, fe)
		}
	}
	sort.SliceStable(ve.Errors, func(i, j int) bool { return ve.Errors[i].Field < ve.Errors[j].Field })
	return ve
}
