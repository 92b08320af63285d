// Package schemas provides JSON Schema validation for profile records, weight
// configurations and ranking requests.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	bundled "github.com/jonathan/roommate-matcher/schemas"
)

// Names of the bundled schemas.
const (
	Candidates   = "candidates"
	RankRequest  = "rank_request"
	RawProfile   = "raw_profile"
	WeightConfig = "weight_config"
)

// schemaBaseURL matches the $id prefix used by the bundled schemas so that
// cross-schema $refs resolve from the in-memory pool.
const schemaBaseURL = "https://roommate-matcher.dev/schemas/"

// shared schemas are referenced by other bundled schemas.
var shared = []string{RawProfile, WeightConfig}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// Names returns the names of all bundled schemas, sorted.
func Names() []string {
	return []string{Candidates, RankRequest, RawProfile, WeightConfig}
}

// ResolveSchemaPath attempts to find a schema file by trying multiple common path resolutions.
// It tries paths relative to the current working directory, then paths relative to likely repo root locations.
// Returns the first path that exists, or empty string if none found.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate validates a JSON document against the named bundled schema.
// A malformed document is reported as a plain error, a document that breaks
// the schema as a *ValidationError.
func Validate(name string, document []byte) error {
	schemas, err := compileBundled()
	if err != nil {
		return err
	}
	schema, ok := schemas[name]
	if !ok {
		return &SchemaLoadError{Path: name, Message: "unknown bundled schema"}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to parse %s document: %w", name, err)
	}
	return fromResult(result)
}

// ValidateFile validates a JSON file against the named bundled schema.
func ValidateFile(name, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", jsonPath)
		}
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	return Validate(name, data)
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	// Resolve absolute paths to handle relative paths correctly
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}

	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}

	if _, err := os.Stat(jsonAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbsPath)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbsPath)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaAbsPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return fromResult(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return fromResult(result)
}

func fromResult(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

func compileBundled() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, len(Names()))
		for _, name := range Names() {
			schema, err := compileSchema(name)
			if err != nil {
				compileErr = err
				return
			}
			compiled[name] = schema
		}
	})
	return compiled, compileErr
}

func compileSchema(name string) (*gojsonschema.Schema, error) {
	loader := gojsonschema.NewSchemaLoader()
	for _, dep := range shared {
		if dep == name {
			continue
		}
		data, err := readBundled(dep)
		if err != nil {
			return nil, err
		}
		if err := loader.AddSchema(schemaBaseURL+fileName(dep), gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, &SchemaLoadError{Path: fileName(dep), Message: "failed to register schema", Cause: err}
		}
	}

	data, err := readBundled(name)
	if err != nil {
		return nil, err
	}
	schema, err := loader.Compile(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: fileName(name), Message: "failed to compile schema", Cause: err}
	}
	return schema, nil
}

func readBundled(name string) ([]byte, error) {
	data, err := bundled.FS.ReadFile(fileName(name))
	if err != nil {
		return nil, &SchemaLoadError{Path: fileName(name), Message: "bundled schema missing", Cause: err}
	}
	return data, nil
}

func fileName(name string) string {
	return name + ".schema.json"
}
