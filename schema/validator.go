package settingsschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed settings.schema.json
var settingsSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateSettingsPayload checks a reading-policy JSON document against the
// embedded schema plus semantic rules the schema cannot express.
func ValidateSettingsPayload(payload json.RawMessage) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return fmt.Errorf("decode settings JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return validateSemantics(payload)
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("settings.schema.json", strings.NewReader(settingsSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("settings.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(raw json.RawMessage) error {
	var doc struct {
		SourceWeights map[string]string `json:"source_weights"`
		StoriesPerDay *int              `json:"stories_per_day"`
		TopCount      *int              `json:"top_count"`
		ScanCount     *int              `json:"scan_count"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}

	for domain := range doc.SourceWeights {
		if strings.TrimSpace(domain) == "" {
			return fmt.Errorf("source_weights contains an empty domain key")
		}
	}

	if doc.StoriesPerDay != nil && doc.TopCount != nil && doc.ScanCount != nil {
		if *doc.TopCount+*doc.ScanCount > *doc.StoriesPerDay {
			return fmt.Errorf("top_count + scan_count must not exceed stories_per_day")
		}
	}

	return nil
}
