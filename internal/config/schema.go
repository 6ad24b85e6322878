package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

const schemaURL = "rankmgr://config.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("разбор схемы: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("регистрация схемы: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateDocument проверяет YAML документ конфигурации по встроенной JSON Schema.
// Пустой документ допустим, для него empty == true.
func validateDocument(data []byte) (empty bool, err error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("разбор YAML: %w", err)
	}
	if raw == nil {
		return true, nil
	}

	// схема проверяет JSON-значения: YAML приводится к ним через JSON
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("преобразование YAML в JSON: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return false, err
	}

	schema, err := loadSchema()
	if err != nil {
		return false, err
	}
	return false, schema.Validate(doc)
}
