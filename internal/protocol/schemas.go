package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/botconfig.schema.json
var botConfigSchemaJSON string

//go:embed schemas/botaction.schema.json
var botActionSchemaJSON string

var (
	botConfigSchema = mustCompile("botconfig.schema.json", botConfigSchemaJSON)
	botActionSchema = mustCompile("botaction.schema.json", botActionSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	s, err := jsonschema.CompileString(name, src)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", name, err))
	}
	return s
}

// ValidateConfigPayload checks a JSON body against the BotConfig schema.
func ValidateConfigPayload(body []byte) error {
	return validate(botConfigSchema, body)
}

// ValidateActionPayload checks a JSON body against the BotAction schema.
func ValidateActionPayload(body []byte) error {
	return validate(botActionSchema, body)
}

func validate(s *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return err
	}
	return nil
}
