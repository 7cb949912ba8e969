package whisperx

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"autosub/internal/subtitles"
)

//go:embed transcript.schema.json
var transcriptSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// payload is the subset of the WhisperX JSON output autosub reads.
type payload struct {
	Language *string             `json:"language"`
	Segments []subtitles.Segment `json:"segments"`
}

// DecodeTranscript validates raw WhisperX JSON and returns its segments in
// file order.
func DecodeTranscript(raw []byte) (subtitles.Transcript, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return subtitles.Transcript{}, fmt.Errorf("decode whisperx json: %w", err)
	}
	schema, err := loadSchema()
	if err != nil {
		return subtitles.Transcript{}, fmt.Errorf("load transcript schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("whisperx json failed validation: %w", err)
	}

	var parsed payload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	transcript := subtitles.Transcript{Segments: parsed.Segments}
	if parsed.Language != nil {
		transcript.Language = strings.ToLower(strings.TrimSpace(*parsed.Language))
	}
	if transcript.Segments == nil {
		transcript.Segments = []subtitles.Segment{}
	}
	return transcript, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("transcript.schema.json", strings.NewReader(transcriptSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("transcript.schema.json")
	})
	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("payload is empty")
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("payload contains trailing content")
	}
	return value, nil
}
