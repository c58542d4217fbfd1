package detection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// frameSchemaJSON describes the detection dump: an array of per-frame
// objects. It is stricter than the tolerant loader, so validation reports
// the entries the loader would silently skip.
const frameSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "timestamp_seconds": {"type": "number"},
      "timestamp": {"type": "number"},
      "has_subtitle": {"type": "boolean"},
      "frame_index": {"type": "integer", "minimum": 0},
      "max_score": {"type": "number"}
    },
    "anyOf": [
      {"required": ["timestamp_seconds"]},
      {"required": ["timestamp"]}
    ]
  }
}`

var frameSchema *jsonschema.Schema

func init() {
	frameSchema = mustCompileSchema(frameSchemaJSON, "detection.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateFile validates a detection JSON file against the frame schema and
// returns one message per violation. An empty slice means the file is valid.
// I/O and JSON syntax problems are returned as the error instead.
func ValidateFile(path string) ([]string, error) {
	data, err := readMaybeGzip(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("detection: parse %s: %w", path, err)
	}

	return validateAgainstSchema(frameSchema, doc), nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
