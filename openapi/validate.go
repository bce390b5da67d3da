package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	schemaURL  = "mem:///openapi.json"
	defsPrefix = "#/$defs/"
)

// assertedFormats are the string formats checked during validation; others
// are documentation only.
var assertedFormats = []string{"date", "date-time", "email"}

// ValidateValue checks a decoded JSON value (as produced by json.Unmarshal
// into an any) against schema, following references into d.
func ValidateValue(d Document, value any, schema *Schema) error {
	c, err := compiler(d, schema)
	if err != nil {
		return err
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("cannot compile schema: %w", err)
	}
	return validationErrors(sch.Validate(value))
}

// ValidateJSON decodes data and validates it against schema.
func ValidateJSON(d Document, data []byte, schema *Schema) error {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return ValidateValue(d, value, schema)
}

// checkSchemas compiles every component schema, reporting those that are not
// valid JSON Schema once translated.
func checkSchemas(d Document) []error {
	c, err := compiler(d, nil)
	if err != nil {
		return []error{err}
	}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(d.Components.Schemas)) {
		if _, err := c.Compile(schemaURL + defsPrefix + name); err != nil {
			errs = append(errs, fmt.Errorf("components.schemas.%s: %w", name, err))
		}
	}
	return errs
}

// compiler returns a compiler holding a single resource: the document
// component schemas under $defs, and root as the top level schema.
func compiler(d Document, root *Schema) (*jsonschema.Compiler, error) {
	doc := jsonSchema(root)
	defs := make(map[string]any, len(d.Components.Schemas))
	for name, s := range d.Components.Schemas {
		defs[name] = jsonSchema(s)
	}
	doc["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	doc["$defs"] = defs

	// Round trip through JSON so the resource holds only decoded JSON values.
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	c.AssertFormat()
	if err := c.AddResource(schemaURL, resource); err != nil {
		return nil, err
	}
	return c, nil
}

// jsonSchema translates an OpenAPI 3.0 schema object to JSON Schema 2020-12.
// nullable becomes an if/else on null so that a rejected value only reports
// the non null branch; a boolean exclusiveMinimum becomes the numeric form.
func jsonSchema(s *Schema) map[string]any {
	out := make(map[string]any)
	if s == nil {
		return out
	}
	if s.Ref != "" {
		if name, ok := strings.CutPrefix(s.Ref, schemaRefPrefix); ok {
			out["$ref"] = defsPrefix + name
		} else {
			out["$ref"] = s.Ref
		}
	}
	if s.Type != "" {
		out["type"] = s.Type
	}
	if slices.Contains(assertedFormats, s.Format) {
		out["format"] = s.Format
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Minimum != nil {
		if s.ExclusiveMinimum {
			out["exclusiveMinimum"] = *s.Minimum
		} else {
			out["minimum"] = *s.Minimum
		}
	}
	if len(s.AllOf) > 0 {
		all := make([]any, len(s.AllOf))
		for i, sub := range s.AllOf {
			all[i] = jsonSchema(sub)
		}
		out["allOf"] = all
	}
	if s.Items != nil {
		out["items"] = jsonSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = jsonSchema(p)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.AdditionalProperties != nil {
		out["additionalProperties"] = jsonSchema(s.AdditionalProperties)
	}
	if s.Nullable {
		return map[string]any{"if": map[string]any{"type": "null"}, "else": out}
	}
	return out
}

var printer = message.NewPrinter(language.English)

// validationErrors flattens a validation error into one error per failed
// leaf keyword, each prefixed with the instance location in JSONPath form.
func validationErrors(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var errs []error
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			errs = append(errs, fmt.Errorf("%s: %s", location(e.InstanceLocation), e.ErrorKind.LocalizedString(printer)))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return errors.Join(errs...)
}

func location(tokens []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, tok := range tokens {
		if _, err := strconv.Atoi(tok); err == nil {
			fmt.Fprintf(&b, "[%s]", tok)
		} else {
			b.WriteString("." + tok)
		}
	}
	return b.String()
}
