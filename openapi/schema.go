package openapi

import (
	"reflect"
	"strings"
	"time"

	"github.com/sri-akshat/wealth-manager"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	moneyType    = reflect.TypeFor[wealth.Money]()
	quantityType = reflect.TypeFor[wealth.Quantity]()
	enumType     = reflect.TypeFor[interface{ Enum() []string }]()
)

// generator reflects Go types into schemas, registering named structs and
// enumerations as components.
type generator struct {
	schemas map[string]*Schema
}

func newGenerator() *generator {
	return &generator{schemas: make(map[string]*Schema)}
}

func (g *generator) schema(t reflect.Type) *Schema {
	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case moneyType, quantityType:
		return &Schema{Type: "number"}
	}
	if t.Implements(enumType) && t.Kind() == reflect.String {
		name := t.Name()
		if _, ok := g.schemas[name]; !ok {
			values := reflect.Zero(t).Interface().(interface{ Enum() []string }).Enum()
			g.schemas[name] = &Schema{Title: name, Type: "string", Enum: values}
		}
		return ref(name)
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &Schema{Type: "integer"}
	case reflect.Int64, reflect.Uint64:
		return &Schema{Type: "integer", Format: "int64"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Pointer:
		return nullable(g.schema(t.Elem()))
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: g.schema(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.schema(t.Elem())}
	case reflect.Struct:
		if t.Name() == "" {
			return g.object(t)
		}
		name := t.Name()
		if _, ok := g.schemas[name]; !ok {
			g.schemas[name] = &Schema{} // placeholder for recursive types
			s := g.object(t)
			s.Title = name
			g.schemas[name] = s
		}
		return ref(name)
	}
	return &Schema{}
}

func nullable(s *Schema) *Schema {
	if s.Ref != "" {
		return &Schema{AllOf: []*Schema{s}, Nullable: true}
	}
	s.Nullable = true
	return s
}

func (g *generator) object(t reflect.Type) *Schema {
	s := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		p := g.schema(f.Type)
		if tag := f.Tag.Get("openapi"); tag != "" {
			if p.Ref != "" || len(p.AllOf) > 0 {
				p = &Schema{AllOf: []*Schema{p}}
			}
			applyOptions(p, tag)
		}
		if d := f.Tag.Get("doc"); d != "" {
			p.Description = d
		}
		s.Properties[name] = p
		if f.Type.Kind() != reflect.Pointer && !strings.Contains(opts, "omitempty") {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

// applyOptions applies the comma separated openapi tag options: gt0 for an
// exclusive minimum of zero, email and password for string formats.
func applyOptions(s *Schema, tag string) {
	for _, opt := range strings.Split(tag, ",") {
		switch opt {
		case "gt0":
			zero := 0.0
			s.Minimum = &zero
			s.ExclusiveMinimum = true
		case "email", "password", "date", "date-time":
			s.Format = opt
		}
	}
}

func hasOption(tag, option string) bool {
	for _, opt := range strings.Split(tag, ",") {
		if opt == option {
			return true
		}
	}
	return false
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}
