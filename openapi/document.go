// Package openapi generates OpenAPI 3.0 documents from api.Service route
// declarations, and checks documents and JSON values against them.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Document is an OpenAPI document.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Tags       []Tag               `json:"tags,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

type Info struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version"`
	Contact     *Contact `json:"contact,omitempty"`
	License     *License `json:"license,omitempty"`
}

type Contact struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type License struct {
	Name string `json:"name"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PathItem maps lower case HTTP methods to operations.
type PathItem map[string]*Operation

type Operation struct {
	OperationID string                `json:"operationId"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"`
	Security    []map[string][]string `json:"security,omitempty"`
}

type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Required    bool    `json:"required,omitempty"`
	Description string  `json:"description,omitempty"`
	Schema      *Schema `json:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required,omitempty"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type Components struct {
	Schemas         map[string]*Schema        `json:"schemas,omitempty"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
}

type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
}

// Schema is the subset of the OpenAPI schema object the generator emits.
type Schema struct {
	Ref                  string             `json:"$ref,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	ExclusiveMinimum     bool               `json:"exclusiveMinimum,omitempty"`
	Nullable             bool               `json:"nullable,omitempty"`
	AllOf                []*Schema          `json:"allOf,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
}

// Operation returns the operation served for method on path.
func (d Document) Operation(method, path string) (*Operation, bool) {
	item, ok := d.Paths[path]
	if !ok {
		return nil, false
	}
	op, ok := item[strings.ToLower(method)]
	return op, ok && op != nil
}

// ResponseSchema returns the schema of the status response in mediaType.
func (o *Operation) ResponseSchema(status int, mediaType string) (*Schema, error) {
	resp, ok := o.Responses[strconv.Itoa(status)]
	if !ok {
		return nil, fmt.Errorf("operation %s has no %d response", o.OperationID, status)
	}
	mt, ok := resp.Content[mediaType]
	if !ok || mt.Schema == nil {
		return nil, fmt.Errorf("operation %s response %d has no %s schema", o.OperationID, status, mediaType)
	}
	return mt.Schema, nil
}

const schemaRefPrefix = "#/components/schemas/"

func ref(name string) *Schema { return &Schema{Ref: schemaRefPrefix + name} }

// JSON encodes the document with indentation.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML encodes the document as block style YAML, keeping the JSON field order.
func (d Document) YAML() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	plain(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// plain drops the flow styles inherited from the JSON source.
// The encoder still quotes strings that would otherwise read as another type.
func plain(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plain(c)
	}
}

// Parse decodes a JSON or YAML document.
func Parse(data []byte) (Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	return d, nil
}

func statusText(status int) string {
	if status >= 200 && status < 300 {
		return "Successful Response"
	}
	if status == http.StatusUnprocessableEntity {
		return "Validation Error"
	}
	return http.StatusText(status)
}
