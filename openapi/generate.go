package openapi

import (
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sri-akshat/wealth-manager/api"
)

// Contact and license of generated documents.
var (
	DefaultContact = &Contact{Name: "Wealth Manager Team", URL: "https://github.com/sri-akshat/wealth-manager"}
	DefaultLicense = &License{Name: "Private"}
)

const bearerScheme = "HTTPBearer"

// Generate documents every route of s.
func Generate(s *api.Service) Document {
	g := newGenerator()
	doc := Document{
		OpenAPI: Version,
		Info: Info{
			Title:       s.Title,
			Description: s.Description,
			Version:     s.Version,
			Contact:     DefaultContact,
			License:     DefaultLicense,
		},
		Paths: make(map[string]PathItem),
	}
	for _, t := range s.Tags {
		doc.Tags = append(doc.Tags, Tag{Name: t.Name, Description: t.Description})
	}

	secured := false
	for _, rt := range s.Routes {
		path, params := templatePath(rt.Path)
		item, ok := doc.Paths[path]
		if !ok {
			item = make(PathItem)
			doc.Paths[path] = item
		}
		op := g.operation(rt, path, params)
		if rt.Auth {
			secured = true
		}
		item[strings.ToLower(rt.Method)] = op
	}

	doc.Components.Schemas = g.schemas
	if secured {
		doc.Components.SecuritySchemes = map[string]SecurityScheme{
			bearerScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		}
	}
	return doc
}

var pathParam = regexp.MustCompile(`\{([^}:]+)(:[^}]*)?\}`)

// templatePath strips chi regexp constraints and returns the parameter names.
func templatePath(p string) (string, []string) {
	var names []string
	out := pathParam.ReplaceAllStringFunc(p, func(m string) string {
		name := pathParam.FindStringSubmatch(m)[1]
		names = append(names, name)
		return "{" + name + "}"
	})
	return out, names
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// operationID derives a unique id from the summary, the path and the method.
func operationID(rt api.Route, path string) string {
	summary := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(rt.Summary), "_"), "_")
	p := nonWord.ReplaceAllString(strings.ToLower(path), "_")
	if p == "_" {
		p = "_root"
	}
	if strings.HasSuffix(path, "/") && len(path) > 1 {
		p += "_"
	}
	return summary + p + "_" + strings.ToLower(rt.Method)
}

func (g *generator) operation(rt api.Route, path string, params []string) *Operation {
	op := &Operation{
		OperationID: operationID(rt, path),
		Summary:     rt.Summary,
		Description: rt.Description,
		Tags:        rt.Tags,
		Responses:   make(map[string]Response),
	}
	for _, name := range params {
		op.Parameters = append(op.Parameters, Parameter{Name: name, In: "path", Required: true, Schema: &Schema{Type: "string"}})
	}
	if rt.Query != nil {
		op.Parameters = append(op.Parameters, g.queryParameters(reflect.TypeOf(rt.Query))...)
	}
	switch {
	case rt.Request != nil:
		op.RequestBody = &RequestBody{Required: true, Content: map[string]MediaType{
			"application/json": {Schema: g.schema(reflect.TypeOf(rt.Request))},
		}}
	case rt.Form != nil:
		op.RequestBody = &RequestBody{Required: true, Content: map[string]MediaType{
			"application/x-www-form-urlencoded": {Schema: g.schema(reflect.TypeOf(rt.Form))},
		}}
	}

	success := Response{Description: statusText(rt.SuccessStatus())}
	switch {
	case rt.Produces != "":
		success.Content = map[string]MediaType{rt.Produces: {Schema: &Schema{Type: "string"}}}
	case rt.Response != nil:
		success.Content = map[string]MediaType{"application/json": {Schema: g.schema(reflect.TypeOf(rt.Response))}}
	}
	op.Responses[strconv.Itoa(rt.SuccessStatus())] = success

	errs := slices.Clone(rt.Errors)
	if rt.Auth {
		errs = append(errs, http.StatusUnauthorized)
		op.Security = []map[string][]string{{bearerScheme: {}}}
	}
	if rt.Request != nil || rt.Form != nil || rt.Query != nil || len(params) > 0 {
		errs = append(errs, http.StatusUnprocessableEntity)
	}
	for _, status := range errs {
		key := strconv.Itoa(status)
		if _, ok := op.Responses[key]; ok {
			continue
		}
		body := g.schema(reflect.TypeOf(api.ErrorResponse{}))
		if status == http.StatusUnprocessableEntity {
			body = g.schema(reflect.TypeOf(api.HTTPValidationError{}))
		}
		op.Responses[key] = Response{
			Description: statusText(status),
			Content:     map[string]MediaType{"application/json": {Schema: body}},
		}
	}
	return op
}

// queryParameters documents the fields of a query struct. The name is taken
// from the query tag, then the json tag.
func (g *generator) queryParameters(t reflect.Type) []Parameter {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var params []Parameter
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := tagName(f.Tag.Get("query"))
		if name == "" {
			name = tagName(f.Tag.Get("json"))
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		s := g.schema(ft)
		applyOptions(s, f.Tag.Get("openapi"))
		params = append(params, Parameter{
			Name:        name,
			In:          "query",
			Required:    hasOption(f.Tag.Get("openapi"), "required"),
			Description: f.Tag.Get("doc"),
			Schema:      s,
		})
	}
	return params
}
