package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Check verifies the document is well formed: every path has operations with
// responses, operation ids are unique, path parameters are declared, security
// requirements name a defined scheme, every $ref resolves, and every
// component schema compiles as JSON Schema.
// It returns all problems found, joined.
func Check(d Document) error {
	var errs []error
	problem := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if d.OpenAPI == "" {
		problem("missing openapi version")
	}
	if d.Info.Title == "" {
		problem("missing info.title")
	}
	if d.Info.Version == "" {
		problem("missing info.version")
	}

	ids := make(map[string]string)
	for _, path := range slices.Sorted(maps.Keys(d.Paths)) {
		item := d.Paths[path]
		if !strings.HasPrefix(path, "/") {
			problem("path %q does not start with /", path)
		}
		if len(item) == 0 {
			problem("path %q has no operation", path)
		}
		_, names := templatePath(path)
		for _, method := range slices.Sorted(maps.Keys(item)) {
			op := item[method]
			where := strings.ToUpper(method) + " " + path
			if !slices.Contains(methods, method) {
				problem("%s: unknown method", where)
			}
			if op == nil {
				problem("%s: empty operation", where)
				continue
			}
			if len(op.Responses) == 0 {
				problem("%s: no responses", where)
			}
			if op.OperationID != "" {
				if other, ok := ids[op.OperationID]; ok {
					problem("%s: operationId %q already used by %s", where, op.OperationID, other)
				}
				ids[op.OperationID] = where
			}
			for _, name := range names {
				if !slices.ContainsFunc(op.Parameters, func(p Parameter) bool { return p.In == "path" && p.Name == name }) {
					problem("%s: path parameter %q is not declared", where, name)
				}
			}
			for _, req := range op.Security {
				for scheme := range req {
					if _, ok := d.Components.SecuritySchemes[scheme]; !ok {
						problem("%s: undefined security scheme %q", where, scheme)
					}
				}
			}
		}
	}

	refs, err := checkRefs(d)
	if err != nil {
		problem("%v", err)
	}
	errs = append(errs, refs...)
	errs = append(errs, checkSchemas(d)...)
	return errors.Join(errs...)
}

// checkRefs resolves every $ref of the document with a JSONPath query over its
// JSON form.
func checkRefs(d Document) ([]error, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	var errs []error
	seen := make(map[string]bool)
	walkRefs(root, "$", func(at, ref string) {
		if seen[ref] {
			return
		}
		seen[ref] = true
		path, err := refPath(ref)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", at, err))
			return
		}
		if _, err := jsonpath.Get(path, root); err != nil {
			errs = append(errs, fmt.Errorf("%s: unresolved reference %q", at, ref))
		}
	})
	return errs, nil
}

// refPath converts a local JSON pointer to a JSONPath expression.
func refPath(ref string) (string, error) {
	pointer, ok := strings.CutPrefix(ref, "#/")
	if !ok {
		return "", fmt.Errorf("unsupported reference %q", ref)
	}
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(pointer, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		fmt.Fprintf(&b, "[%q]", seg)
	}
	return b.String(), nil
}

func walkRefs(v any, at string, visit func(at, ref string)) {
	switch v := v.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			visit(at, ref)
		}
		for _, k := range slices.Sorted(maps.Keys(v)) {
			walkRefs(v[k], at+"."+k, visit)
		}
	case []any:
		for i, e := range v {
			walkRefs(e, fmt.Sprintf("%s[%d]", at, i), visit)
		}
	}
}
