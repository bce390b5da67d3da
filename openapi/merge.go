package openapi

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Mount places a service document under a path prefix.
type Mount struct {
	Prefix   string
	Document Document
}

// Merge combines service documents into one platform document, prefixing
// each service paths with its mount point. Tags are deduplicated by name, the
// first description wins. Components sharing a name must be identical.
func Merge(info Info, mounts ...Mount) (Document, error) {
	merged := Document{
		OpenAPI: Version,
		Info:    info,
		Paths:   make(map[string]PathItem),
	}
	tags := make(map[string]bool)
	for _, m := range mounts {
		prefix := strings.TrimSuffix(m.Prefix, "/")
		for _, path := range slices.Sorted(maps.Keys(m.Document.Paths)) {
			full := prefix + path
			if prefix != "" && path == "/" {
				full = prefix
			}
			if _, ok := merged.Paths[full]; ok {
				return Document{}, fmt.Errorf("path %q is served by two services", full)
			}
			item := make(PathItem, len(m.Document.Paths[path]))
			for method, op := range m.Document.Paths[path] {
				op := *op
				if prefix != "" {
					op.OperationID = strings.Trim(strings.ReplaceAll(prefix, "/", "_"), "_") + "_" + op.OperationID
				}
				item[method] = &op
			}
			merged.Paths[full] = item
		}
		for _, t := range m.Document.Tags {
			if !tags[t.Name] {
				tags[t.Name] = true
				merged.Tags = append(merged.Tags, t)
			}
		}
		for name, s := range m.Document.Components.Schemas {
			if merged.Components.Schemas == nil {
				merged.Components.Schemas = make(map[string]*Schema)
			}
			if prev, ok := merged.Components.Schemas[name]; ok && !reflect.DeepEqual(prev, s) {
				return Document{}, fmt.Errorf("schema %q differs between services", name)
			}
			merged.Components.Schemas[name] = s
		}
		for name, s := range m.Document.Components.SecuritySchemes {
			if merged.Components.SecuritySchemes == nil {
				merged.Components.SecuritySchemes = make(map[string]SecurityScheme)
			}
			merged.Components.SecuritySchemes[name] = s
		}
	}
	return merged, nil
}
