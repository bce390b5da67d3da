package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/sri-akshat/wealth-manager/openapi"
)

// documents generates the document of every service and of the whole
// platform, keyed by service name.
func documents() (map[string]openapi.Document, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// documents only need the route declarations, no database.
	a := &app{cfg: cfg, logger: zap.NewNop()}
	svcs, err := a.services()
	if err != nil {
		return nil, err
	}
	docs := make(map[string]openapi.Document, len(svcs)+1)
	for _, svc := range svcs {
		docs[svc.Name] = openapi.Generate(svc)
	}
	platform := a.platform(svcs)
	merged, err := platform.Document()
	if err != nil {
		return nil, fmt.Errorf("cannot merge service documents: %w", err)
	}
	docs[platform.API().Name] = merged
	return docs, nil
}

type openapiCmd struct {
	dir    string
	format string
}

func (*openapiCmd) Name() string     { return "openapi" }
func (*openapiCmd) Synopsis() string { return "write the OpenAPI documents of the services" }
func (*openapiCmd) Usage() string {
	return `wm openapi [-dir <dir>] [-format json|yaml]

  Writes one OpenAPI 3 document per service, and the merged document of the
  platform (wealth-manager.json), into dir.
`
}

func (c *openapiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "openapi", "Directory to write the documents to.")
	f.StringVar(&c.format, "format", "json", "Document format: json or yaml.")
}

func (c *openapiCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "yaml" {
		return fail("unknown format %q", c.format)
	}
	docs, err := documents()
	if err != nil {
		return fail("%v", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fail("%v", err)
	}
	for name, doc := range docs {
		data, err := doc.JSON()
		if c.format == "yaml" {
			data, err = doc.YAML()
		}
		if err != nil {
			return fail("cannot encode %s document: %v", name, err)
		}
		path := filepath.Join(c.dir, name+"."+c.format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fail("%v", err)
		}
		fmt.Printf("OpenAPI document of %s written to %s\n", name, path)
	}
	return subcommands.ExitSuccess
}

type checkOpenAPICmd struct{}

func (*checkOpenAPICmd) Name() string     { return "check-openapi" }
func (*checkOpenAPICmd) Synopsis() string { return "check OpenAPI documents" }
func (*checkOpenAPICmd) Usage() string {
	return `wm check-openapi [<file>...]

  Checks the given JSON or YAML OpenAPI documents: paths, operation ids,
  security schemes and references. Without files, checks the documents
  generated from the services.
`
}

func (*checkOpenAPICmd) SetFlags(*flag.FlagSet) {}

func (*checkOpenAPICmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	docs := make(map[string]openapi.Document)
	if f.NArg() == 0 {
		generated, err := documents()
		if err != nil {
			return fail("%v", err)
		}
		docs = generated
	}
	for _, path := range f.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fail("%v", err)
		}
		doc, err := openapi.Parse(data)
		if err != nil {
			return fail("%s: %v", path, err)
		}
		docs[path] = doc
	}

	status := subcommands.ExitSuccess
	for name, doc := range docs {
		if err := openapi.Check(doc); err != nil {
			fmt.Fprintf(os.Stderr, "%s: invalid document:\n%v\n", name, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: ok (%d paths)\n", name, len(doc.Paths))
	}
	return status
}
