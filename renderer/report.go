// Package renderer renders portfolios as markdown, and markdown as HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/sri-akshat/wealth-manager"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

// Report is the data of a portfolio report.
type Report struct {
	Email       string
	On          time.Time
	Summary     wealth.Summary
	Investments []wealth.PortfolioInvestment
}

// NewReport builds the report of investments on the given day.
func NewReport(email string, on time.Time, investments []wealth.Investment) *Report {
	a := wealth.Analyze(investments)
	return &Report{Email: email, On: on, Summary: a.Summary, Investments: a.Investments}
}

// RenderReport renders the report to a markdown string.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":       "report_title.md",
		"report_summary":     "report_summary.md",
		"report_allocation":  "report_allocation.md",
		"report_investments": "report_investments.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

var funcs = template.FuncMap{
	"cell":  cell,
	"date":  func(t time.Time) string { return t.Format(time.DateOnly) },
	"units": func(q wealth.Quantity) string { return q.Decimal().StringFixed(4) },
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// cell escapes a value for a markdown table cell.
func cell(v any) string { return cellReplacer.Replace(fmt.Sprint(v)) }

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown into a standalone HTML page.
func HTML(title, source string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("cannot convert markdown: %w", err)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	template.HTMLEscape(&b, []byte(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
