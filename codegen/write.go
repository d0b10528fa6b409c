package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/semantic"
)

type ruleConst struct {
	Name  string
	Index int
}

type TemplateData struct {
	CommandLine string
	PackageName string
	StartRule   string
	VarName     string
	Rules       []ruleConst
	Program     string
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by "lmgen{{if .CommandLine}} {{.CommandLine}}{{end}}"; DO NOT EDIT.

package {{.PackageName}}

import (
	"io"
	"strings"

	"github.com/arr-ai/lmgen/runtime"
)

// Nonterminal indexes into {{.VarName}}.Nonterms.
const (
{{- range .Rules}}
	{{.Name}} = {{.Index}}
{{- end}}
)

// {{.VarName}} holds the tables of the grammar, starting at {{.StartRule}}.
var {{.VarName}} = {{.Program}}

// Parse reads all of r and parses it from {{.StartRule}}.
func Parse(filename string, r io.Reader, rep runtime.Reporter, opts ...runtime.Option) (*runtime.Node, error) {
	return runtime.Parse(&{{.VarName}}, filename, r, rep, opts...)
}

func ParseString(filename, src string, rep runtime.Reporter, opts ...runtime.Option) (*runtime.Node, error) {
	return Parse(filename, strings.NewReader(src), rep, opts...)
}
`))

// Write renders data as unformatted Go source.
func Write(w io.Writer, data TemplateData) error {
	return fileTemplate.Execute(w, data)
}

// GoTypeName turns a grammar name into an exported Go identifier.
func GoTypeName(name string) string {
	return strcase.ToCamel(name)
}

func ruleConsts(p *runtime.Program) []ruleConst {
	used := map[string]bool{}
	out := make([]ruleConst, 0, len(p.Nonterms))
	for i, nt := range p.Nonterms {
		name := "Rule" + GoTypeName(nt.Name)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("Rule%s%d", GoTypeName(nt.Name), n)
		}
		used[name] = true
		out = append(out, ruleConst{Name: name, Index: i})
	}
	return out
}

// GenerateOutput writes the Go source of the recognizer for m to w. The file
// is rendered and formatted in memory and written with a single call, so w
// receives either the whole file or nothing.
func GenerateOutput(w io.Writer, m *semantic.Model, opts Options) error {
	p := Lower(m, opts)
	node := programNode(p)
	data := TemplateData{
		CommandLine: opts.CommandLine,
		PackageName: opts.pkg(),
		StartRule:   m.Start,
		VarName:     "Grammar",
		Rules:       ruleConsts(p),
		Program:     node.String(),
	}
	var buf bytes.Buffer
	if err := Write(&buf, data); err != nil {
		return err
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated source: %w", err)
	}
	_, err = w.Write(out)
	return err
}
