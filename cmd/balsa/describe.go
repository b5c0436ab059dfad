package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"balsa/internal/model"
	"balsa/internal/source"
)

// symbolInfo is the printable form of a model.Symbol shared by `symbol` and
// `inspect`.
type symbolInfo struct {
	Name        string           `json:"name" yaml:"name"`
	Kind        string           `json:"kind" yaml:"kind"`
	Unit        string           `json:"unit" yaml:"unit"`
	Location    string           `json:"location,omitempty" yaml:"location,omitempty"`
	Qualifiers  []string         `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty"`
	Type        *typeInfo        `json:"type,omitempty" yaml:"type,omitempty"`
	Value       string           `json:"value,omitempty" yaml:"value,omitempty"`
	Doc         *docInfo         `json:"doc,omitempty" yaml:"doc,omitempty"`
	Annotations []annotationInfo `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Points      []string         `json:"points,omitempty" yaml:"points,omitempty"`
	Imports     string           `json:"imports,omitempty" yaml:"imports,omitempty"`
}

type typeInfo struct {
	Kind      string      `json:"kind" yaml:"kind"`
	Label     string      `json:"label" yaml:"label"`
	Signature string      `json:"signature,omitempty" yaml:"signature,omitempty"`
	Effective string      `json:"effective,omitempty" yaml:"effective,omitempty"`
	Members   []string    `json:"members,omitempty" yaml:"members,omitempty"`
	Fields    []fieldInfo `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type fieldInfo struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

type docInfo struct {
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Return      string            `json:"return,omitempty" yaml:"return,omitempty"`
}

type annotationInfo struct {
	Name  string `json:"name" yaml:"name"`
	Const bool   `json:"const" yaml:"const"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func describeSymbol(sym model.Symbol, fs *source.FileSet) symbolInfo {
	info := symbolInfo{
		Name:       sym.Name(),
		Kind:       sym.Kind().String(),
		Unit:       sym.Unit(),
		Qualifiers: sym.Qualifiers().Strings(),
		Points:     sym.AnnotationPoints(),
		Imports:    sym.ImportedUnit(),
	}
	if sp := sym.Span(); fs != nil && !sp.IsZero() {
		if f := fs.Get(sp.File); f != nil {
			start, _ := fs.Resolve(sp)
			info.Location = fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
		}
	}
	if td := sym.TypeDescriptor(); td.IsValid() {
		info.Type = describeType(td)
	}
	if v, ok := sym.ResolvedValue(); ok {
		info.Value = v
	}
	if doc := sym.Documentation(); doc.HasDescription || len(doc.Params) > 0 || doc.HasReturn {
		d := &docInfo{Description: doc.Description, Return: doc.Return}
		for _, p := range doc.Params {
			if d.Params == nil {
				d.Params = make(map[string]string, len(doc.Params))
			}
			d.Params[p.Name] = p.Description
		}
		info.Doc = d
	}
	for _, att := range sym.AnnotAttachments() {
		a := annotationInfo{Name: att.Name(), Const: att.IsConstAnnotation()}
		if v, ok := att.AttachmentValue(); ok {
			a.Value = v.String()
		}
		info.Annotations = append(info.Annotations, a)
	}
	return info
}

func describeType(td model.TypeDescriptor) *typeInfo {
	info := &typeInfo{
		Kind:  td.TypeKind().String(),
		Label: td.Label(),
	}
	if sig := td.Signature(); sig != info.Label {
		info.Signature = sig
	}
	if eff := td.EffectiveTypeDescriptor(); eff.IsValid() && eff.ID() != td.ID() {
		info.Effective = eff.Signature()
	}
	for _, m := range td.MemberTypeDescriptors() {
		info.Members = append(info.Members, m.Label())
	}
	for _, f := range td.FieldDescriptors() {
		info.Fields = append(info.Fields, fieldInfo{Name: f.Name, Type: f.Type.Label(), Optional: f.Optional})
	}
	return info
}

// printSymbolPretty writes one "key: value" line per known property.
func printSymbolPretty(out io.Writer, info symbolInfo) {
	fmt.Fprintf(out, "%s %s\n", headingColor.Sprint(info.Kind), info.Name)
	line := func(key, value string) {
		if value != "" {
			fmt.Fprintf(out, "  %-12s %s\n", key+":", value)
		}
	}
	line("unit", info.Unit)
	line("declared", info.Location)
	line("qualifiers", strings.Join(info.Qualifiers, " "))
	if info.Type != nil {
		line("type", info.Type.Label)
		line("signature", info.Type.Signature)
		line("effective", info.Type.Effective)
	}
	line("value", info.Value)
	line("imports", info.Imports)
	line("points", strings.Join(info.Points, ", "))
	if info.Doc != nil {
		line("doc", info.Doc.Description)
		for _, name := range slices.Sorted(maps.Keys(info.Doc.Params)) {
			line("param "+name, info.Doc.Params[name])
		}
		line("returns", info.Doc.Return)
	}
	for _, a := range info.Annotations {
		text := "@" + a.Name
		if a.Value != "" {
			text += " " + a.Value
		}
		line("annotation", text)
	}
}
