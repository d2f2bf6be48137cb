/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gen generates typed proxies for Go interfaces. A generated proxy implements the
// interface by forwarding every call to engine.Proxy.Invoke, so that callers keep a typed
// API while each call runs through its interception chain.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

// EnginePackage is the import path of the weaver engine.
const EnginePackage = "github.com/rulego/weaver/engine"

// ErrInterfaceNotFound is returned when a requested interface is not declared in the source.
var ErrInterfaceNotFound = errors.New("interface not found")

// Config configures Generate.
type Config struct {
	// Filename is used in error positions
	Filename string
	// Interfaces are the names of the interfaces to generate proxies for, all if empty
	Interfaces []string
}

type param struct {
	Name     string
	Type     string
	Variadic bool
}

type result struct {
	Name string
	Type string
}

type method struct {
	Name    string
	Params  []param
	Results []result
	// ErrorResult is set when the last result is an error
	ErrorResult bool
}

type iface struct {
	Name    string
	Methods []method
}

type file struct {
	Package    string
	Imports    []string
	Interfaces []iface
}

// Generate parses Go source and returns the formatted source of the typed proxies of its interfaces.
func Generate(src []byte, config Config) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, config.Filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]*ast.InterfaceType)
	var order []string
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if it, ok := ts.Type.(*ast.InterfaceType); ok && ts.Name.IsExported() && ts.TypeParams == nil {
				declared[ts.Name.Name] = it
				order = append(order, ts.Name.Name)
			}
		}
	}
	names := config.Interfaces
	if len(names) == 0 {
		names = order
	}
	out := file{Package: f.Name.Name}
	used := make(map[string]bool)
	for _, name := range names {
		it, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInterfaceNotFound, name)
		}
		item, err := buildInterface(fset, name, it, used)
		if err != nil {
			return nil, err
		}
		out.Interfaces = append(out.Interfaces, item)
	}
	out.Imports = imports(f, used)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, out); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

func buildInterface(fset *token.FileSet, name string, it *ast.InterfaceType, used map[string]bool) (iface, error) {
	item := iface{Name: name}
	for _, field := range it.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			return item, fmt.Errorf("%s: %s: embedded interfaces and type constraints are not supported",
				fset.Position(field.Pos()), name)
		}
		collectPackages(ft, used)
		m := method{Name: field.Names[0].Name}
		taken := make(map[string]bool)
		for _, p := range ft.Params.List {
			typ := types.ExprString(p.Type)
			variadic := false
			if ellipsis, ok := p.Type.(*ast.Ellipsis); ok {
				typ = types.ExprString(ellipsis.Elt)
				variadic = true
			}
			for _, n := range fieldNames(p) {
				m.Params = append(m.Params, param{Name: n, Type: typ, Variadic: variadic})
			}
		}
		for i := range m.Params {
			m.Params[i].Name = uniqueName(m.Params[i].Name, "a"+strconv.Itoa(i), taken)
		}
		if ft.Results != nil {
			for _, r := range ft.Results.List {
				typ := types.ExprString(r.Type)
				for range fieldNames(r) {
					m.Results = append(m.Results, result{Type: typ})
				}
			}
		}
		if n := len(m.Results); n > 0 && m.Results[n-1].Type == "error" {
			m.ErrorResult = true
			m.Results = m.Results[:n-1]
		}
		for i := range m.Results {
			m.Results[i].Name = uniqueName("", "r"+strconv.Itoa(i), taken)
		}
		item.Methods = append(item.Methods, m)
	}
	return item, nil
}

// fieldNames returns one entry per declared name, a single empty name for an unnamed field.
func fieldNames(field *ast.Field) []string {
	if len(field.Names) == 0 {
		return []string{""}
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return names
}

// uniqueName keeps name unless it is blank or clashes with the generated identifiers.
func uniqueName(name, fallback string, taken map[string]bool) string {
	if name == "" || name == "_" || reserved[name] || taken[name] {
		name = fallback
		for taken[name] {
			name += "_"
		}
	}
	taken[name] = true
	return name
}

var reserved = map[string]bool{"p": true, "args": true, "result": true, "values": true, "err": true, "v": true, "ok": true}

func collectPackages(ft *ast.FuncType, used map[string]bool) {
	ast.Inspect(ft, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})
}

// imports returns the import specs of f referenced by the method types, plus the engine.
func imports(f *ast.File, used map[string]bool) []string {
	list := []string{strconv.Quote(EnginePackage)}
	for _, spec := range f.Imports {
		path, _ := strconv.Unquote(spec.Path.Value)
		name := path[strings.LastIndex(path, "/")+1:]
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if !used[name] || path == EnginePackage {
			continue
		}
		if spec.Name != nil {
			list = append(list, spec.Name.Name+" "+spec.Path.Value)
		} else {
			list = append(list, spec.Path.Value)
		}
	}
	sort.Strings(list)
	return list
}

var fileTemplate = template.Must(template.New("proxy").Funcs(template.FuncMap{
	"fixed": func(params []param) []param {
		if n := len(params); n > 0 && params[n-1].Variadic {
			return params[:n-1]
		}
		return params
	},
	"variadic": func(params []param) *param {
		if n := len(params); n > 0 && params[n-1].Variadic {
			return &params[n-1]
		}
		return nil
	},
}).Parse(`// Code generated by weaver gen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{range $it := .Interfaces}}
// {{$it.Name}}Proxy implements {{$it.Name}} by invoking the methods through a weaver proxy.
type {{$it.Name}}Proxy struct {
	proxy *engine.Proxy
}

var _ {{$it.Name}} = (*{{$it.Name}}Proxy)(nil)

// New{{$it.Name}}Proxy wraps proxy, whose target must implement {{$it.Name}}.
func New{{$it.Name}}Proxy(proxy *engine.Proxy) *{{$it.Name}}Proxy {
	return &{{$it.Name}}Proxy{proxy: proxy}
}

// Proxy returns the underlying weaver proxy.
func (p *{{$it.Name}}Proxy) Proxy() *engine.Proxy {
	return p.proxy
}
{{range $m := $it.Methods}}
func (p *{{$it.Name}}Proxy) {{$m.Name}}(
	{{- range $i, $p := $m.Params}}{{if $i}}, {{end}}{{$p.Name}} {{if $p.Variadic}}...{{end}}{{$p.Type}}{{end -}}
) {{if or (gt (len $m.Results) 1) (and $m.ErrorResult (gt (len $m.Results) 0))}}({{end}}
	{{- range $i, $r := $m.Results}}{{if $i}}, {{end}}{{$r.Type}}{{end}}
	{{- if $m.ErrorResult}}{{if $m.Results}}, {{end}}error{{end}}
	{{- if or (gt (len $m.Results) 1) (and $m.ErrorResult (gt (len $m.Results) 0))}}){{end}} {
	{{- with variadic $m.Params}}
	args := []interface{}{ {{- range $i, $p := fixed $m.Params}}{{if $i}}, {{end}}{{$p.Name}}{{end -}} }
	for _, v := range {{.Name}} {
		args = append(args, v)
	}
	{{if $m.Results}}result{{else}}_{{end}}, err := p.proxy.Invoke("{{$m.Name}}", args...)
	{{- else}}
	{{if $m.Results}}result{{else}}_{{end}}, err := p.proxy.Invoke("{{$m.Name}}"{{range $m.Params}}, {{.Name}}{{end}})
	{{- end}}
	{{- if not $m.ErrorResult}}
	if err != nil {
		panic(err)
	}
	{{- end}}
	{{- if eq (len $m.Results) 1}}
	{{with index $m.Results 0}}{{.Name}}, _ := result.({{.Type}}){{end}}
	{{- else if gt (len $m.Results) 1}}
	values, _ := result.([]interface{})
	{{- range $i, $r := $m.Results}}
	var {{$r.Name}} {{$r.Type}}
	if len(values) > {{$i}} {
		{{$r.Name}}, _ = values[{{$i}}].({{$r.Type}})
	}
	{{- end}}
	{{- end}}
	{{- if or $m.Results $m.ErrorResult}}
	return {{range $i, $r := $m.Results}}{{if $i}}, {{end}}{{$r.Name}}{{end}}{{if $m.ErrorResult}}{{if $m.Results}}, {{end}}err{{end}}
	{{- end}}
}
{{end}}
{{- end}}
`))
