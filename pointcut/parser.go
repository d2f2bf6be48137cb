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

package pointcut

import (
	"strings"

	"github.com/rulego/weaver/api/types"
)

// unsupportedDesignators are AspectJ designators recognised but not implemented.
var unsupportedDesignators = map[string]bool{
	"call":                 true,
	"get":                  true,
	"set":                  true,
	"handler":              true,
	"initialization":       true,
	"preinitialization":    true,
	"staticinitialization": true,
	"adviceexecution":      true,
	"withincode":           true,
	"cflow":                true,
	"cflowbelow":           true,
	"this":                 true,
	"target":               true,
	"bean":                 true,
	"@annotation":          true,
	"@within":              true,
	"@target":              true,
	"@args":                true,
}

type parser struct {
	src      string
	pos      int
	resolver Resolver
}

func (p *parser) parse() (node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.syntaxError(p.pos, "empty expression")
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.syntaxError(p.pos, "unexpected "+quoteChar(p.src[p.pos]))
	}
	return n, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "||") {
			return left, nil
		}
		p.pos += 2
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "&&") {
			return left, nil
		}
		p.pos += 2
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.syntaxError(p.pos, "unexpected end of expression")
	}
	switch p.src[p.pos] {
	case '!':
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{x: x}, nil
	case '(':
		p.pos++
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return x, nil
	}
	return p.parseDesignator()
}

func (p *parser) parseDesignator() (node, error) {
	start := p.pos
	name := p.readIdent()
	if name == "" {
		return nil, p.syntaxError(start, "expected pointcut designator, found "+quoteChar(p.src[p.pos]))
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	switch name {
	case "execution":
		n, err := p.parseExecution()
		if err != nil {
			return nil, err
		}
		return n, p.expect(')')
	case "within":
		p.skipSpace()
		wordPos := p.pos
		word := p.readWord()
		if word == "" {
			return nil, p.syntaxError(wordPos, "expected type pattern")
		}
		typ, err := p.parseNamePattern(word, wordPos)
		if err != nil {
			return nil, err
		}
		return &withinNode{typ: typ}, p.expect(')')
	case "args":
		params, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		return &argsNode{params: params}, p.expect(')')
	case "if":
		return p.parseIf()
	}
	if unsupportedDesignators[name] {
		return nil, p.unsupported(start, "designator "+name+" is not supported")
	}
	p.skipSpace()
	if p.peek() != ')' {
		return nil, p.unsupported(start, "unknown designator "+name)
	}
	p.pos++
	if p.resolver != nil {
		if target, ok := p.resolver(name); ok {
			return &refNode{name: name, target: target}, nil
		}
	}
	return nil, p.unsupported(start, "undefined pointcut "+name+"()")
}

// parseExecution parses the signature pattern: ret qname(params)
func (p *parser) parseExecution() (node, error) {
	p.skipSpace()
	var n executionNode
	if p.peek() == '(' {
		p.pos++
		list, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		n.ret = returnPattern{list: list}
	} else {
		retPos := p.pos
		word := p.readWord()
		if word == "" {
			return nil, p.syntaxError(retPos, "expected return type pattern")
		}
		if word == "*" {
			n.ret = returnPattern{any: true}
		} else {
			item, err := p.typeItem(word, retPos)
			if err != nil {
				return nil, err
			}
			n.ret = returnPattern{list: typeList{item}}
		}
	}
	p.skipSpace()
	qnamePos := p.pos
	qname := p.readWord()
	if qname == "" {
		return nil, p.syntaxError(qnamePos, "expected method name pattern")
	}
	segs, err := p.splitSegments(qname, qnamePos)
	if err != nil {
		return nil, err
	}
	last := segs[len(segs)-1]
	if last.dotdot {
		return nil, p.syntaxError(qnamePos+len(qname), "expected method name after '..'")
	}
	n.method = last.glob
	if len(segs) == 1 {
		n.typ = namePattern{any: true}
	} else {
		typ := segs[:len(segs)-1]
		// a lone '*' type matches every declaring type regardless of package
		n.typ = namePattern{any: len(typ) == 1 && typ[0].glob == "*", segments: typ}
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	if n.params, err = p.parseTypeList(); err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *parser) parseIf() (node, error) {
	start := p.pos
	depth := 1
	var quote byte
	for i := p.pos; i < len(p.src); i++ {
		c := p.src[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				source := strings.TrimSpace(p.src[start:i])
				if source == "" {
					return nil, p.syntaxError(start, "empty if() condition")
				}
				program, err := compileCondition(source)
				if err != nil {
					return nil, p.syntaxError(start, "invalid if() condition: "+err.Error())
				}
				p.pos = i + 1
				return &ifNode{source: source, program: program}, nil
			}
		}
	}
	return nil, p.syntaxError(start, "unterminated if() condition")
}

// parseTypeList parses a comma separated list of type patterns up to, not including, ')'.
func (p *parser) parseTypeList() (typeList, error) {
	p.skipSpace()
	if p.peek() == ')' {
		return typeList{}, nil
	}
	var list typeList
	for {
		p.skipSpace()
		itemPos := p.pos
		word := p.readWord()
		if word == "" {
			if p.eof() {
				return nil, p.syntaxError(itemPos, "unexpected end of expression")
			}
			return nil, p.syntaxError(itemPos, "expected type pattern, found "+quoteChar(p.src[itemPos]))
		}
		item, err := p.typeItem(word, itemPos)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
		p.skipSpace()
		if p.peek() != ',' {
			return list, nil
		}
		p.pos++
	}
}

func (p *parser) typeItem(word string, pos int) (typeItem, error) {
	switch word {
	case "..":
		return typeItem{kind: itemMany, text: word}, nil
	case "*":
		return typeItem{kind: itemOne, text: word}, nil
	}
	item := typeItem{kind: itemType, text: word}
	name := word
	if strings.HasPrefix(name, "...") {
		item.variadic = true
		name = name[3:]
		pos += 3
	}
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if part == "" {
			return typeItem{}, p.syntaxError(pos+offsetOfPart(parts, i), "empty segment in type "+word)
		}
	}
	item.name = parts
	return item, nil
}

func offsetOfPart(parts []string, i int) int {
	off := 0
	for k := 0; k < i; k++ {
		off += len(parts[k]) + 1
	}
	return off
}

func (p *parser) parseNamePattern(word string, pos int) (namePattern, error) {
	if word == "*" || word == ".." {
		return namePattern{any: true, segments: []segment{{glob: "*"}}}, nil
	}
	segs, err := p.splitSegments(word, pos)
	if err != nil {
		return namePattern{}, err
	}
	return namePattern{segments: segs}, nil
}

// splitSegments splits a dotted pattern such as com.example..*Service into segments.
func (p *parser) splitSegments(word string, pos int) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(word) {
		if strings.HasPrefix(word[i:], "..") {
			if i+2 < len(word) && word[i+2] == '.' {
				return nil, p.syntaxError(pos+i+2, "unexpected '.'")
			}
			segs = append(segs, segment{dotdot: true})
			i += 2
			continue
		}
		if word[i] == '.' {
			if i == 0 {
				return nil, p.syntaxError(pos, "unexpected '.'")
			}
			i++
			if i == len(word) {
				return nil, p.syntaxError(pos+i, "expected name after '.'")
			}
			continue
		}
		j := i
		for j < len(word) && word[j] != '.' {
			j++
		}
		segs = append(segs, segment{glob: word[i:j]})
		i = j
	}
	return segs, nil
}

func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isLetter(c) || c == '_' || c == '@' || (p.pos > start && isDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	name := p.src[start:p.pos]
	p.skipSpace()
	return name
}

// readWord reads a name pattern. Whitespace around '.' is allowed, so "com . example" reads as com.example.
func (p *parser) readWord() string {
	var b strings.Builder
	for {
		for p.pos < len(p.src) && isWordChar(p.src[p.pos]) {
			b.WriteByte(p.src[p.pos])
			p.pos++
		}
		if b.Len() == 0 {
			return ""
		}
		next := p.pos
		for next < len(p.src) && isSpace(p.src[next]) {
			next++
		}
		if next == p.pos || next >= len(p.src) {
			return b.String()
		}
		w := b.String()
		if w[len(w)-1] == '.' || p.src[next] == '.' {
			p.pos = next
			continue
		}
		return w
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.eof() {
		return p.syntaxError(p.pos, "expected "+quoteChar(c)+", found end of expression")
	}
	if p.src[p.pos] != c {
		return p.syntaxError(p.pos, "expected "+quoteChar(c)+", found "+quoteChar(p.src[p.pos]))
	}
	p.pos++
	return nil
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) syntaxError(pos int, msg string) error {
	return &Error{Kind: types.ErrPointcutSyntax, Expr: p.src, Pos: pos, Msg: msg}
}

func (p *parser) unsupported(pos int, msg string) error {
	return &Error{Kind: types.ErrPointcutUnsupportedDesignator, Expr: p.src, Pos: pos, Msg: msg}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '$' || c == '-' || c == '*' || c == '.' || c == '[' || c == ']'
}

func quoteChar(c byte) string {
	return "'" + string(c) + "'"
}
