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
)

// segment is one element of a dotted name pattern: either a glob over a single segment or "..".
type segment struct {
	dotdot bool
	glob   string
}

// namePattern matches dotted names such as com.example.service.EmployeeService.
type namePattern struct {
	// any is set when the pattern does not constrain the name at all
	any      bool
	segments []segment
}

func (n namePattern) match(name string) bool {
	if n.any {
		return true
	}
	return matchSegments(n.segments, strings.Split(name, "."))
}

func (n namePattern) write(b *strings.Builder) {
	if len(n.segments) == 0 {
		b.WriteByte('*')
		return
	}
	writeSegments(b, n.segments)
}

func matchSegments(pats []segment, parts []string) bool {
	if len(pats) == 0 {
		return len(parts) == 0
	}
	if pats[0].dotdot {
		for k := 0; k <= len(parts); k++ {
			if matchSegments(pats[1:], parts[k:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	return glob(pats[0].glob, parts[0]) && matchSegments(pats[1:], parts[1:])
}

func writeSegments(b *strings.Builder, segs []segment) {
	for i, seg := range segs {
		if seg.dotdot {
			b.WriteString("..")
			continue
		}
		if i > 0 && !segs[i-1].dotdot {
			b.WriteByte('.')
		}
		b.WriteString(seg.glob)
	}
}

// glob matches s against pattern where '*' matches any run of characters.
func glob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	px, sx := 0, 0
	// backtrack position of the last '*'
	star, mark := -1, 0
	for sx < len(s) {
		switch {
		case px < len(pattern) && pattern[px] == '*':
			star = px
			mark = sx
			px++
		case px < len(pattern) && pattern[px] == s[sx]:
			px++
			sx++
		case star >= 0:
			px = star + 1
			mark++
			sx = mark
		default:
			return false
		}
	}
	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}

type itemKind int

const (
	itemType itemKind = iota
	// itemOne is '*', exactly one type
	itemOne
	// itemMany is '..', zero or more types
	itemMany
)

type typeItem struct {
	kind itemKind
	// variadic is set for ...T parameter patterns
	variadic bool
	// name is the type pattern of an itemType, split on '.'
	name []string
	text string
}

func (t typeItem) matchType(typeName string) bool {
	if t.kind == itemOne {
		return true
	}
	if t.variadic {
		if !strings.HasPrefix(typeName, "...") {
			return false
		}
		typeName = typeName[3:]
	}
	parts := strings.Split(typeName, ".")
	if len(parts) != len(t.name) {
		return false
	}
	for i := range parts {
		if !glob(t.name[i], parts[i]) {
			return false
		}
	}
	return true
}

// typeList matches a list of type names, used for parameters and results.
type typeList []typeItem

func (l typeList) match(typeNames []string) bool {
	if len(l) == 0 {
		return len(typeNames) == 0
	}
	if l[0].kind == itemMany {
		for k := 0; k <= len(typeNames); k++ {
			if l[1:].match(typeNames[k:]) {
				return true
			}
		}
		return false
	}
	if len(typeNames) == 0 {
		return false
	}
	return l[0].matchType(typeNames[0]) && l[1:].match(typeNames[1:])
}

func (l typeList) write(b *strings.Builder) {
	for i, item := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.text)
	}
}

// returnPattern matches the result list of a method.
type returnPattern struct {
	// any is the '*' return pattern, it accepts any result list including none
	any  bool
	list typeList
}

func (r returnPattern) match(results []string) bool {
	if r.any {
		return true
	}
	return r.list.match(results)
}

func (r returnPattern) write(b *strings.Builder) {
	if r.any {
		b.WriteByte('*')
		return
	}
	if len(r.list) == 1 && r.list[0].kind == itemType {
		b.WriteString(r.list[0].text)
		return
	}
	b.WriteByte('(')
	r.list.write(b)
	b.WriteByte(')')
}
