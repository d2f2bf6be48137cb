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

package types

import (
	"fmt"
	"strings"
)

// AdviceKind is the phase of a method call at which an advice fires.
type AdviceKind int

const (
	// Before fires immediately before the target method.
	Before AdviceKind = iota
	// AfterReturning fires after the target method returns normally.
	AfterReturning
	// AfterThrowing fires after the target method returns an error.
	AfterThrowing
	// After fires after the target method completes, whatever the outcome.
	After
	// Around surrounds the target method and decides whether to proceed.
	Around
)

// AdviceKinds lists every advice kind in declaration order.
var AdviceKinds = []AdviceKind{Before, AfterReturning, AfterThrowing, After, Around}

var adviceKindNames = map[AdviceKind]string{
	Before:         "BEFORE",
	AfterReturning: "AFTER_RETURNING",
	AfterThrowing:  "AFTER_THROWING",
	After:          "AFTER_FINALLY",
	Around:         "AROUND",
}

func (k AdviceKind) String() string {
	if name, ok := adviceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AdviceKind(%d)", int(k))
}

// ParseAdviceKind accepts both the upper-case names (AFTER_RETURNING) and the camel-case
// names used in scripts and configuration (afterReturning). "after" and "AFTER" map to After.
func ParseAdviceKind(s string) (AdviceKind, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch key {
	case "BEFORE":
		return Before, nil
	case "AFTERRETURNING":
		return AfterReturning, nil
	case "AFTERTHROWING":
		return AfterThrowing, nil
	case "AFTER", "AFTERFINALLY":
		return After, nil
	case "AROUND":
		return Around, nil
	}
	return 0, fmt.Errorf("unknown advice kind %q", s)
}
