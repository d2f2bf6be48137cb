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

// State is a step of the per-invocation state machine:
//
//	NEW → BEFORE_FIRED → TARGET_RUNNING → {RETURNED | THREW}
//	RETURNED → AFTER_RETURNING_FIRED → AFTER_FINALLY_FIRED → DONE
//	THREW    → AFTER_THROWING_FIRED  → AFTER_FINALLY_FIRED → PROPAGATED
type State int

const (
	StateNew State = iota
	StateBeforeFired
	StateTargetRunning
	StateReturned
	StateThrew
	StateAfterReturningFired
	StateAfterThrowingFired
	StateAfterFinallyFired
	StateDone
	StatePropagated
)

var stateNames = [...]string{
	"NEW",
	"BEFORE_FIRED",
	"TARGET_RUNNING",
	"RETURNED",
	"THREW",
	"AFTER_RETURNING_FIRED",
	"AFTER_THROWING_FIRED",
	"AFTER_FINALLY_FIRED",
	"DONE",
	"PROPAGATED",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Terminal reports whether the invocation has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StatePropagated
}
