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

// Config defines the configuration for a weaver.
type Config struct {
	// OnDebug is called on every state transition of an interception block.
	// - d: the descriptor of the current call
	// - state: the state entered
	// - err: the failure carried by the invocation, if any
	OnDebug func(d MethodDescriptor, state State, err error)
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger: DefaultLogger(),
	}
	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
