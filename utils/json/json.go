/*
 * Copyright 2023 The RuleGo Authors.
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

// Package json wraps encoding/json for the HTTP payloads of the weaver.
package json

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// RawMessage is a raw encoded JSON value.
type RawMessage = json.RawMessage

// Marshal marshals the struct to json data without escaping &, < and >.
func Marshal(v interface{}) ([]byte, error) {
	return Marshal2(v, false)
}

// Marshal2 marshals the struct to json data, escapeHTML escapes &, < and > to \u0026, \u003c and \u003e.
func Marshal2(v interface{}, escapeHTML bool) ([]byte, error) {
	var byteBuf bytes.Buffer
	encoder := json.NewEncoder(&byteBuf)
	encoder.SetEscapeHTML(escapeHTML)
	err := encoder.Encode(v)
	if err == nil && byteBuf.Len() > 0 {
		return byteBuf.Bytes()[:byteBuf.Len()-1], err
	} else {
		return byteBuf.Bytes(), err
	}
}

// Unmarshal json data to struct
func Unmarshal(b []byte, m interface{}) error {
	return json.Unmarshal(b, m)
}

// UnmarshalArray splits a json array into its raw elements. Empty data is an empty array.
func UnmarshalArray(b []byte) ([]RawMessage, error) {
	var items []RawMessage
	if len(bytes.TrimSpace(b)) == 0 {
		return items, nil
	}
	err := json.Unmarshal(b, &items)
	return items, err
}

// UnmarshalAs decodes json data into a new value of type t and returns it.
func UnmarshalAs(b []byte, t reflect.Type) (interface{}, error) {
	v := reflect.New(t)
	if err := json.Unmarshal(b, v.Interface()); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}
