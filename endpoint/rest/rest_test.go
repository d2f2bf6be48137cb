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

package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type greeter struct{}

func (g *greeter) Hello(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	return "hello " + name, nil
}

func (g *greeter) Sum(base int, values ...int) int {
	for _, v := range values {
		base += v
	}
	return base
}

func (g *greeter) Move(p point, dx int) point {
	return point{X: p.X + dx, Y: p.Y}
}

type trace struct {
	events []string
	sync.Mutex
}

func (tr *trace) add(event string) {
	tr.Lock()
	defer tr.Unlock()
	tr.events = append(tr.events, event)
}

func (tr *trace) list() []string {
	tr.Lock()
	defer tr.Unlock()
	return append([]string(nil), tr.events...)
}

func newTestServer(t *testing.T) (*httptest.Server, *trace) {
	t.Helper()
	w, err := engine.New(engine.WithConfig(engine.NewConfig(types.WithLogger(types.DiscardLogger()))))
	require.NoError(t, err)
	tr := &trace{}
	_, err = w.Before("execution(* com.example.Greeter.*(..))", 0, func(jp types.JoinPoint) error {
		tr.add("before " + jp.MethodName())
		return nil
	})
	require.NoError(t, err)
	_, err = w.RegisterTarget(&greeter{}, engine.WithTypeName("com.example.Greeter"))
	require.NoError(t, err)

	r := New(Config{}, w, types.DiscardLogger())
	assert.Equal(t, DefaultAddr, r.Config.Addr)
	server := httptest.NewServer(r.Router())
	t.Cleanup(server.Close)
	return server, tr
}

func post(t *testing.T, url, body string) (int, InvokeResponse) {
	t.Helper()
	resp, err := http.Post(url, JsonContextType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out InvokeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestListTargets(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/v1/targets")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, JsonContextType, resp.Header.Get(ContentTypeKey))

	var list []TargetInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "com.example.Greeter", list[0].Name)
	require.Len(t, list[0].Methods, 3)
	assert.Equal(t, "Hello", list[0].Methods[0].Name)
	assert.Equal(t, "(string, error) com.example.Greeter.Hello(string)", list[0].Methods[0].Signature)
	assert.Equal(t, []string{"int", "...int"}, list[0].Methods[2].Params)
}

func TestGetTarget(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/v1/targets/com.example.Greeter")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/api/v1/targets/unknown")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestInvoke(t *testing.T) {
	server, tr := newTestServer(t)
	base := server.URL + "/api/v1/targets/com.example.Greeter/"

	status, out := post(t, base+"Hello", `["weaver"]`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello weaver", out.Result)
	assert.Equal(t, []string{"before Hello"}, tr.list())

	status, out = post(t, base+"Sum", `[1, 2, 3]`)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 6, out.Result)

	status, out = post(t, base+"Move", `[{"x": 1, "y": 2}, 3]`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"x": float64(4), "y": float64(2)}, out.Result)
}

func TestInvokeErrors(t *testing.T) {
	server, tr := newTestServer(t)
	base := server.URL + "/api/v1/targets/com.example.Greeter/"

	status, out := post(t, base+"Hello", `[""]`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "empty name", out.Error)

	status, _ = post(t, base+"Hello", `[1]`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, base+"Hello", `["a", "b"]`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, base+"Hello", `{"name": "a"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = post(t, base+"Goodbye", `[]`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, out.Error, types.ErrNoSuchTargetMethod.Error())

	status, _ = post(t, server.URL+"/api/v1/targets/unknown/Hello", `[]`)
	assert.Equal(t, http.StatusNotFound, status)

	// rejected requests never reach the chain
	assert.Equal(t, []string{"before Hello"}, tr.list())
}

func TestInvokeBodyTooLarge(t *testing.T) {
	server, tr := newTestServer(t)
	body := `["` + strings.Repeat("a", MaxBodySize) + `"]`

	status, out := post(t, server.URL+"/api/v1/targets/com.example.Greeter/Hello", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.NotEmpty(t, out.Error)
	assert.Empty(t, tr.list())
}
