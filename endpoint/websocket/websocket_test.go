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

package websocket

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	gorilla "github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/endpoint/rest"
	"github.com/rulego/weaver/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func (c *counter) Add(delta int) (int, error) {
	if delta < 0 {
		return c.n, errors.New("negative delta")
	}
	c.n += delta
	return c.n, nil
}

func dial(t *testing.T) *gorilla.Conn {
	t.Helper()
	w, err := engine.New(engine.WithConfig(engine.NewConfig(types.WithLogger(types.DiscardLogger()))))
	require.NoError(t, err)
	_, err = w.Around("execution(* com.example.Counter.Add(..))", 0, func(pjp types.ProceedingJoinPoint) (any, error) {
		result, err := pjp.Proceed()
		if err != nil {
			return result, err
		}
		return result.(int) * 100, nil
	})
	require.NoError(t, err)
	_, err = w.RegisterTarget(&counter{}, engine.WithTypeName("com.example.Counter"))
	require.NoError(t, err)

	router := httprouter.New()
	ws := New(w, types.DiscardLogger())
	ws.Mount(router, "")
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	t.Cleanup(ws.Close)

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+DefaultPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func call(t *testing.T, conn *gorilla.Conn, req string) Response {
	t.Helper()
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(req)))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestInvoke(t *testing.T) {
	conn := dial(t)

	resp := call(t, conn, `{"id": "1", "target": "com.example.Counter", "method": "Add", "args": [2]}`)
	assert.Equal(t, "1", resp.Id)
	assert.Equal(t, float64(200), resp.Result)
	assert.Empty(t, resp.Error)

	resp = call(t, conn, `{"id": "2", "target": "com.example.Counter", "method": "Add", "args": [3]}`)
	assert.Equal(t, float64(500), resp.Result)
}

func TestInvokeErrors(t *testing.T) {
	conn := dial(t)

	resp := call(t, conn, `{"id": "1", "target": "com.example.Counter", "method": "Add", "args": [-1]}`)
	assert.Equal(t, "negative delta", resp.Error)

	resp = call(t, conn, `{"id": "2", "target": "unknown", "method": "Add"}`)
	assert.Equal(t, "2", resp.Id)
	assert.Contains(t, resp.Error, "not found")

	resp = call(t, conn, `{"id": "3", "target": "com.example.Counter", "method": "Sub", "args": []}`)
	assert.Contains(t, resp.Error, types.ErrNoSuchTargetMethod.Error())

	resp = call(t, conn, `{"id": "4", "target": "com.example.Counter", "method": "Add", "args": ["x"]}`)
	assert.Contains(t, resp.Error, types.ErrInvalidArguments.Error())

	resp = call(t, conn, `not json`)
	assert.Contains(t, resp.Error, types.ErrInvalidArguments.Error())
}

func TestMessageTooLarge(t *testing.T) {
	conn := dial(t)

	big := `{"id": "1", "target": "com.example.Counter", "method": "Add", "args": [` + strings.Repeat(" ", rest.MaxBodySize) + `1]}`
	// the server may drop the connection before the frame is fully written
	_ = conn.WriteMessage(gorilla.TextMessage, []byte(big))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
