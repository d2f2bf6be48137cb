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

// Package websocket invokes the proxies of a weaver over a websocket connection. Every text
// message is a JSON request, answered by one JSON response carrying the same id:
//
//	{"id": "1", "target": "com.example.service.EmployeeService", "method": "CheckStatus", "args": ["EMP101"]}
//	{"id": "1", "result": "Active"}
package websocket

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/endpoint/rest"
	"github.com/rulego/weaver/utils/json"
)

// DefaultPath is the route of the websocket endpoint
const DefaultPath = "/api/v1/ws"

// Request websocket请求消息
type Request struct {
	Id     string          `json:"id,omitempty"`
	Target string          `json:"target"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Response websocket响应消息
type Response struct {
	Id     string      `json:"id,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Websocket 接收端端点
type Websocket struct {
	Upgrader websocket.Upgrader
	targets  rest.Targets
	logger   types.Logger
	// open connections
	conns sync.Map
}

// New creates a websocket endpoint serving the proxies of targets.
func New(targets rest.Targets, logger types.Logger) *Websocket {
	if logger == nil {
		logger = types.DefaultLogger()
	}
	return &Websocket{targets: targets, logger: logger}
}

// Mount adds the endpoint to router with GET path, DefaultPath if empty.
func (ws *Websocket) Mount(router *httprouter.Router, path string) {
	if path == "" {
		path = DefaultPath
	}
	router.GET(path, ws.Handle)
}

// Close closes the open connections.
func (ws *Websocket) Close() {
	ws.conns.Range(func(key, value interface{}) bool {
		_ = key.(*websocket.Conn).Close()
		return true
	})
}

// Handle upgrades the request and serves invocation requests until the connection is closed.
func (ws *Websocket) Handle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	c, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Printf("upgrade: %v", err)
		return
	}
	c.SetReadLimit(rest.MaxBodySize)
	ws.conns.Store(c, struct{}{})
	defer func() {
		ws.conns.Delete(c)
		_ = c.Close()
		// 捕捉异常
		if e := recover(); e != nil {
			ws.logger.Printf("ws handler err :%v", e)
		}
	}()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		body, err := json.Marshal(ws.invoke(message))
		if err != nil {
			body, _ = json.Marshal(Response{Error: err.Error()})
		}
		if err := c.WriteMessage(websocket.TextMessage, body); err != nil {
			ws.logger.Printf("write: %v", err)
			break
		}
	}
}

func (ws *Websocket) invoke(message []byte) Response {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		return Response{Error: fmt.Sprintf("%v: %v", types.ErrInvalidArguments, err)}
	}
	resp := Response{Id: req.Id}
	proxy, ok := ws.targets.Proxy(req.Target)
	if !ok {
		resp.Error = fmt.Sprintf("target %s not found", req.Target)
		return resp
	}
	fnType, ok := proxy.MethodType(req.Method)
	if !ok {
		resp.Error = fmt.Sprintf("%v: %s.%s", types.ErrNoSuchTargetMethod, req.Target, req.Method)
		return resp
	}
	args, err := rest.DecodeArgs(fnType, req.Args)
	if err != nil {
		resp.Error = fmt.Sprintf("%v: %v", types.ErrInvalidArguments, err)
		return resp
	}
	result, err := proxy.Invoke(req.Method, args...)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = result
	return resp
}
