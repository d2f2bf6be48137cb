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

// Package rest exposes the proxies of a weaver over HTTP. Every remote call goes through
// the interception chain of the invoked method.
//
//	GET  /api/v1/targets                  list targets and their methods
//	GET  /api/v1/targets/:target          method signatures of a target
//	POST /api/v1/targets/:target/:method  invoke a method, the body is a JSON array of arguments
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/utils/json"
)

const (
	ContentTypeKey  = "Content-Type"
	JsonContextType = "application/json"
	// DefaultAddr is used when Config.Addr is empty
	DefaultAddr = ":9090"
	// MaxBodySize limits the request body of an invocation
	MaxBodySize = 4 << 20
)

// Targets is the source of the proxies served by the endpoint. *engine.Weaver implements it.
type Targets interface {
	Proxy(name string) (*engine.Proxy, bool)
	Proxies() []*engine.Proxy
}

// TargetInfo describes a target
type TargetInfo struct {
	Name    string       `json:"name"`
	Methods []MethodInfo `json:"methods"`
}

// MethodInfo describes a target method
type MethodInfo struct {
	Name      string   `json:"name"`
	Signature string   `json:"signature"`
	Params    []string `json:"params"`
	Results   []string `json:"results"`
}

// InvokeResponse is the body of an invocation response
type InvokeResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Config Rest 服务配置
type Config struct {
	Addr        string
	CertFile    string
	CertKeyFile string
}

// Rest 接收端端点
type Rest struct {
	// 配置
	Config  Config
	targets Targets
	logger  types.Logger
	// 路由器
	router *httprouter.Router
	server *http.Server
}

// New creates a REST endpoint serving the proxies of targets.
func New(config Config, targets Targets, logger types.Logger) *Rest {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if logger == nil {
		logger = types.DefaultLogger()
	}
	r := &Rest{
		Config:  config,
		targets: targets,
		logger:  logger,
		router:  httprouter.New(),
	}
	r.router.GET("/api/v1/targets", r.listTargets)
	r.router.GET("/api/v1/targets/:target", r.getTarget)
	r.router.POST("/api/v1/targets/:target/:method", r.invoke)
	r.router.PanicHandler = func(w http.ResponseWriter, req *http.Request, v interface{}) {
		// 捕捉异常
		r.logger.Printf("rest handler err :%v", v)
		r.writeJSON(w, http.StatusInternalServerError, InvokeResponse{Error: fmt.Sprintf("%v", v)})
	}
	return r
}

// Start listens on Config.Addr and blocks until the server stops.
// It returns nil after Stop.
func (r *Rest) Start() error {
	r.server = &http.Server{Addr: r.Config.Addr, Handler: r.router}
	var err error
	if r.Config.CertKeyFile != "" && r.Config.CertFile != "" {
		r.logger.Printf("starting server with TLS on %s", r.Config.Addr)
		err = r.server.ListenAndServeTLS(r.Config.CertFile, r.Config.CertKeyFile)
	} else {
		r.logger.Printf("starting server on %s", r.Config.Addr)
		err = r.server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down, waiting up to timeout for running requests.
func (r *Rest) Stop(timeout time.Duration) error {
	if r.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.server.Shutdown(ctx)
}

// Router returns the router, it is a http.Handler.
func (r *Rest) Router() *httprouter.Router {
	return r.router
}

func (r *Rest) listTargets(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	var list = make([]TargetInfo, 0)
	for _, proxy := range r.targets.Proxies() {
		list = append(list, targetInfo(proxy))
	}
	r.writeJSON(w, http.StatusOK, list)
}

func (r *Rest) getTarget(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	name := params.ByName("target")
	proxy, ok := r.targets.Proxy(name)
	if !ok {
		r.writeError(w, http.StatusNotFound, fmt.Errorf("target %s not found", name))
		return
	}
	r.writeJSON(w, http.StatusOK, targetInfo(proxy))
}

func (r *Rest) invoke(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	name := params.ByName("target")
	proxy, ok := r.targets.Proxy(name)
	if !ok {
		r.writeError(w, http.StatusNotFound, fmt.Errorf("target %s not found", name))
		return
	}
	method := params.ByName("method")
	fnType, ok := proxy.MethodType(method)
	if !ok {
		r.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s.%s", types.ErrNoSuchTargetMethod, name, method))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			r.writeError(w, http.StatusRequestEntityTooLarge, err)
		} else {
			r.writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	args, err := DecodeArgs(fnType, body)
	if err != nil {
		r.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", types.ErrInvalidArguments, err))
		return
	}
	result, err := proxy.Invoke(method, args...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrInvalidArguments) {
			status = http.StatusBadRequest
		}
		r.writeError(w, status, err)
		return
	}
	r.writeJSON(w, http.StatusOK, InvokeResponse{Result: result})
}

func (r *Rest) writeError(w http.ResponseWriter, status int, err error) {
	r.writeJSON(w, status, InvokeResponse{Error: err.Error()})
}

func (r *Rest) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(InvokeResponse{Error: err.Error()})
	}
	w.Header().Set(ContentTypeKey, JsonContextType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger.Printf("rest write response err :%v", err)
	}
}

func targetInfo(proxy *engine.Proxy) TargetInfo {
	info := TargetInfo{Name: proxy.Name(), Methods: make([]MethodInfo, 0)}
	for _, sig := range proxy.Methods() {
		info.Methods = append(info.Methods, MethodInfo{
			Name:      sig.Method,
			Signature: sig.String(),
			Params:    nonNil(sig.ParamTypes),
			Results:   nonNil(sig.ResultTypes),
		})
	}
	return info
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// DecodeArgs decodes a JSON array into values of the parameter types of fnType.
// Trailing elements of a variadic method decode into the element type.
func DecodeArgs(fnType reflect.Type, body []byte) ([]interface{}, error) {
	raw, err := json.UnmarshalArray(body)
	if err != nil {
		return nil, fmt.Errorf("body must be a JSON array: %v", err)
	}
	n := fnType.NumIn()
	if fnType.IsVariadic() {
		if len(raw) < n-1 {
			return nil, fmt.Errorf("want at least %d arguments, got %d", n-1, len(raw))
		}
	} else if len(raw) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(raw))
	}
	args := make([]interface{}, len(raw))
	for i, item := range raw {
		var t reflect.Type
		if fnType.IsVariadic() && i >= n-1 {
			t = fnType.In(n - 1).Elem()
		} else {
			t = fnType.In(i)
		}
		v, err := json.UnmarshalAs(item, t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %v", i, err)
		}
		args[i] = v
	}
	return args, nil
}
