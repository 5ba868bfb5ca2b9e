package http

import "net/http"

// GetJSON mounts a handler without inputs for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, NoParamsHandler(h))
}

// GetParams mounts a handler with bound path and query inputs for GET
func GetParams[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, ParamsHandler(h))
}
