// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tipline Contributors

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod returns an [http.HandlerFunc] intended to be registered
// as the router's MethodNotAllowed handler.
//
// Chi's default is to answer HTTP 405 whenever a path matches a registered
// route but the method does not. On a platform whose routes should not be
// enumerable, that leaks route existence, so unsupported methods get 404
// instead. If the requested method IS registered for the matched route,
// the request is forwarded to the router's normal pipeline.
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var matched chi.Route
		for _, route := range router.Routes() {
			if route.Pattern == r.URL.Path {
				matched = route
				break
			}
		}

		if _, ok := matched.Handlers[r.Method]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		router.ServeHTTP(w, r)
	}
}
