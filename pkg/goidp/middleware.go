package goidp

import "net/http"

type MiddlewareFunc func(next http.Handler) http.Handler

func ApplyMiddlewares(handler http.Handler, middlewares ...MiddlewareFunc) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// NotifyErrorFunc is called with the errors resulting from requests.
// It can be used for logging or auditing.
type NotifyErrorFunc func(r *http.Request, err error)
