package proxy

import "net/http"

// Recovery turns a panic anywhere below it in the chain into a 500 instead
// of a dropped connection. The panic itself surfaces through the Logging
// middleware, which observes the recovered status code.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recover() != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestSizeLimit caps the inbound Anthropic request body at maxBytes
// (§4.9's request-size guard). A handler that reads past the limit gets
// *http.MaxBytesError from the body reader rather than an unbounded read.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// chain wires middlewares around h, outermost first, so chain(h, a, b) runs
// a then b then h.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
