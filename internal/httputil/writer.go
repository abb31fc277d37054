package httputil

import (
	"context"
	"net/http"
)

// Writer is the authenticated caller of a request
type Writer struct {
	ID   string
	Role string
}

type writerKey struct{}

// WithWriter returns r carrying the authenticated writer
func WithWriter(r *http.Request, writer Writer) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), writerKey{}, writer))
}

// WriterFrom returns the writer set by the auth middleware. ok is false when
// the request went through unauthenticated.
func WriterFrom(r *http.Request) (writer Writer, ok bool) {
	writer, ok = r.Context().Value(writerKey{}).(Writer)
	return writer, ok
}
