// Package middleware binds HTTP request bodies to Go values through a
// binding.Table and reports decode failures as JSON issue lists.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/binding"
)

// DefaultMaxBodyBytes limits request bodies read by Bind and Decode.
const DefaultMaxBodyBytes = 1 << 20

// ctxKeyDecoded is a typed context key for storing decoded values.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a decoded T to the context.
func ContextWithDecoded[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves the T stored by Bind.
func DecodedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(T)
	return v, ok
}

// Decode reads at most limit bytes of the request body (DefaultMaxBodyBytes
// when limit <= 0) and decodes them as a T.
func Decode[T any](table *binding.Table, r *http.Request, limit int64) (T, error) {
	var zero T
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return zero, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > limit {
		return zero, errBodyTooLarge
	}
	return binding.Decode[T](table, data)
}

var errBodyTooLarge = errors.New("request body too large")

// Bind returns middleware that decodes the request body into T and stores it
// in the request context for next. Failures are answered with 400 (413 for
// oversized bodies) and an ErrorPayload.
func Bind[T any](table *binding.Table, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := Decode[T](table, r, 0)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			WriteError(w, status, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
	})
}

// issueView is the wire shape of one issue in an error response.
type issueView struct {
	Path    string
	Code    string
	Message string
	Hint    string
	Offset  int64
	Params  map[string]any
}

var errorTable = func() *binding.Table {
	b := binding.Object[issueView]()
	binding.Field(b, "path", func(v *issueView) *string { return &v.Path })
	binding.Field(b, "code", func(v *issueView) *string { return &v.Code })
	binding.Field(b, "message", func(v *issueView) *string { return &v.Message })
	binding.Field(b, "hint", func(v *issueView) *string { return &v.Hint }).OmitEmpty()
	binding.Field(b, "offset", func(v *issueView) *int64 { return &v.Offset })
	binding.Field(b, "params", func(v *issueView) *map[string]any { return &v.Params }).OmitEmpty()
	return binding.NewTableBuilder().Bind(b).MustBuild()
}()

// ErrorPayload shapes an error for a JSON response: {"issues":[...]}.
// Errors that are not Issues become a single issue with an empty code.
func ErrorPayload(err error) map[string]any {
	iss, ok := bindjson.AsIssues(err)
	if !ok {
		iss = bindjson.Issues{{Message: err.Error(), Offset: -1}}
	}
	views := make([]issueView, len(iss))
	for i, it := range iss {
		views[i] = issueView{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint, Offset: it.Offset, Params: it.Params}
	}
	return map[string]any{"issues": views}
}

// WriteError writes ErrorPayload(err) with the given status.
func WriteError(w http.ResponseWriter, status int, err error) {
	body, encErr := errorTable.Encode(ErrorPayload(err))
	if encErr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteJSON encodes v with table and writes it with the given status.
func WriteJSON(w http.ResponseWriter, table *binding.Table, status int, v any) error {
	body, err := table.Encode(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
