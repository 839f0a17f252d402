// Package store defines the document store contract the list and item
// repositories are written against. The production implementation is
// backed by Cloud Firestore; tests use the in-memory implementation in
// store/memory. The contract is deliberately narrow: nested
// collections, merge writes, equality/array-membership queries,
// serializable read-modify-write transactions with server-assigned
// timestamps, and full-snapshot change listeners.
package store

import (
	"context"
	"time"
)

// ServerTimestamp is a sentinel value. When it appears as a field value
// in a Set, the store replaces it with the commit's server time. All
// fields written with it in one transaction resolve to the same
// instant, and server times are monotonically non-decreasing.
var ServerTimestamp = serverTimestamp{}

type serverTimestamp struct{}

// CancelFunc unregisters a listener. It is idempotent and safe to call
// after the listened document or collection stops existing.
type CancelFunc func()

// Snapshot is the state of one document at a point in time. Data is nil
// when Exists is false.
type Snapshot struct {
	ID     string
	Exists bool
	Data   map[string]any
}

// Client is the root handle. Implementations must be safe for
// concurrent use.
type Client interface {
	// Collection addresses a top-level collection.
	Collection(name string) Collection

	// RunTransaction executes fn atomically. The store retries fn a
	// bounded number of times on write conflict; fn must therefore be
	// idempotent and side-effect free outside tx. Reads inside the
	// transaction observe a consistent snapshot, and all reads must be
	// issued before the first write.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Collection addresses a set of sibling documents.
type Collection interface {
	// Doc addresses a document by id. The document need not exist.
	Doc(id string) Doc

	// NewDoc addresses a document with a fresh server-generated id.
	NewDoc() Doc

	// Where starts a query. Supported ops are "==" and
	// "array-contains".
	Where(field, op string, value any) Query

	// Documents returns every document currently in the collection.
	Documents(ctx context.Context) ([]Snapshot, error)

	// Listen invokes fn with the full current snapshot set on
	// registration and after every change to the collection. Rapid
	// changes may coalesce, but the last invocation before a quiescent
	// period reflects the latest committed state.
	Listen(ctx context.Context, fn func([]Snapshot)) CancelFunc
}

// Doc addresses one document.
type Doc interface {
	ID() string

	// Collection addresses a subcollection nested under this document.
	Collection(name string) Collection

	Get(ctx context.Context) (Snapshot, error)

	// Set writes fields with merge semantics, creating the document if
	// absent. Fields not present in data are left untouched.
	Set(ctx context.Context, data map[string]any) error

	Delete(ctx context.Context) error

	// Listen invokes fn with the current snapshot on registration and
	// after every change, including deletion (Exists=false).
	Listen(ctx context.Context, fn func(Snapshot)) CancelFunc
}

// Query is an immutable query builder.
type Query interface {
	Where(field, op string, value any) Query
	OrderBy(field string, desc bool) Query
	Limit(n int) Query
	Documents(ctx context.Context) ([]Snapshot, error)
}

// Tx is the handle passed to a transaction function. Writes are staged
// and applied atomically when the function returns nil.
type Tx interface {
	Get(doc Doc) (Snapshot, error)
	Set(doc Doc, data map[string]any) error
	Delete(doc Doc) error
}

// Field accessors. Snapshot data is dynamically typed; these normalize
// the handful of shapes the two backends produce (int vs int64,
// []any vs []string) so repositories stay free of type switches.

// String returns the string field k, or "" if absent or not a string.
func String(data map[string]any, k string) string {
	s, _ := data[k].(string)
	return s
}

// Int returns the numeric field k, or 0 if absent.
func Int(data map[string]any, k string) int {
	switch v := data[k].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the boolean field k, or false if absent.
func Bool(data map[string]any, k string) bool {
	b, _ := data[k].(bool)
	return b
}

// Time returns the timestamp field k, or the zero time if absent.
func Time(data map[string]any, k string) time.Time {
	t, _ := data[k].(time.Time)
	return t
}

// Strings returns the string-array field k.
func Strings(data map[string]any, k string) []string {
	switch v := data[k].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
