// Package graphdb is the thin seam between the exporter and a Bolt-speaking
// graph database. The analysis core never imports it.
package graphdb

import (
	"context"
	"errors"
	"fmt"
)

// Client runs parameterised cypher statements.
type Client interface {
	Write(ctx context.Context, cypher string, params map[string]any) (Result, error)
	Read(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a fully consumed query response.
type Result struct {
	Records []Record
}

// Record maps returned column names to values.
type Record map[string]any

// String returns the named column as a string, or "" when absent or of another type.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the named column as an int64. Bolt integers always arrive as int64.
func (r Record) Int(key string) (int64, error) {
	switch v := r[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("column %q missing", key)
	default:
		return 0, fmt.Errorf("column %q has type %T", key, v)
	}
}

// Options configures a client.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
