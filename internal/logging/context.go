/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package logging

import "context"

type requestIDKey struct{}

// RequestIDHeader carries the request ID on HTTP requests and responses
const RequestIDHeader = "X-Request-ID"

// WithRequestID returns a context carrying the request ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext prepends the request ID from ctx to keyvals when present
func WithContext(ctx context.Context, keyvals ...interface{}) []interface{} {
	id := RequestID(ctx)
	if id == "" {
		return keyvals
	}
	return append([]interface{}{"request_id", id}, keyvals...)
}
