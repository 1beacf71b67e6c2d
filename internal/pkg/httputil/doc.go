// Package httputil provides shared HTTP response utilities for handlers.
//
// Handler files should use these helpers instead of writing raw
// http.ResponseWriter calls, so error bodies stay consistent across
// endpoints and internal error detail never reaches the client.
package httputil
