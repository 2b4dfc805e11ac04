// Package utils provides small stateless helpers shared across packages:
// email masking for log output and the JSON error response writer used by
// the HTTP handlers.
package utils
