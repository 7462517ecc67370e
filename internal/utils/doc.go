// Package utils hosts shared infrastructure for the server: configuration
// loading, logger construction, request context propagation, and path
// expansion helpers.
package utils
