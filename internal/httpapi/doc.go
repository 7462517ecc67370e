// Package httpapi exposes the workflow orchestrator over JSON HTTP
// endpoints, enforcing request validation, the repository allow-list, and the
// optional static API key before any work reaches the filesystem.
package httpapi
