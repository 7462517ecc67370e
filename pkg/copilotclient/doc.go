// Package copilotclient provides a typed HTTP client for the copilot-server
// JSON API, covering health checks, assistant execution, commit-and-push, and
// the combined workflow endpoint.
package copilotclient
