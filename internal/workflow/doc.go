// Package workflow sequences assistant generation and version-control steps
// for one repository checkout per request, short-circuiting on the first
// failure and reporting partial results.
package workflow
