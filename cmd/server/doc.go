// Package server constructs the copilot-server command-line interface, wiring
// the Cobra command hierarchy, configuration loader, structured logging, and
// the HTTP server assembly. It exposes helpers to build reusable application
// instances and to execute the default command set as a reusable library.
package server
