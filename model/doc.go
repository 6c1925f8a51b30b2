// Package model defines the declarative skill model: skill definitions,
// triggers and process steps. Definitions are loaded once at registry
// initialisation and treated as immutable for the process lifetime -
// hot-reload is an externally triggered re-init, never in-place mutation.
package model
