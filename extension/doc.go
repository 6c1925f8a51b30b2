// Package extension provides the run-time registries binding skill steps to
// tool services and their Go input/output types. Registries are normally
// populated through the public options on the root skillet package.
package extension
