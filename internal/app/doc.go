// Package app wires the transformation pipeline together: mapping config,
// template loader, module registry, engine, transformer and batch runner.
// It is decoupled from any specific entrypoint.
package app
