// Package main hosts the Gradr CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into scan
// ingestion, queue maintenance operations, daemon startup, and configuration
// scaffolding. It centralizes configuration resolution and store access so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
