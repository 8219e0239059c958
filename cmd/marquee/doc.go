// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the marqueed daemon: batch title resolution, cache
// inspection and maintenance, daemon status, and configuration scaffolding.
// It centralizes configuration resolution and daemon address discovery so
// subcommands can focus on user experience instead of wiring.
package main
