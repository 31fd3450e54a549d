// Package main hosts the bipv CLI entrypoint and command graph.
//
// The Cobra-based command tree covers project management, facade schedule and
// consumption ingest, the weather profile, pipeline runs, queue maintenance,
// portfolio optimization, reporting, and configuration scaffolding. It
// centralizes configuration resolution and project selection so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
