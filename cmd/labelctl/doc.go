// Package main hosts the labelctl CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the labeld daemon: allocation, image import, label
// submission, listings, project moves, deletes, and configuration
// scaffolding. It centralizes configuration resolution and API client
// construction so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
