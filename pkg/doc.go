// Package pkg holds the libraries behind archflow, a backend and CLI for
// editing architecture diagrams.
//
// # Overview
//
// A diagram is a [graph.Document]: nodes (services, databases, queues,
// notes, groups) connected by edges, plus the viewport. The packages are
// layered bottom-up:
//
//  1. [graph] - document model, node kinds, styles, JSON codec
//  2. [mutate] - pure editing operations over a graph state
//  3. [history] - bounded undo/redo stacks of states
//  4. [dag], [dag/ordering], [dag/transform] - layered-graph primitives
//  5. [layout] - automatic layered placement of a document
//  6. [editor] - an editing session tying history, layout and saving together
//  7. [store] - workflow persistence (memory, file, SQLite, Postgres, MongoDB)
//  8. [render] - DOT, SVG, PDF and PNG output
//
// [cache], [errors], [observability], [retry] and [buildinfo] are shared
// infrastructure.
//
// # Data flow
//
//	store.Store ──LoadGraph──▶ editor.Session ──mutate/history──▶ graph.State
//	                                 │
//	                                 ├──Layout──▶ layout.Engine (dag + ordering)
//	                                 │
//	                                 └──Save──▶ store.Store
//
// The HTTP server in internal/server exposes these sessions; the CLI in
// internal/cli drives the same packages for one-shot commands.
package pkg
