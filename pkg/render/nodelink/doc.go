// Package nodelink exports diagrams as Graphviz drawings.
//
// # Overview
//
// [ToDOT] writes a document as DOT source with every node pinned at its
// canvas position, so the export looks like the editor rather than like a
// fresh Graphviz layout. Groups are drawn as translucent boxes behind their
// children; hidden nodes (the children of collapsed groups) and the edges
// touching them are left out.
//
// # Usage
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT output selects the neato engine with pinned positions; any
// Graphviz install can render it with `neato -n2 -Tsvg`.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG output goes through [render.ToPDF] and
// [render.ToPNG].
package nodelink
