// Package graph defines the diagram document model: nodes, edges, the
// default edge options and the palette of node kinds.
//
// # Wire Format
//
// The JSON encoding is the one the browser canvas produces and the stores
// persist, so documents round-trip between them unchanged:
//
//	{
//	  "nodes": [
//	    {"id": "node_1", "type": "custom", "position": {"x": 0, "y": 0},
//	     "data": {"type": "service", "label": "Orders"}}
//	  ],
//	  "edges": [
//	    {"id": "edge_1", "source": "node_1", "target": "node_2",
//	     "type": "smoothstep", "style": {"stroke": "#94a3b8"},
//	     "data": {"pathType": "smoothstep"}}
//	  ]
//	}
//
// Node.Type selects the renderer (custom, note, group). NodeData.Kind,
// serialized as data.type, is the semantic kind from the palette.
//
// # Groups
//
// A node whose ParentID is set belongs to that group and its Position is
// relative to the group. Nesting is a single level deep: groups are never
// children themselves. Use [AbsolutePosition] to resolve canvas coordinates.
//
// # Integrity
//
// [Document.Validate] reports dangling edges, missing or non-group parents
// and duplicate IDs. It is a check, not a repair; the mutate package keeps
// documents valid by construction.
//
// # Kinds
//
// [Kinds] lists the palette: General (note, step, user, message, group),
// Application, Database, Storage, Middleware, Observability and
// Coordination. Unknown kinds resolve to a custom node labelled "Node".
package graph
