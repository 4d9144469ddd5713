// Package render converts diagram exports between output formats.
//
// # Overview
//
// Diagram drawings are produced as SVG by the [nodelink] subpackage. The
// [ToPDF] and [ToPNG] functions convert any SVG to other formats using the
// external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// rsvg-convert must be on PATH: brew install librsvg (macOS), apt install
// librsvg2-bin (Linux). [Available] reports whether it is.
//
// [nodelink]: github.com/matzehuels/archflow/pkg/render/nodelink
package render
