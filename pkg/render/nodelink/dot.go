package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds each node's description and namespace to its label.
	Detailed bool
}

// pointsPerInch converts canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a document to Graphviz DOT source.
func ToDOT(doc *graph.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=12, fixedsize=true, pin=true];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	visible := make(map[string]bool, len(doc.Nodes))
	// Groups first so children are drawn on top of them.
	for _, group := range []bool{true, false} {
		for i := range doc.Nodes {
			n := &doc.Nodes[i]
			if n.IsGroup() != group || n.Hidden {
				continue
			}
			visible[n.ID] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(doc, n, opts), ", "))
		}
	}

	buf.WriteString("\n")
	for i := range doc.Edges {
		e := &doc.Edges[i]
		if e.Hidden || !visible[e.Source] || !visible[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(doc *graph.Document, n *graph.Node, opts Options) []string {
	abs, _ := doc.AbsolutePosition(n.ID)
	w, h := n.Size()
	if n.IsGroup() && n.Data.Collapsed {
		h = graph.CollapsedGroupHeight
	}
	style := graph.EffectiveStyle(n)

	// Graphviz positions node centres with y growing upwards.
	cx, cy := abs.X+w/2, -(abs.Y + h/2)
	attrs := []string{
		fmt.Sprintf("label=%q", label(n, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
		fmt.Sprintf("width=%s", num(w/pointsPerInch)),
		fmt.Sprintf("height=%s", num(h/pointsPerInch)),
	}

	switch {
	case n.IsGroup():
		attrs = append(attrs, "shape=box", `style="rounded,filled,dashed"`, "labelloc=t")
	case n.Type == graph.NodeTypeNote:
		attrs = append(attrs, "shape=note", "style=filled", `fillcolor="#fef9c3"`)
	default:
		attrs = append(attrs, shapeAttrs(style.Shape)...)
	}

	if c := dotColor(style.BackgroundColor); c != "" && n.Type != graph.NodeTypeNote {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if c := dotColor(style.BorderColor); c != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", c))
	}
	if c := dotColor(style.LabelColor); c != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", c))
	}
	if style.BorderWidth != nil {
		attrs = append(attrs, fmt.Sprintf("penwidth=%s", num(*style.BorderWidth)))
	}
	return attrs
}

func shapeAttrs(s graph.Shape) []string {
	switch s {
	case graph.ShapeRect:
		return []string{"shape=box", "style=filled"}
	case graph.ShapeCircle:
		return []string{"shape=ellipse", "style=filled"}
	case graph.ShapeDiamond:
		return []string{"shape=diamond", "style=filled"}
	}
	return []string{"shape=box", `style="rounded,filled"`}
}

func label(n *graph.Node, detailed bool) string {
	text := n.Data.Label
	if text == "" {
		text = n.ID
	}
	if n.Data.StepNumber != "" {
		text = n.Data.StepNumber + ". " + text
	}
	if !detailed {
		return text
	}
	if n.Data.Namespace != "" {
		text += "\n[" + n.Data.Namespace + "]"
	}
	if n.Data.Description != "" {
		text += "\n" + n.Data.Description
	}
	return text
}

func edgeAttrs(e *graph.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if c := dotColor(e.Style.Stroke); c != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", c))
	}
	if e.Style.StrokeWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%s", num(e.Style.StrokeWidth)))
	}
	if e.Style.StrokeDasharray != "" {
		attrs = append(attrs, "style=dashed")
	}
	if e.MarkerEnd == nil {
		attrs = append(attrs, "arrowhead=none")
	} else if c := dotColor(e.MarkerEnd.Color); c != "" {
		attrs = append(attrs, "arrowhead=normal", fmt.Sprintf("fillcolor=%q", c))
	}
	if len(attrs) == 0 {
		attrs = append(attrs, "arrowhead=normal")
	}
	return attrs
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var rgbaRe = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// dotColor converts a CSS colour to one Graphviz accepts. Hex colours and
// names pass through; rgb() and rgba() become #rrggbb[aa]. Anything else
// yields "".
func dotColor(css string) string {
	css = strings.TrimSpace(css)
	switch {
	case css == "":
		return ""
	case strings.HasPrefix(css, "#"):
		return css
	}
	if m := rgbaRe.FindStringSubmatch(css); m != nil {
		var rgb [3]int
		for i := range rgb {
			v, _ := strconv.Atoi(m[i+1])
			rgb[i] = min(v, 255)
		}
		out := fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
		if m[4] != "" {
			a, _ := strconv.ParseFloat(m[4], 64)
			out += fmt.Sprintf("%02x", int(min(max(a, 0), 1)*255+0.5))
		}
		return out
	}
	if strings.ContainsAny(css, "() ") {
		return ""
	}
	return css
}

// RenderSVG renders DOT source to SVG with Graphviz's neato engine, keeping
// pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders DOT source to PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source to PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
