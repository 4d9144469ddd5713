package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archflow/pkg/cache"
	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/observability"
	"github.com/matzehuels/archflow/pkg/render/nodelink"
)

// Output formats supported by the render command.
const (
	formatSVG = "svg"
	formatDOT = "dot"
	formatPDF = "pdf"
	formatPNG = "png"
)

var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPDF: true, formatPNG: true}

// renderOptions holds flags for the render command.
type renderOptions struct {
	output   string
	format   string
	detailed bool
	scale    float64
	noCache  bool
}

// renderCommand creates the render command for diagram export.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <workflow|file.json>",
		Short: "Export a diagram as SVG, DOT, PDF or PNG",
		Long: `Export a diagram with every node at its canvas position.

The format follows the output extension unless --format is given. SVG, PDF
and PNG are drawn by Graphviz; PDF and PNG also need rsvg-convert.`,
		Example: `  archflow render wf-1 -o system.svg
  archflow render diagram.json -o diagram.dot
  archflow render wf-1 -o system.png --scale 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, dot, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include descriptions and namespaces in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the artifact cache")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// outputFormat resolves the format from the flag or the file extension.
func outputFormat(flag, path string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if !validFormats[f] {
		return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want svg, dot, pdf or png)", f)
	}
	return f, nil
}

func (c *CLI) runRender(ctx context.Context, arg string, opts renderOptions) error {
	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	in, st, err := c.readInput(ctx, arg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	dot := nodelink.ToDOT(in.Doc, nodelink.Options{Detailed: opts.detailed})

	var data []byte
	if format == formatDOT {
		data = []byte(dot)
	} else {
		ac, err := c.newCache(ctx, opts.noCache)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer ac.Close()

		err = spin(ctx, os.Stderr, "Rendering "+in.Name()+"...", func() error {
			var rerr error
			data, rerr = c.renderArtifact(ctx, ac, dot, format, opts.scale)
			return rerr
		})
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", in.Name())
	printStats(in.Doc)
	printFile(opts.output)
	return nil
}

// renderArtifact draws dot in format, reusing a cached result for the same
// source and format.
func (c *CLI) renderArtifact(ctx context.Context, ac cache.Cache, dot, format string, scale float64) ([]byte, error) {
	hooks := observability.Cache()
	key := c.keyer().ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
		Format: fmt.Sprintf("%s@%g", format, scale),
	})

	if data, ok, err := ac.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, cache.KeyTypeArtifact)
		c.Logger.Debug("artifact cache hit", "format", format)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, cache.KeyTypeArtifact)

	var (
		data []byte
		err  error
	)
	switch format {
	case formatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, scale)
	}
	if err != nil {
		return nil, err
	}

	if err := ac.Set(ctx, key, data, c.config().Cache.TTL.Std()); err != nil {
		c.Logger.Warn("artifact cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
	}
	return data, nil
}
