package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

// exportCommand writes a stored diagram to a document file.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <workflow>",
		Short: "Write a workflow's diagram as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				wf, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				doc, err := st.Load(cmd.Context(), wf.ID)
				if err != nil {
					return err
				}
				if output == "" {
					return graph.WriteDocument(doc, cmd.OutOrStdout())
				}
				if err := graph.WriteDocumentFile(doc, output); err != nil {
					return err
				}
				printSuccess("Exported %s", StyleHighlight.Render(wf.Name))
				printStats(doc)
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// importCommand stores a document file as a new workflow, or over an
// existing one.
func (c *CLI) importCommand() *cobra.Command {
	var name, description, into string

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Store a diagram file as a workflow",
		Example: `  archflow import diagram.json --name "Order System"
  archflow import diagram.json --into 1735689600000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := readValidDocument(args[0])
			if err != nil {
				return err
			}

			return c.withStore(ctx, func(st store.Store) error {
				var wf graph.Workflow
				if into != "" {
					if wf, err = st.Get(ctx, into); err != nil {
						return err
					}
				} else {
					if name == "" {
						name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
					}
					if wf, err = st.Create(ctx, name, description); err != nil {
						return err
					}
				}
				if err := st.Save(ctx, wf.ID, doc); err != nil {
					return err
				}
				c.Logger.Debug("imported document", "id", wf.ID, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
				printSuccess("Imported %s", StyleHighlight.Render(wf.Name))
				printDetail("ID: %s", wf.ID)
				printStats(doc)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "workflow name (default: file name)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "workflow description")
	cmd.Flags().StringVar(&into, "into", "", "replace the diagram of this workflow instead of creating one")
	cmd.MarkFlagsMutuallyExclusive("into", "name")
	return cmd
}

// validateCommand checks a document file's referential integrity.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>...",
		Short: "Check diagram files for dangling edges and broken groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, err := readValidDocument(path)
				if err != nil {
					failed++
					printError("%s", path)
					for _, line := range strings.Split(err.Error(), "\n") {
						printDetail("%s", line)
					}
					continue
				}
				printSuccess("%s", path)
				printStats(doc)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}

// readValidDocument reads path and checks it with [graph.Document.Validate].
func readValidDocument(path string) (*graph.Document, error) {
	doc, err := graph.ReadDocumentFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: no such file", path)
		}
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
