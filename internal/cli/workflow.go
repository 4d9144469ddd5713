package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

// workflowCommand creates the workflow management command.
func (c *CLI) workflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflow",
		Aliases: []string{"wf"},
		Short:   "Manage stored workflows",
	}

	cmd.AddCommand(c.workflowListCommand())
	cmd.AddCommand(c.workflowCreateCommand())
	cmd.AddCommand(c.workflowShowCommand())
	cmd.AddCommand(c.workflowRenameCommand())
	cmd.AddCommand(c.workflowDeleteCommand())
	cmd.AddCommand(c.workflowPickCommand())

	return cmd
}

// withStore opens the persistent store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx, true)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) workflowListCommand() *cobra.Command {
	var query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workflows, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				wfs, err := st.List(cmd.Context(), query)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(wfs)
				}
				if len(wfs) == 0 {
					printInfo("No workflows found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), workflowTable(wfs, -1))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or description (case-insensitive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *CLI) workflowCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				wf, err := st.Create(cmd.Context(), args[0], description)
				if err != nil {
					return err
				}
				c.Logger.Debug("created workflow", "id", wf.ID)
				printSuccess("Created %s", StyleHighlight.Render(wf.Name))
				printDetail("ID: %s", wf.ID)
				printNextStep("Import a diagram", fmt.Sprintf("%s import diagram.json --into %s", appName, wf.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "workflow description")
	return cmd
}

func (c *CLI) workflowShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workflow and its diagram statistics",
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
				showWorkflow(wf, doc)
				return nil
			})
		},
	}
}

func showWorkflow(wf graph.Workflow, doc *graph.Document) {
	fmt.Println(StyleTitle.Render(wf.Name))
	printKeyValue("ID", wf.ID)
	if wf.Description != "" {
		printKeyValue("Description", wf.Description)
	}
	printKeyValue("Updated", wf.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("Diagram", statsOf(doc).String())
}

func (c *CLI) workflowRenameCommand() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "rename <id>",
		Short: "Change a workflow's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("description") {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change: pass --name or --description")
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				wf, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					wf.Name = name
				}
				if cmd.Flags().Changed("description") {
					wf.Description = description
				}
				wf, err = st.Rename(cmd.Context(), wf.ID, wf.Name, wf.Description)
				if err != nil {
					return err
				}
				printSuccess("Updated %s", StyleHighlight.Render(wf.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (c *CLI) workflowDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete workflows and their diagrams",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete %s: %w", id, err)
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) workflowPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a workflow interactively and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				wfs, err := st.List(cmd.Context(), "")
				if err != nil {
					return err
				}
				if len(wfs) == 0 {
					printInfo("No workflows found")
					printNextStep("Create one", appName+" workflow create \"My System\"")
					return nil
				}

				final, err := tea.NewProgram(NewWorkflowListModel(wfs), tea.WithContext(cmd.Context()), tea.WithOutput(os.Stderr)).Run()
				if err != nil {
					return fmt.Errorf("picker: %w", err)
				}
				m := final.(WorkflowListModel)
				if m.Selected == nil {
					return nil
				}

				doc, err := st.Load(cmd.Context(), m.Selected.ID)
				if err != nil {
					return err
				}
				showWorkflow(*m.Selected, doc)
				return nil
			})
		},
	}
}
