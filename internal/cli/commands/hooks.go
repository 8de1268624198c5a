package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wpschema/wpschema/internal/cli/ui"
	"github.com/wpschema/wpschema/internal/hooks"
)

// NewHooksCommand creates the hooks command
func NewHooksCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "hooks [name]",
		Short: "Document the actions and filters extensions can hook into",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := hooks.Documentation()
			if len(args) == 1 {
				doc, ok := findHook(docs, args[0])
				if !ok {
					names := make([]string, len(docs))
					for i, d := range docs {
						names[i] = d.Name
					}
					ui.Message{
						Level:       ui.LevelError,
						Title:       fmt.Sprintf("Unknown hook: %s", args[0]),
						Suggestions: ui.FindSimilar(args[0], names, 4),
						Commands:    []string{"List hooks: wpschema hooks"},
					}.Write(cmd.ErrOrStderr())
					return fmt.Errorf("unknown hook %q", args[0])
				}
				docs = []hooks.Doc{doc}
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}

			table := ui.NewTable(cmd.OutOrStdout(), []string{"NAME", "KIND", "VALUE", "ARGS", "DESCRIPTION"}, color.NoColor)
			for _, d := range docs {
				table.AddRow(d.Name, string(d.Kind), d.Value, strings.Join(d.Args, ", "), d.Description)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the documentation as JSON")
	return cmd
}

// findHook matches exact names; {type} in a hook name matches any type
func findHook(docs []hooks.Doc, name string) (hooks.Doc, bool) {
	for _, d := range docs {
		if d.Name == name {
			return d, true
		}
	}
	for _, d := range docs {
		prefix, suffix, ok := strings.Cut(d.Name, "{type}")
		if ok && len(name) > len(prefix)+len(suffix) &&
			strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			return d, true
		}
	}
	return hooks.Doc{}, false
}
