package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand(opts *rootOptions) *cobra.Command {
	var (
		pf     pageFlags
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the schema graph for a page",
		Example: `  wpschema generate
  wpschema generate --context singular --post 42
  wpschema generate --context taxonomy --term 5 --taxonomy product_cat --format html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "html" {
				return fmt.Errorf("--format must be json or html, got %q", format)
			}
			req, err := pf.request(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			if !cmd.Flags().Changed("pretty") {
				pretty = app.Config.Output.Pretty
			}

			pc, err := app.Service.Resolve(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "html" {
				html, err := app.Service.RenderHead(ctx, pc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, html)
				return nil
			}

			schemas, err := app.Service.Generate(ctx, pc)
			if err != nil {
				return err
			}
			if schemas == nil {
				schemas = []map[string]any{}
			}
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(schemas)
		},
	}
	pf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or html")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent JSON output (default from output.pretty)")
	return cmd
}
