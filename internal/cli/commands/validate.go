package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wpschema/wpschema/internal/cli/ui"
	"github.com/wpschema/wpschema/internal/service"
)

// NewValidateCommand creates the validate command
func NewValidateCommand(opts *rootOptions) *cobra.Command {
	var (
		pf      pageFlags
		strict  bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a page graph for broken references and missing properties",
		Long: `Generates the graph for a page and reports references to @ids that are
not in the graph and pieces missing recommended properties.

With --strict the command fails when anything is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			pc, err := app.Service.Resolve(ctx, req)
			if err != nil {
				return err
			}
			res, err := app.Service.Run(ctx, pc)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printReport(cmd, string(pc.Kind), pc.PageURL(), res)
			}

			if strict && (len(res.References.Broken) > 0 || len(res.Warnings) > 0) {
				return fmt.Errorf("validation failed: %d broken references, %d warnings",
					len(res.References.Broken), len(res.Warnings))
			}
			return nil
		},
	}
	pf.bind(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when problems are found")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, kind, url string, res *service.Result) {
	out := cmd.OutOrStdout()
	noColor := color.NoColor

	ui.Header(out, fmt.Sprintf("Schema report: %s %s", kind, url), noColor)
	if res.Skipped {
		ui.Message{Level: ui.LevelInfo, Title: "Schema output is disabled for this page", NoColor: noColor}.Write(out)
		return
	}

	kv := ui.NewKeyValueTable(out, noColor)
	kv.AddRow("Pieces", strconv.Itoa(len(res.Schemas)))
	kv.AddRow("References", strconv.Itoa(res.References.TotalReferences))
	kv.AddRow("Broken", strconv.Itoa(len(res.References.Broken)))
	kv.AddRow("Warnings", strconv.Itoa(len(res.Warnings)))
	kv.Render()
	fmt.Fprintln(out)

	if len(res.References.Broken) > 0 {
		ui.Message{Level: ui.LevelError, Title: "Broken references", NoColor: noColor}.Write(out)
		table := ui.NewTable(out, []string{"SOURCE", "PATH", "MISSING @id"}, noColor)
		for _, b := range res.References.Broken {
			source := b.SourceID
			if source == "" {
				source = "(" + b.SourceType + ")"
			}
			table.AddRow(source, b.Path, b.TargetID)
		}
		table.Render()
		fmt.Fprintln(out)
	}

	if len(res.Warnings) > 0 {
		details := make([]string, len(res.Warnings))
		for i, w := range res.Warnings {
			details[i] = w.String()
		}
		ui.Message{Level: ui.LevelWarning, Title: "Warnings", Details: details, NoColor: noColor}.Write(out)
	}

	if len(res.References.Broken) == 0 && len(res.Warnings) == 0 {
		ui.Success(out, "Graph is valid", noColor)
	}
}
