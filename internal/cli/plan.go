package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shapegate/internal/plan"
	"github.com/roach88/shapegate/internal/shacl"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

// PlanOutput is the JSON payload of one shape's plan export.
type PlanOutput struct {
	Shape string `json:"shape"`
	Depth int    `json:"depth"`
	Dot   string `json:"dot"`
}

// NewPlanCommand creates the plan command, which prints the compiled
// plan tree of every shape in graphviz-dot form without running it.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var shapesDir, dbPath string

	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Print compiled validation plans as dot graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, cmd, shapesDir, dbPath)
		},
	}

	cmd.Flags().StringVar(&shapesDir, "shapes", "", "directory of CUE shape documents (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the store database (required)")
	cmd.MarkFlagRequired("shapes")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runPlan(opts *RootOptions, cmd *cobra.Command, shapesDir, dbPath string) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	shapes, err := LoadShapes(shapesDir)
	if err != nil {
		return commandError(formatter, err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		if outputErr := formatter.Error(ErrCodeStore, fmt.Sprintf("opening store: %v", err), nil); outputErr != nil {
			return outputErr
		}
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	conns := &shacl.ConnectionsGroup{Base: st.Snapshot()}

	var outputs []PlanOutput
	for _, shape := range shapes {
		scope := tuple.NodeShape
		if shape.Path != "" {
			scope = tuple.PropertyShape
		}
		root, err := shape.CompileValidationPlan(ctx, conns, shacl.ValidationSettings{}, nil, scope)
		if err != nil {
			return commandError(formatter, err)
		}
		outputs = append(outputs, PlanOutput{
			Shape: shape.ID.String(),
			Depth: root.Depth(),
			Dot:   plan.DebugPlan(root),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(outputs)
	}
	for _, out := range outputs {
		fmt.Fprintf(formatter.Writer, "// %s (depth %d)\n%s", out.Shape, out.Depth, out.Dot)
	}
	return nil
}
