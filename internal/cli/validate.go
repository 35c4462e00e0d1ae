package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shapegate/internal/shacl"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/validation"
)

// ValidationReport is the JSON payload of a validate run.
type ValidationReport struct {
	RunID      string            `json:"run_id"`
	Conforms   bool              `json:"conforms"`
	Violations []ViolationRecord `json:"violations,omitempty"`
}

// ViolationRecord is one violation in CLI output form.
type ViolationRecord struct {
	Shape     string `json:"shape"`
	Component string `json:"component"`
	Target    string `json:"target"`
	Value     string `json:"value,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var shapesDir, dbPath, dataPath string
	var graphs []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate store data against shape constraints",
		Long: `Compile CUE shape documents into validation plans and run them
against a quad store. Exits 0 when the data conforms, 1 when violations
are found, 2 on command errors.

With --data, the statements are loaded into the store inside a
transaction and validated as staged changes; the transaction is rolled
back afterwards, so the store is left untouched.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, shapesDir, dbPath, dataPath, graphs)
		},
	}

	cmd.Flags().StringVar(&shapesDir, "shapes", "", "directory of CUE shape documents (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the store database (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "YAML data document to stage and validate")
	cmd.Flags().StringSliceVar(&graphs, "graph", nil, "restrict validation to the named graphs")
	cmd.MarkFlagRequired("shapes")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, shapesDir, dbPath, dataPath string, graphs []string) error {
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
	formatter.VerboseLog("Loaded %d shape(s) from %s", len(shapes), shapesDir)

	st, err := store.Open(dbPath)
	if err != nil {
		outputErr := formatter.Error(ErrCodeStore, fmt.Sprintf("opening store: %v", err), nil)
		if outputErr != nil {
			return outputErr
		}
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	validator := &validation.Validator{
		Shapes:   shapes,
		Settings: shacl.ValidationSettings{DataGraphs: graphs},
	}

	if dataPath != "" {
		statements, err := LoadData(dataPath)
		if err != nil {
			return commandError(formatter, err)
		}
		txn, err := st.Begin(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "starting transaction", err)
		}
		defer txn.Rollback()
		for _, s := range statements {
			if err := txn.Add(ctx, s); err != nil {
				return WrapExitError(ExitCommandError, "staging statement", err)
			}
		}
		formatter.VerboseLog("Staged %d statement(s) from %s", len(statements), dataPath)
		validator.Conns = &shacl.ConnectionsGroup{Base: txn.Base(), Previous: st.Snapshot()}
		validator.Changed = txn.ChangedPredicates()
	} else {
		validator.Conns = &shacl.ConnectionsGroup{Base: st.Snapshot()}
	}

	report, err := validator.Validate(ctx)
	if err != nil {
		outputErr := formatter.Error(ErrCodeGeneric, err.Error(), nil)
		if outputErr != nil {
			return outputErr
		}
		return WrapExitError(ExitCommandError, "validation run failed", err)
	}

	return outputReport(formatter, report)
}

func outputReport(formatter *OutputFormatter, report *validation.Report) error {
	result := ValidationReport{
		RunID:    report.RunID,
		Conforms: report.Conforms(),
	}
	for _, v := range report.Violations {
		rec := ViolationRecord{
			Shape:     v.ShapeID.String(),
			Component: v.Component.String(),
			Target:    v.Tuple.Target().String(),
		}
		if v.Tuple.HasValue() {
			rec.Value = v.Tuple.Value().String()
		}
		result.Violations = append(result.Violations, rec)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if result.Conforms {
			fmt.Fprintf(formatter.Writer, "Conforms (run %s)\n", result.RunID)
		} else {
			fmt.Fprintf(formatter.Writer, "%d violation(s) (run %s)\n", len(result.Violations), result.RunID)
			for _, rec := range result.Violations {
				line := fmt.Sprintf("  %s %s: target %s", rec.Shape, rec.Component, rec.Target)
				if rec.Value != "" {
					line += " value " + rec.Value
				}
				fmt.Fprintln(formatter.Writer, line)
			}
		}
	}

	if !result.Conforms {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d violation(s)", len(result.Violations))}
	}
	return nil
}

// commandError reports a load error and converts it to exit code 2.
func commandError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if outputErr := formatter.Error(loadErr.Code, loadErr.Message, nil); outputErr != nil {
			return outputErr
		}
		return WrapExitError(ExitCommandError, strings.TrimSpace(loadErr.Message), err)
	}
	if outputErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outputErr != nil {
		return outputErr
	}
	return WrapExitError(ExitCommandError, err.Error(), err)
}
