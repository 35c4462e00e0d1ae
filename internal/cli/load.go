package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shapegate/internal/store"
)

// LoadResult is the JSON payload of a load run.
type LoadResult struct {
	Loaded int `json:"loaded"`
}

// NewLoadCommand creates the load command, which commits a YAML data
// document into the store.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath, dataPath string

	cmd := &cobra.Command{
		Use:           "load",
		Short:         "Load a YAML data document into the store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, cmd, dbPath, dataPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the store database (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "YAML data document (required)")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("data")

	return cmd
}

func runLoad(opts *RootOptions, cmd *cobra.Command, dbPath, dataPath string) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	statements, err := LoadData(dataPath)
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

	txn, err := st.Begin(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "starting transaction", err)
	}
	defer txn.Rollback()
	for _, s := range statements {
		if err := txn.Add(ctx, s); err != nil {
			return WrapExitError(ExitCommandError, "adding statement", err)
		}
	}
	if err := txn.Commit(); err != nil {
		return WrapExitError(ExitCommandError, "committing", err)
	}

	formatter.VerboseLog("Loaded %d statement(s) into %s", len(statements), dbPath)
	if formatter.Format == "json" {
		return formatter.Success(LoadResult{Loaded: len(statements)})
	}
	fmt.Fprintf(formatter.Writer, "Loaded %d statement(s)\n", len(statements))
	return nil
}
