package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"moneta/internal/cli"
	"moneta/internal/config"
	"moneta/internal/log"
	"moneta/internal/store"
)

// app carries what every subcommand needs once the root pre-run has run.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "moneta",
		Short:         "Personal finance tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			a.logger = cli.SetupLogger(config.Load().LogLevel).WithComponent(log.ComponentCLI)
			cfg, err := cli.LoadAndValidateConfig(a.logger)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newRepairCmd(a),
		newSummaryCmd(a),
		newStateCmd(a),
		newDemoCmd(a),
		newImportCmd(a),
		newModeCmd(a),
	)
	return root
}

// withStore opens the store, runs fn and releases the backend.
func (a *app) withStore(ctx context.Context, fn func(*store.Store) error) error {
	st, cleanup, err := cli.OpenStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			a.logger.Warn("Closing backend failed", log.FieldError, err)
		}
	}()
	return fn(st)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints the applied value, or fails with the outcome and reason.
func printResult[T any](w io.Writer, res store.Result[T]) error {
	if !res.OK() {
		return fmt.Errorf("%s: %w", res.Outcome, res.Reason)
	}
	return printJSON(w, res.Value)
}
