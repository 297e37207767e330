package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"moneta/internal/backend"
	"moneta/internal/cli"
	apphttp "moneta/internal/http"
	"moneta/internal/log"
	"moneta/internal/store"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cli.SignalContext(cmd.Context(), a.logger)
			defer cancel()

			return a.withStore(ctx, func(st *store.Store) error {
				srv, err := apphttp.NewServer(":"+a.cfg.Port, st, apphttp.Options{
					Logger:           a.logger,
					SummaryCacheSize: a.cfg.SummaryCacheSize,
					SummaryCacheTTL:  a.cfg.SummaryCacheTTL,
				})
				if err != nil {
					return err
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					a.logger.Info("Starting moneta server", "port", a.cfg.Port, "backend", a.cfg.DataBackend)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("server error: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer shutdownCancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						a.logger.Error("Server shutdown error", log.FieldError, err)
						return err
					}
					a.logger.Info("Server stopped gracefully")
					return nil
				})
				return g.Wait()
			})
		},
	}
}

func newRepairCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Assign ids to stored transactions that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bcfg, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}
			// notifications are pointless for a raw storage pass
			bcfg.AMQPURL = ""
			res, err := backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			st := store.New(res.KV, store.WithKey(a.cfg.StorageKey), store.WithLogger(a.logger))
			fixed := st.RepairStorage(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "fixed %d transactions\n", fixed)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals, the category breakdown and the monthly series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return printJSON(cmd.OutOrStdout(), st.Summary(cmd.Context()))
			})
		},
	}
}

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return printJSON(cmd.OutOrStdout(), st.State())
			})
		},
	}
}

func newDemoCmd(a *app) *cobra.Command {
	demo := &cobra.Command{
		Use:   "demo",
		Short: "Load or clear the demo dataset",
	}
	demo.AddCommand(
		&cobra.Command{
			Use:   "load",
			Short: "Replace all transactions with the demo dataset",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(st *store.Store) error {
					return printResult(cmd.OutOrStdout(), st.LoadDemoData(cmd.Context()))
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every transaction",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(st *store.Store) error {
					return printResult(cmd.OutOrStdout(), st.ClearDemoData(cmd.Context()))
				})
			},
		},
	)
	return demo
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions and categories from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var payload store.ImportPayload
			if err := json.Unmarshal(b, &payload); err != nil {
				return fmt.Errorf("parse import file %s: %w", args[0], err)
			}
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return printResult(cmd.OutOrStdout(), st.ImportData(cmd.Context(), payload))
			})
		},
	}
}

func newModeCmd(a *app) *cobra.Command {
	mode := &cobra.Command{
		Use:   "mode",
		Short: "Display mode preference",
	}
	mode.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return printResult(cmd.OutOrStdout(), st.ToggleDisplayMode(cmd.Context()))
			})
		},
	})
	return mode
}
