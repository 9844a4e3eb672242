package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cmrstac/internal/catalog"
	"cmrstac/internal/config"
	"cmrstac/internal/logger"
	"cmrstac/internal/pipeline"
	"cmrstac/internal/storage"
	"cmrstac/internal/watch"
)

type app struct {
	cfg config.Config
	db  *storage.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cmrstac",
		Short:         "Build STAC collections and discovery inputs from CMR search results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

			db, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			a.cfg, a.db = cfg, db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.db == nil {
				return nil
			}
			return a.db.Close()
		},
	}

	root.AddCommand(
		a.fetchCmd(),
		a.buildCmd(),
		a.inventoryCmd(),
		a.runsCmd(),
		a.exportCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "fetch <keyword...>",
		Short:   "Search CMR and write collection and step function input files",
		Example: `  cmrstac fetch "aboveground biomass"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Require("CMR_API_URL", a.cfg.CMRAPIURL); err != nil {
				return err
			}
			keyword := strings.Join(args, " ")
			res, err := catalog.NewSyncService(a.db, a.cfg).Sync(cmd.Context(), keyword)
			if err != nil {
				return err
			}
			previous := res.PreviousSync
			if previous == "" {
				previous = "never"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetch done keyword=%q entries=%d collections=%d run=%s previous_sync=%s\n",
				keyword, res.Entries, res.Collections, res.RunID, previous)
			return nil
		},
	}
}

func (a *app) buildCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write collection and step function input files from a saved CMR response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := catalog.NewSyncService(a.db, a.cfg).Build(cmd.Context(), f, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "build done input=%s entries=%d collections=%d run=%s\n",
				input, res.Entries, res.Collections, res.RunID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "path to a saved collections.json response")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List collections written by previous runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.db.ListCollections()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVERSIONS\tTITLE\tLAST SEEN")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, strings.Join(r.Versions, ","), r.Title, r.LastSeenAt)
			}
			return w.Flush()
		},
	}
}

func (a *app) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := a.db.ListRuns(limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tCREATED\tKEYWORD\tSOURCE\tENTRIES\tCOLLECTIONS")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", r.ID, r.CreatedAt, r.Keyword, r.Source, r.Entries, r.Collections)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection inventory to xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.db.ListCollections()
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("no collections in %s", a.cfg.DBPath)
			}
			if out == "" {
				out = filepath.Join(a.cfg.OutputDir, "inventory.xlsx")
			}
			if err := pipeline.ExportCollectionsToXLSX(rows, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d collections to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output xlsx path (default $OUTPUT_DIR/inventory.xlsx)")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-sync WATCH_KEYWORDS every WATCH_INTERVAL_SEC until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Require("CMR_API_URL", a.cfg.CMRAPIURL); err != nil {
				return err
			}
			svc := watch.NewService(catalog.NewSyncService(a.db, a.cfg), a.cfg)
			return svc.Run(cmd.Context())
		},
	}
}
