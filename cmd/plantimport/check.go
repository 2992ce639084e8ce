package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"github.com/verdant/plantimport/internal/ioimport"
	"github.com/verdant/plantimport/pkg/logger"
	"github.com/verdant/plantimport/pkg/parserpool"
	"github.com/verdant/plantimport/pkg/progress"
	"github.com/verdant/plantimport/pkg/record"
)

func getCheckCmd() *cobra.Command {
	var (
		typeFlag   string
		formatFlag string
		sqlitePath string
	)

	checkCmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a CSV file without importing anything",
		Long: `Check runs the full validation and matching pipeline on a CSV file
without writing anything to the catalog.

The report lists every row-level error, warning and conflict a real
import would produce. The command exits with a non-zero status when
the file contains blocking errors.

Examples:
  plantimport check plants.csv --type taxonomy
  plantimport check shelf.csv -t instance --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], typeFlag, formatFlag, sqlitePath)
		},
	}

	checkCmd.Flags().StringVarP(&typeFlag, "type", "t", "",
		"import type: taxonomy, instance or propagation (required)")
	checkCmd.Flags().StringVarP(&formatFlag, "format", "F", "text",
		"report output format: text or json")
	checkCmd.Flags().StringVar(&sqlitePath, "sqlite", "",
		"use a single-file SQLite catalog instead of PostgreSQL")
	_ = checkCmd.MarkFlagRequired("type")

	return checkCmd
}

func runCheck(path, typeFlag, formatFlag, sqlitePath string) error {
	ctx := context.Background()
	cfg := getConfig()

	typ, ok := record.ParseImportType(typeFlag)
	if !ok {
		err := ioimport.ImportTypeError(typeFlag)
		gn.PrintErrorMessage(err)
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		gn.Warn("Cannot read <em>%s</em>", path)
		return err
	}

	store, cleanup, err := openStore(ctx, sqlitePath)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer cleanup()

	prog := progress.NewStore(cfg.Progress.Retention)
	defer prog.Stop()

	parser := parserpool.NewPool(cfg.JobsNumber)
	defer parser.Close()

	log := logger.New(&cfg.Logging)
	imp := ioimport.New(cfg, store, prog, parser, log)

	report, err := imp.ValidateOnly(ctx, data, typ)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if formatFlag == "json" {
		enc := gnfmt.GNjson{Pretty: true}
		out, err := enc.Encode(report)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		gn.Info(`
Checked <em>%s</em>:
  Rows:      %d
  Errors:    %d
  Conflicts: %d`,
			path, report.RecordCount,
			len(report.Errors), len(report.Conflicts),
		)
		for _, e := range report.Errors {
			gn.Warn("row %d [%s]: %s", e.Row, e.Field, e.Message)
		}
		for _, c := range report.Conflicts {
			gn.Warn("row %d <em>%s</em>: %s (suggested: %s)",
				c.Row, c.Type, c.Message, c.SuggestedAction)
		}
	}

	if record.HasBlocking(report.Errors) {
		return errors.New("file contains blocking errors")
	}
	return nil
}
