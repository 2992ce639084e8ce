package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"github.com/verdant/plantimport/internal/ioimport"
	"github.com/verdant/plantimport/pkg/logger"
	"github.com/verdant/plantimport/pkg/parserpool"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/progress"
	"github.com/verdant/plantimport/pkg/record"
)

// maxImportSize caps the accepted CSV payload.
const maxImportSize = 10 << 20

func getRunCmd() *cobra.Command {
	var (
		typeFlag   string
		userFlag   string
		formatFlag string
		sqlitePath string
	)

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Import a CSV file into the catalog",
		Long: `Run imports a CSV file of plant records into the catalog.

The import type selects the expected row shape:
  - taxonomy:    family, genus, species, cultivar, common name
  - instance:    taxonomy columns plus nickname, location,
                 fertilizer schedule, acquired date, last fertilized
  - propagation: taxonomy columns plus source type, external source,
                 parent plant, date started

Each row is validated, fuzzy-matched against the existing catalog and
either imported, reported as a conflict or rejected with an error. A
failing row never aborts the rest of the file.

Examples:
  plantimport run plants.csv --type taxonomy
  plantimport run shelf.csv -t instance -u alice
  plantimport run cuttings.csv -t propagation --format json
  plantimport run plants.csv -t taxonomy --sqlite catalog.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args[0], typeFlag, userFlag, formatFlag, sqlitePath)
		},
	}

	runCmd.Flags().StringVarP(&typeFlag, "type", "t", "",
		"import type: taxonomy, instance or propagation (required)")
	runCmd.Flags().StringVarP(&userFlag, "user", "u", "local",
		"user the imported records belong to")
	runCmd.Flags().StringVarP(&formatFlag, "format", "F", "text",
		"summary output format: text or json")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "",
		"use a single-file SQLite catalog instead of PostgreSQL")
	_ = runCmd.MarkFlagRequired("type")

	return runCmd
}

func runRun(
	path, typeFlag, userFlag, formatFlag, sqlitePath string,
) error {
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
	if len(data) > maxImportSize {
		err = fmt.Errorf(
			"file too large: %s (limit %s)",
			humanize.Bytes(uint64(len(data))),
			humanize.Bytes(uint64(maxImportSize)),
		)
		gn.Warn("%s", err.Error())
		return err
	}

	store, cleanup, err := openStore(ctx, sqlitePath)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer cleanup()

	prog := progress.NewStore(cfg.Progress.Retention)
	prog.Start(cfg.Progress.SweepInterval)
	defer prog.Stop()

	parser := parserpool.NewPool(cfg.JobsNumber)
	defer parser.Close()

	log := logger.New(&cfg.Logging)
	imp := ioimport.New(cfg, store, prog, parser, log)

	jobID, err := imp.StartImport(ctx, pipeline.Request{
		FileName:   filepath.Base(path),
		Data:       data,
		ImportType: typ,
		UserID:     userFlag,
	})
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	p := pollUntilDone(imp, jobID)

	if formatFlag == "json" {
		enc := gnfmt.GNjson{Pretty: true}
		out, err := enc.Encode(p.Summary)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		printSummary(p)
	}

	if p.Status == progress.StatusFailed {
		return errors.New("import failed")
	}
	return nil
}

// pollUntilDone follows the job through the progress store, driving a
// terminal bar until the job reaches an end state.
func pollUntilDone(
	imp pipeline.Importer,
	jobID string,
) progress.ImportProgress {
	p, _ := imp.Progress(jobID)

	bar := pb.Full.Start(p.TotalRows)
	bar.Set("prefix", "Importing rows: ")
	bar.Set(pb.CleanOnFinish, true)

	for {
		p, _ = imp.Progress(jobID)
		bar.SetCurrent(int64(p.ProcessedRows))
		if p.Status.Terminal() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	bar.Finish()

	return p
}

func printSummary(p progress.ImportProgress) {
	s := p.Summary
	if s == nil {
		gn.Warn("No summary available for job <em>%s</em>", p.ID)
		return
	}

	gn.Info(`
Import of <em>%s</em> finished with status <em>%s</em> in %s:
  Rows total:      %d
  Imported:        %d
  Skipped:         %d
  Errors:          %d
  Warnings:        %d
  Conflicts:       %d`,
		p.FileName, p.Status,
		gnfmt.TimeString(s.FinishedAt.Sub(s.StartedAt).Seconds()),
		s.TotalRows, s.SuccessfulImports, s.SkippedRows,
		len(s.Errors), len(s.Warnings), len(s.Conflicts),
	)

	for _, e := range s.Errors {
		gn.Warn("row %d [%s]: %s", e.Row, e.Field, e.Message)
	}
	for _, w := range s.Warnings {
		gn.Info("row %d [%s]: %s", w.Row, w.Field, w.Message)
	}
	for _, c := range s.Conflicts {
		gn.Warn("row %d <em>%s</em>: %s (suggested: %s)",
			c.Row, c.Type, c.Message, c.SuggestedAction)
	}
}
