package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songdash/internal/repositories"
	"github.com/desertthunder/songdash/internal/server"
	"github.com/desertthunder/songdash/internal/shared"
	"github.com/desertthunder/songdash/internal/tasks"
)

// CatalogImport replaces the stored catalog with the rows of --csv.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("csv")
	if path == "" {
		return fmt.Errorf("%w: --csv is required", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	defer f.Close()

	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	importer := tasks.NewImporter(
		repositories.NewTrackRepository(db),
		repositories.NewImportRepository(db),
		shared.WithLogger(r.logger, "component", "importer"),
	)

	r.writePlain("Importing %s...\n", path)
	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	rec, err := importer.Import(ctx, progress, f, filepath.Base(path))
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Rows: %d\n", rec.Rows)
	r.writePlain("Encoding: %s\n", rec.Encoding)
	r.writePlain("Popularity: %s\n", rec.PopularitySource)
	r.writePlain("Duration: %s\n", rec.DurationUnit)
	return nil
}

// CatalogServe serves the catalog API until interrupted.
func (r *Runner) CatalogServe(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}

	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := shared.WithLogger(r.logger, "component", "catalog")
	tracks := repositories.NewTrackRepository(db)
	rows, err := tracks.Count(ctx)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.Warn("catalog is empty; run `songdash catalog import --csv PATH`")
	}

	handler := server.NewCatalogHandler(tracks, repositories.NewImportRepository(db), logger)
	router := server.NewCatalogRouter(handler, server.CatalogRouterOpts{
		AllowOrigins: cfg.AllowOrigins,
		Token:        cfg.Token,
	}, logger)

	r.writePlain("Serving %d tracks at http://%s/api\n", rows, cfg.Addr())
	return server.ListenAndServe(ctx, cfg.Addr(), router, logger)
}

// CatalogHistory lists previous imports, newest first.
func (r *Runner) CatalogHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	imports, err := repositories.NewImportRepository(db).List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(imports, true)
	}

	if len(imports) == 0 {
		r.writePlain("No imports yet\n")
		return nil
	}

	r.writePlain("Found %d imports:\n\n", len(imports))
	for i, rec := range imports {
		r.writePlain("%d. %s (%d rows)\n", i+1, rec.Source, rec.Rows)
		r.writePlain("   Imported: %s\n", rec.ImportedAt.Format("2006-01-02 15:04:05"))
		r.writePlain("   Popularity: %s, Duration: %s, Encoding: %s\n", rec.PopularitySource, rec.DurationUnit, rec.Encoding)
	}
	return nil
}
