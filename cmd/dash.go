package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songdash/internal/formatter"
	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/server"
	"github.com/desertthunder/songdash/internal/session"
	"github.com/desertthunder/songdash/internal/shared"
	"github.com/desertthunder/songdash/internal/tasks"
	"github.com/desertthunder/songdash/internal/web"
)

const chartWidth = 30

func selectionFrom(cmd *cli.Command) models.FilterSelection {
	return models.FilterSelection{Genre: cmd.String("genre"), Artist: cmd.String("artist")}
}

// fetchDashboard loads one snapshot into a fresh session and assembles the dashboard for sel.
// Progress is printed unless quiet is set.
func (r *Runner) fetchDashboard(ctx context.Context, sel models.FilterSelection, opts session.Options, quiet bool) (*session.Dashboard, error) {
	sess := session.New(opts)
	loader := r.newLoader(r.logger)

	var progress chan tasks.ProgressUpdate
	done := make(chan struct{})
	if quiet {
		close(done)
	} else {
		progress = make(chan tasks.ProgressUpdate, 10)
		go r.printProgress(progress, done)
	}

	ticket := sess.Begin()
	snap, err := loader.Load(ctx, progress)
	if progress != nil {
		close(progress)
	}
	<-done

	sess.Complete(ticket, snap, err)
	return sess.Dashboard(sel)
}

func (r *Runner) sessionOptions() session.Options {
	return session.Options{
		DisplayCap: r.config.Dashboard.DisplayCap,
		TopN:       r.config.Dashboard.TopN,
	}
}

// DashShow prints the Top-N charts and the bounded filtered table.
func (r *Runner) DashShow(ctx context.Context, cmd *cli.Command) error {
	opts := r.sessionOptions()
	if top := cmd.Int("top"); top != 0 {
		if top < 0 {
			return fmt.Errorf("%w: --top must be positive", shared.ErrInvalidFlag)
		}
		opts.TopN = top
	}
	useJSON := cmd.Bool("json")

	dash, err := r.fetchDashboard(ctx, selectionFrom(cmd), opts, useJSON)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(dash, cmd.Bool("pretty"))
	}

	artists, genres, source := dash.TopArtists, dash.TopGenres, "catalog"
	if cmd.Bool("local") {
		artists, genres, source = dash.LocalTopArtists, dash.LocalTopGenres, "snapshot"
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Snapshot %s", dash.SnapshotID))

	r.writePlain("\nTop artists (%s counts)\n", source)
	for _, line := range formatter.Bars(artists, chartWidth) {
		r.writePlain("  %s\n", line)
	}
	r.writePlain("\nTop genres (%s counts)\n", source)
	for _, line := range formatter.Bars(genres, chartWidth) {
		r.writePlain("  %s\n", line)
	}

	r.writePlain("\nFilters: %s\n", formatter.Selection(dash.Selection))
	r.writePlain("%s\n\n", formatter.Summary(dash.View))

	if len(dash.View.Shown) == 0 {
		r.writePlain("No data\n")
		return nil
	}
	for i, t := range dash.View.Shown {
		r.writePlain("%d. %s - %s\n", i+1, formatter.Text(t.Artist), formatter.Text(t.TrackName))
		r.writePlain("   Genre: %s  Popularity: %s  Minutes: %s\n", formatter.Text(t.Genre), formatter.Number(t.Popularity), formatter.Duration(t.DurationMs))
	}
	return nil
}

// DashExport writes the bounded filtered view to a file.
func (r *Runner) DashExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	dash, err := r.fetchDashboard(ctx, selectionFrom(cmd), r.sessionOptions(), false)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(format, dash.View, dash.Selection, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("view exported", "path", path, "rows", dash.View.Displayed, "format", format)
	r.writePlain("✓ Exported %d of %d matching tracks to %s\n", dash.View.Displayed, dash.View.TotalMatched, path)
	return nil
}

// DashWeb serves the browser dashboard until interrupted.
func (r *Runner) DashWeb(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	addr := fmt.Sprintf("%s:%d", host, cmd.Int("port"))

	logger := shared.WithLogger(r.logger, "component", "web")
	sess := session.New(r.sessionOptions())
	h := web.NewHandler(ctx, sess, r.newLoader(logger), logger)
	h.Reload()
	defer h.Wait()

	url := "http://" + addr
	r.writePlain("Dashboard at %s (catalog API %s)\n", url, r.api.BaseURL())
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			logger.Warn("failed to open browser automatically", "error", err)
		}
	}

	return server.ListenAndServe(ctx, addr, web.NewRouter(h, logger), logger)
}
