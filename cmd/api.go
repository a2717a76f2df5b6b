package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songdash/internal/catalog"
	"github.com/desertthunder/songdash/internal/formatter"
	"github.com/desertthunder/songdash/internal/services"
	"github.com/desertthunder/songdash/internal/shared"
)

// APIGet makes a direct GET request to the catalog API.
//
// The body is printed as received (indented when --pretty) so object key order survives.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	body := resp.Body
	if resp.IsJSON && cmd.Bool("pretty") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}

	r.output.Write(bytes.TrimRight(body, "\n"))
	r.output.Write([]byte("\n"))
	return nil
}

// APIHealth checks the catalog API.
func (r *Runner) APIHealth(ctx context.Context, cmd *cli.Command) error {
	health, err := services.NewCatalogClient(r.api).Health(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s is %s\n", r.api.BaseURL(), health.Status)
	r.writePlain("Rows: %d\n", health.Rows)
	r.writePlain("Columns: %s\n", strings.Join(health.Columns, ", "))
	return nil
}

// APICorrelation prints the correlation matrix served by the catalog API.
func (r *Runner) APICorrelation(ctx context.Context, cmd *cli.Command) error {
	corr, err := services.NewCatalogClient(r.api).Correlation(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(corr, true)
	}

	var cols []string
	for _, c := range catalog.CorrelationColumns {
		if _, ok := corr[c]; ok {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		r.writePlain("No data\n")
		return nil
	}

	r.writePlain("%-14s", "")
	for _, c := range cols {
		r.writePlain("%14s", c)
	}
	r.writePlain("\n")
	for _, row := range cols {
		r.writePlain("%-14s", row)
		for _, col := range cols {
			r.writePlain("%14s", formatter.Number(corr[row][col]))
		}
		r.writePlain("\n")
	}
	return nil
}
