package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songdash/internal/catalog"
	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/shared"
)

// CatalogStore persists an imported catalog.
type CatalogStore interface {
	ReplaceAll(ctx context.Context, tracks []models.CatalogTrack, columns []string) error
}

// ImportLog records finished imports.
type ImportLog interface {
	Create(ctx context.Context, rec *models.ImportRecord) error
}

// Importer reads a catalog CSV and replaces the stored catalog with it.
type Importer struct {
	store   CatalogStore
	history ImportLog
	logger  *log.Logger
}

// NewImporter creates an importer. history may be nil.
func NewImporter(store CatalogStore, history ImportLog, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{store: store, history: history, logger: logger}
}

// Import reads r, named source for display, and stores the result.
func (i *Importer) Import(ctx context.Context, progress chan<- ProgressUpdate, r io.Reader, source string) (*models.ImportRecord, error) {
	if i.store == nil {
		return nil, fmt.Errorf("%w: catalog store not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, readCatalogUpdate(source))
	cat, err := catalog.Read(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	if len(cat.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", shared.ErrEmptyCatalog, source)
	}

	i.logger.Debug("catalog parsed",
		"source", source,
		"rows", len(cat.Tracks),
		"encoding", cat.Encoding,
		"popularity", cat.PopularitySource,
		"duration", cat.DurationUnit,
	)

	sendProgress(progress, storeCatalogUpdate(len(cat.Tracks)))
	if err := i.store.ReplaceAll(ctx, cat.Tracks, cat.Columns); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}

	rec := &models.ImportRecord{
		Source:           source,
		Encoding:         cat.Encoding,
		DurationUnit:     cat.DurationUnit,
		PopularitySource: cat.PopularitySource,
		Rows:             len(cat.Tracks),
	}
	if i.history != nil {
		if err := i.history.Create(ctx, rec); err != nil {
			i.logger.Warn("failed to record import", "source", source, "error", err)
		}
	}

	i.logger.Info("catalog imported", "source", source, "rows", rec.Rows)
	sendProgress(progress, importRecordedUpdate(rec))
	return rec, nil
}
