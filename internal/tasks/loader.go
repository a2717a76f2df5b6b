package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/services"
	"github.com/desertthunder/songdash/internal/shared"
)

// LoaderOpts configures a [SnapshotLoader].
type LoaderOpts struct {
	TopN       int     // Buckets requested per aggregate (default: 10)
	TrackLimit int     // Raw tracks requested (default: 1000)
	RateLimit  float64 // Requests per second (default: 5)
}

// SnapshotLoader fetches the three dashboard payloads and assembles a [models.Snapshot].
//
// It satisfies session.Fetcher.
type SnapshotLoader struct {
	catalog services.Catalog
	opts    LoaderOpts
	limiter *rate.Limiter
	logger  *log.Logger
	now     func() time.Time
}

// NewSnapshotLoader creates a loader over catalog. A nil logger discards log output.
func NewSnapshotLoader(catalog services.Catalog, opts LoaderOpts, logger *log.Logger) *SnapshotLoader {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.TrackLimit <= 0 {
		opts.TrackLimit = 1000
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &SnapshotLoader{
		catalog: catalog,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch loads a snapshot without progress reporting.
func (l *SnapshotLoader) Fetch(ctx context.Context) (*models.Snapshot, error) {
	return l.Load(ctx, nil)
}

// Load fetches top artists, top genres and tracks concurrently, paced by the loader's rate limiter.
//
// Any failed request fails the whole load; the remaining requests are canceled.
func (l *SnapshotLoader) Load(ctx context.Context, progress chan<- ProgressUpdate) (*models.Snapshot, error) {
	if l.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	snap := &models.Snapshot{ID: shared.GenerateID()}
	started := l.now()

	jobs := []struct {
		phase Phase
		run   func(ctx context.Context) (int, error)
	}{
		{FetchArtists, func(ctx context.Context) (int, error) {
			agg, err := l.catalog.TopArtists(ctx, l.opts.TopN)
			snap.TopArtists = agg
			return len(agg), err
		}},
		{FetchGenres, func(ctx context.Context) (int, error) {
			agg, err := l.catalog.TopGenres(ctx, l.opts.TopN)
			snap.TopGenres = agg
			return len(agg), err
		}},
		{FetchTracks, func(ctx context.Context) (int, error) {
			records, err := l.catalog.Tracks(ctx, services.TrackQuery{Limit: l.opts.TrackLimit})
			snap.Tracks = records
			return len(records), err
		}},
	}
	total := len(jobs)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
		errs []error
	)
	for _, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sendProgress(progress, fetchingUpdate(job.phase, total))
			if err := l.limiter.Wait(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", job.phase, err))
				mu.Unlock()
				return
			}

			n, err := job.run(ctx)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				err = fmt.Errorf("%s: %w", job.phase, err)
				errs = append(errs, err)
				cancel(err)
				sendProgress(progress, fetchFailedUpdate(job.phase, done, total, err))
				return
			}
			sendProgress(progress, fetchedUpdate(job.phase, done, total, n))
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			l.logger.Error("snapshot load failed", "snapshot", snap.ID, "error", cause)
			return nil, cause
		}
		err := errors.Join(errs...)
		l.logger.Error("snapshot load failed", "snapshot", snap.ID, "error", err)
		return nil, err
	}

	if snap.TopArtists == nil {
		snap.TopArtists = models.Aggregate{}
	}
	if snap.TopGenres == nil {
		snap.TopGenres = models.Aggregate{}
	}
	if snap.Tracks == nil {
		snap.Tracks = []models.TrackRecord{}
	}
	snap.FetchedAt = l.now()

	l.logger.Info("snapshot loaded",
		"snapshot", snap.ID,
		"tracks", len(snap.Tracks),
		"artists", len(snap.TopArtists),
		"genres", len(snap.TopGenres),
		"elapsed", snap.FetchedAt.Sub(started),
	)
	sendProgress(progress, snapshotUpdate(snap))
	return snap, nil
}
