package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/pipeline"
	"github.com/desertthunder/songdash/internal/shared"
)

const (
	DefaultDisplayCap = 50
	DefaultTopN       = 10
)

// State is the lifecycle state of a [Session].
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one load. Tickets increase monotonically per session.
type Ticket uint64

// Fetcher produces a snapshot from the catalog.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context) (*models.Snapshot, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*models.Snapshot, error) {
	return f(ctx)
}

// Options configures the derived view.
type Options struct {
	DisplayCap int
	TopN       int
}

// derived holds everything computed once per snapshot.
type derived struct {
	genres      models.FacetSet
	artists     models.FacetSet
	localGenres models.Aggregate
	localArtist models.Aggregate
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	opts     Options
	state    State
	next     Ticket
	pending  Ticket
	snapshot *models.Snapshot
	derived  derived
	err      error
}

// New creates an idle session. Non-positive options fall back to the defaults.
func New(opts Options) *Session {
	if opts.DisplayCap <= 0 {
		opts.DisplayCap = DefaultDisplayCap
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	return &Session{opts: opts}
}

// Options returns the session's effective options.
func (s *Session) Options() Options {
	return s.opts
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error of the last failed load, or nil.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot returns the current snapshot, or nil before the first successful load.
func (s *Session) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Begin enters Loading and returns the ticket the matching [Session.Complete] must present.
//
// Any earlier outstanding ticket becomes stale.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.pending = s.next
	s.state = Loading
	return s.pending
}

// Complete applies the outcome of the load identified by t and reports whether it was applied.
//
// A nil snapshot without an error counts as a failure.
func (s *Session) Complete(t Ticket, snap *models.Snapshot, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == 0 || t != s.pending {
		return false
	}
	s.pending = 0

	if err == nil && snap == nil {
		err = shared.ErrEmptySnapshot
	}
	if err != nil {
		s.state = Failed
		s.err = err
		s.snapshot = nil
		s.derived = derived{}
		return true
	}

	s.state = Ready
	s.err = nil
	s.snapshot = snap
	s.derived = derive(snap)
	return true
}

// Load runs one Begin/Fetch/Complete cycle.
//
// If a newer load started meanwhile the result is dropped and the error wraps [shared.ErrStaleSnapshot].
func (s *Session) Load(ctx context.Context, f Fetcher) error {
	t := s.Begin()
	snap, err := f.Fetch(ctx)
	if !s.Complete(t, snap, err) {
		return fmt.Errorf("%w: load %d", shared.ErrStaleSnapshot, t)
	}
	if err != nil {
		return err
	}
	if snap == nil {
		return shared.ErrEmptySnapshot
	}
	return nil
}

// Dashboard assembles the view for sel from the current snapshot.
func (s *Session) Dashboard(sel models.FilterSelection) (*Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case Ready:
	case Failed:
		return nil, fmt.Errorf("%w: %w", shared.ErrNotReady, s.err)
	default:
		return nil, fmt.Errorf("%w: session is %s", shared.ErrNotReady, s.state)
	}

	snap := s.snapshot
	filtered := pipeline.ApplyFilter(snap.Tracks, sel)

	return &Dashboard{
		SnapshotID:      snap.ID,
		FetchedAt:       snap.FetchedAt,
		TopArtists:      pipeline.TopN(snap.TopArtists, s.opts.TopN),
		TopGenres:       pipeline.TopN(snap.TopGenres, s.opts.TopN),
		LocalTopArtists: pipeline.TopN(s.derived.localArtist, s.opts.TopN),
		LocalTopGenres:  pipeline.TopN(s.derived.localGenres, s.opts.TopN),
		Genres:          s.derived.genres,
		Artists:         s.derived.artists,
		Selection:       sel,
		View:            pipeline.Bound(filtered, s.opts.DisplayCap),
	}, nil
}

func derive(snap *models.Snapshot) derived {
	return derived{
		genres:      pipeline.FacetValues(snap.Tracks, models.FieldGenre),
		artists:     pipeline.FacetValues(snap.Tracks, models.FieldArtist),
		localGenres: pipeline.CountBy(snap.Tracks, models.FieldGenre),
		localArtist: pipeline.CountBy(snap.Tracks, models.FieldArtist),
	}
}
