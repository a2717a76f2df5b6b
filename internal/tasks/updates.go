package tasks

import (
	"fmt"

	"github.com/desertthunder/songdash/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchArtists Phase = iota
	FetchGenres
	FetchTracks
	BuildSnapshot
	ReadCatalog
	StoreCatalog
	RecordImport
)

func (p Phase) String() string {
	switch p {
	case FetchArtists:
		return "fetch_artists"
	case FetchGenres:
		return "fetch_genres"
	case FetchTracks:
		return "fetch_tracks"
	case BuildSnapshot:
		return "build_snapshot"
	case ReadCatalog:
		return "read_catalog"
	case StoreCatalog:
		return "store_catalog"
	case RecordImport:
		return "record_import"
	default:
		return ""
	}
}

func fetchingUpdate(phase Phase, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", phase.resource()),
	}
}

func fetchedUpdate(phase Phase, step, total, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched %d %s", step, total, n, phase.resource()),
	}
}

func fetchFailedUpdate(phase Phase, step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, phase.resource(), err),
	}
}

func snapshotUpdate(snap *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshot ready: %d tracks", len(snap.Tracks)),
		Data:    snap,
	}
}

func readCatalogUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadCatalog,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Reading %s...", source),
	}
}

func storeCatalogUpdate(rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreCatalog,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Storing %d tracks...", rows),
	}
}

func importRecordedUpdate(rec *models.ImportRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordImport,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("✓ Imported %d tracks from %s", rec.Rows, rec.Source),
		Data:    rec,
	}
}

func (p Phase) resource() string {
	switch p {
	case FetchArtists:
		return "top artists"
	case FetchGenres:
		return "top genres"
	case FetchTracks:
		return "tracks"
	default:
		return p.String()
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
