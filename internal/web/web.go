// Package web serves the browser dashboard.
//
// The page is rendered server side with html/template from the current [session.Session]:
//
//	GET  /                 dashboard for ?genre=&artist= (loading, failed banner or charts and table)
//	POST /reload           start a new snapshot load, then redirect back to /
//	GET  /dashboard.json   the same dashboard as JSON, 503 until the session is ready
//
// Loads run in the background; while one is in flight the page refreshes itself.
// Only the newest load is applied to the session.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songdash/internal/formatter"
	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/server"
	"github.com/desertthunder/songdash/internal/session"
	"github.com/desertthunder/songdash/internal/shared"
)

// Dashboard paths
const (
	PathIndex  = "/"
	PathReload = "/reload"
	PathJSON   = "/dashboard.json"
)

// barWidth is the pixel width of the longest chart bar.
const barWidth = 320

//go:embed templates/*.html
var templates embed.FS

var page = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"text":     formatter.Text,
	"number":   formatter.Number,
	"duration": formatter.Duration,
	"inc":      func(i int) int { return i + 1 },
}).ParseFS(templates, "templates/*.html"))

type bar struct {
	Label string
	Count string
	Width int
}

type chart struct {
	Title string
	Bars  []bar
}

type pageData struct {
	Loading bool
	Error   string
	Query   string
	Dash    *session.Dashboard
	Charts  []chart
	Summary string
}

// Handler serves the dashboard for one session.
type Handler struct {
	ctx     context.Context
	sess    *session.Session
	fetcher session.Fetcher
	logger  *log.Logger
	routes  map[string]http.Handler
	wg      sync.WaitGroup
}

// NewHandler creates a dashboard over sess. Loads started by the handler use ctx.
func NewHandler(ctx context.Context, sess *session.Session, fetcher session.Fetcher, logger *log.Logger) *Handler {
	h := &Handler{ctx: ctx, sess: sess, fetcher: fetcher, logger: logger}
	h.routes = map[string]http.Handler{
		PathIndex:  server.AllowMethods(http.HandlerFunc(h.index), http.MethodGet),
		PathReload: server.AllowMethods(http.HandlerFunc(h.reload), http.MethodPost),
		PathJSON:   server.AllowMethods(http.HandlerFunc(h.json), http.MethodGet),
	}
	return h
}

func (h *Handler) Routes() []string {
	return []string{PathIndex, PathReload, PathJSON}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, ok := h.routes[r.URL.Path]
	if !ok {
		server.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	route.ServeHTTP(w, r)
}

// Reload starts a snapshot load in the background.
func (h *Handler) Reload() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		err := h.sess.Load(h.ctx, h.fetcher)
		switch {
		case err == nil:
			h.logger.Info("snapshot ready", "id", h.sess.Snapshot().ID)
		case errors.Is(err, shared.ErrStaleSnapshot):
			h.logger.Debug("discarded stale snapshot", "error", err)
		default:
			h.logger.Error("snapshot load failed", "error", err)
		}
	}()
}

// Wait blocks until every load started by [Handler.Reload] has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func selection(q url.Values) models.FilterSelection {
	sel := models.AllSelection()
	if g := q.Get("genre"); g != "" {
		sel.Genre = g
	}
	if a := q.Get("artist"); a != "" {
		sel.Artist = a
	}
	return sel
}

func selectionQuery(sel models.FilterSelection) string {
	q := url.Values{}
	if !models.IsSentinel(sel.Genre) {
		q.Set("genre", sel.Genre)
	}
	if !models.IsSentinel(sel.Artist) {
		q.Set("artist", sel.Artist)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func bars(buckets []models.AggregateBucket) []bar {
	var peak float64
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	out := make([]bar, 0, len(buckets))
	for _, b := range buckets {
		w := 0
		if peak > 0 {
			w = int(math.Round(b.Count / peak * barWidth))
		}
		out = append(out, bar{Label: b.Label, Count: formatter.Number(&b.Count), Width: w})
	}
	return out
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	sel := selection(r.URL.Query())
	data := pageData{Query: selectionQuery(sel)}

	switch h.sess.State() {
	case session.Idle:
		h.Reload()
		data.Loading = true
	case session.Loading:
		data.Loading = true
	}

	dash, err := h.sess.Dashboard(sel)
	switch {
	case err == nil:
		data.Loading = false
		data.Dash = dash
		data.Summary = formatter.Summary(dash.View)
		data.Charts = []chart{
			{Title: "Top artists", Bars: bars(dash.TopArtists)},
			{Title: "Top genres", Bars: bars(dash.TopGenres)},
		}
	case h.sess.State() == session.Failed:
		data.Error = h.sess.Err().Error()
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		server.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	h.Reload()
	http.Redirect(w, r, PathIndex+selectionQuery(selection(r.URL.Query())), http.StatusSeeOther)
}

func (h *Handler) json(w http.ResponseWriter, r *http.Request) {
	dash, err := h.sess.Dashboard(selection(r.URL.Query()))
	if err != nil {
		server.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, dash)
}

// NewRouter wires the dashboard with request logging and panic recovery.
func NewRouter(h *Handler, logger *log.Logger) *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger), server.Recover(logger))
	router.Handler(h)
	return router
}
