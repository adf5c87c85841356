package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-music-cluster-explorer/internal/catalog"
	"github.com/justestif/go-music-cluster-explorer/internal/charts"
	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
	"github.com/justestif/go-music-cluster-explorer/internal/insights"
)

const (
	pageTitle      = "Music Cluster Explorer"
	exportFilename = "clustered_songs_final.csv"
)

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	sessions  *SessionStore
	templates *Templates
	themes    *catalog.Catalog
	explorer  *explorer.Explorer
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *SessionStore, templates *Templates, themes *catalog.Catalog, ex *explorer.Explorer, logger *slog.Logger) *Handlers {
	return &Handlers{
		sessions:  sessions,
		templates: templates,
		themes:    themes,
		explorer:  ex,
		logger:    logger,
	}
}

// Home handles the dashboard page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Ensure(w, r)
	session.Lock()
	defer session.Unlock()

	data := HomePageData{
		PageData: PageData{
			Title:       pageTitle,
			CurrentPath: r.URL.Path,
		},
	}

	if session.DatasetErr != nil {
		h.logger.Error("dataset unavailable", "session", session.ID, "err", session.DatasetErr)
		data.Flash = &FlashMessage{Type: "error", Message: session.DatasetErr.Error()}
		h.render(w, "home", data)
		return
	}

	// Without cluster ids there is no gallery, but insights still report which
	// sections were skipped and the export still works.
	data.DatasetLoaded = true
	if tiles, err := h.tiles(session); err != nil {
		h.logger.Warn("gallery unavailable", "session", session.ID, "err", err)
		data.Flash = &FlashMessage{Type: "error", Message: err.Error()}
	} else {
		data.Tiles = tiles
		data.Selection = h.selectionData(&session.State)
	}

	query := r.URL.Query()
	if query.Get("insights") == "1" {
		report, err := insights.Build(r.Context(), session.Dataset, query.Get("feature"))
		if err != nil {
			h.logger.Error("building insights", "session", session.ID, "err", err)
			data.Flash = &FlashMessage{Type: "warning", Message: "Insights could not be computed."}
		} else {
			for _, warning := range report.Warnings {
				h.logger.Warn("insight section skipped", "session", session.ID, "warning", warning)
			}
			data.ShowInsights = true
			data.Insights = report
			data.ChartsJS = charts.AssetsHost + "echarts.min.js"
		}
	}

	h.render(w, "home", data)
}

// Explore selects a cluster and fetches sample tracks (POST /clusters/{id}/explore).
func (h *Handlers) Explore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		http.Error(w, "Invalid cluster id", http.StatusBadRequest)
		return
	}

	session := h.sessions.Ensure(w, r)
	session.Lock()
	defer session.Unlock()

	if session.DatasetErr != nil {
		http.Error(w, "Dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	ids, err := session.Dataset.ClusterIDs()
	if err != nil || !slices.Contains(ids, id) {
		http.Error(w, "Unknown cluster", http.StatusNotFound)
		return
	}

	h.explorer.Explore(r.Context(), &session.State, id)
	h.respondTracks(w, r, session, true)
}

// Shuffle fetches a new batch for the current selection (POST /shuffle).
func (h *Handlers) Shuffle(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Ensure(w, r)
	session.Lock()
	defer session.Unlock()

	if session.DatasetErr != nil {
		http.Error(w, "Dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := h.explorer.Shuffle(r.Context(), &session.State); err != nil {
		if errors.Is(err, explorer.ErrNoSelection) {
			http.Error(w, "Explore a cluster before shuffling", http.StatusConflict)
			return
		}
		http.Error(w, "Shuffle failed", http.StatusInternalServerError)
		return
	}
	h.respondTracks(w, r, session, false)
}

// Export downloads the session dataset as CSV (GET /export.csv).
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Ensure(w, r)
	session.Lock()
	defer session.Unlock()

	if session.DatasetErr != nil {
		http.Error(w, "Dataset unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	if err := session.Dataset.WriteCSV(w); err != nil {
		h.logger.Error("exporting dataset", "session", session.ID, "err", err)
	}
}

// clusterJSON is one gallery entry in the clusters API.
type clusterJSON struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Query    string `json:"query"`
	Songs    int    `json:"songs"`
	Mood     string `json:"mood,omitempty"`
}

// Clusters returns the gallery as JSON (GET /api/clusters).
func (h *Handlers) Clusters(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Ensure(w, r)
	session.Lock()
	defer session.Unlock()

	if session.DatasetErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": session.DatasetErr.Error()})
		return
	}

	tiles, err := h.tiles(session)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	out := make([]clusterJSON, len(tiles))
	for i, t := range tiles {
		out[i] = clusterJSON{
			ID:       t.ID,
			Name:     t.Name,
			ImageURL: t.ImageURL,
			Query:    h.themes.Lookup(t.ID).SearchQuery(),
			Songs:    t.Songs,
			Mood:     t.Mood,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Healthz reports liveness (GET /healthz).
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// respondTracks renders the track grid for HTMX requests and redirects otherwise.
// With withGallery the gallery is swapped out of band so the selected tile follows
// the selection.
func (h *Handlers) respondTracks(w http.ResponseWriter, r *http.Request, session *Session, withGallery bool) {
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := HomePageData{Selection: h.selectionData(&session.State)}
	if withGallery {
		if tiles, err := h.tiles(session); err != nil {
			h.logger.Error("building gallery", "session", session.ID, "err", err)
		} else {
			data.Tiles = tiles
			data.SwapOOB = true
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.RenderPartial(w, "explore", data); err != nil {
		h.logger.Error("rendering tracks", "err", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// tiles builds the gallery for the session's clusters. Mood and size come from
// the cluster profiles; a dataset without the mood features still gets tiles.
func (h *Handlers) tiles(session *Session) ([]TileData, error) {
	ids, err := session.Dataset.ClusterIDs()
	if err != nil {
		return nil, err
	}

	profiles := make(map[int]clustering.Profile)
	if ps, err := clustering.MoodProfiles(session.Dataset); err == nil {
		for _, p := range ps {
			profiles[p.ID] = p
		}
	} else {
		h.logger.Debug("cluster moods unavailable", "err", err)
	}

	sizes := make(map[int]int)
	if labels, err := session.Dataset.Clusters(); err == nil {
		for _, l := range labels {
			sizes[l]++
		}
	}

	selected := -1
	if st := session.State; st.Selected() {
		selected = st.Selection.ClusterID
	}

	gallery := h.themes.Gallery(ids)
	tiles := make([]TileData, len(gallery))
	for i, tile := range gallery {
		td := TileData{
			ID:       tile.ClusterID,
			Name:     tile.Theme.Name,
			ImageURL: tile.Theme.ImageURL,
			Songs:    sizes[tile.ClusterID],
			Selected: tile.ClusterID == selected,
		}
		if p, ok := profiles[tile.ClusterID]; ok {
			mood := p.Mood()
			td.Mood = mood.Name
			td.Energy = mood.Energy
			td.Valence = mood.Valence
			td.HasMood = true
		}
		tiles[i] = td
	}
	return tiles, nil
}

// selectionData converts the session selection for templates. Nil without one.
func (h *Handlers) selectionData(st *explorer.State) *SelectionData {
	if !st.Selected() {
		return nil
	}
	sel := st.Selection

	data := &SelectionData{
		ClusterID: sel.ClusterID,
		Name:      h.themes.Lookup(sel.ClusterID).Name,
		Query:     sel.Query,
	}
	if len(sel.Tracks) == 0 {
		data.Empty = explorer.NoticeNoSongs.String()
	}
	// An empty grid always reads "No songs found"; failures add their own notice.
	if sel.Notice == explorer.NoticeAuth || sel.Notice == explorer.NoticeUnavailable {
		data.Notice = sel.Notice.String()
	}
	for _, t := range sel.Grid() {
		data.Tracks = append(data.Tracks, TrackData{
			Name:       t.Name,
			Artist:     t.Artist,
			CoverURL:   t.Cover(),
			PreviewURL: t.PreviewURL,
		})
	}
	return data
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("rendering template", "page", page, "err", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
