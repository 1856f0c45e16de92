// Package router holds the dashboard's JSON API handlers.
package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/uk-projects-map/internal/cluster"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/config"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/dataset"
	"github.com/mohammed-shakir/uk-projects-map/internal/fallback"
	"github.com/mohammed-shakir/uk-projects-map/internal/format"
	"github.com/mohammed-shakir/uk-projects-map/internal/legend"
	"github.com/mohammed-shakir/uk-projects-map/internal/logger"
	"github.com/mohammed-shakir/uk-projects-map/internal/markers"
	"github.com/mohammed-shakir/uk-projects-map/internal/project"
)

type API struct {
	cfg     config.Config
	store   *dataset.Store
	markers *markers.Service
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg config.Config, store *dataset.Store, svc *markers.Service, lg *slog.Logger) *API {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	return &API{cfg: cfg, store: store, markers: svc, logger: lg, now: time.Now}
}

// Mount registers the /api routes on r.
func (a *API) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", a.Config)
		r.Get("/projects", a.Projects)
		r.Get("/projects/{id}", a.Project)
		r.Get("/stats", a.Stats)
		r.Get("/markers", a.Markers)
		r.Get("/markers.geojson", a.MarkersGeoJSON)
		r.Get("/fallback", a.Fallback)
	})
}

type configResponse struct {
	MapAvailable    bool               `json:"mapAvailable"`
	MapboxToken     string             `json:"mapboxToken,omitempty"`
	Bounds          model.Bounds       `json:"bounds"`
	DefaultViewport model.Viewport     `json:"defaultViewport"`
	Strategy        string             `json:"strategy"`
	Legend          legend.Legend      `json:"legend"`
	SortModes       []project.SortMode `json:"sortModes"`
}

func (a *API) Config(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		MapAvailable:    a.cfg.MapboxToken != "",
		MapboxToken:     a.cfg.MapboxToken,
		Bounds:          model.UKBounds,
		DefaultViewport: model.UKDefaultViewport,
		Strategy:        a.markers.Strategy(),
		Legend:          legend.Default(),
		SortModes:       project.SortModes,
	})
}

// projectView is a project plus the strings the list and detail panels show.
type projectView struct {
	*model.Project
	Display display `json:"display"`
}

type display struct {
	Investment    string `json:"investment"`
	Jobs          string `json:"jobs"`
	Announced     string `json:"announced"`
	AnnouncedLong string `json:"announcedLong"`
	AnnouncedAgo  string `json:"announcedAgo"`
	Completion    string `json:"completion,omitempty"`
}

func (a *API) view(p *model.Project) projectView {
	t := p.Timeline
	d := display{
		Investment:    format.Currency(p.Investment.Amount),
		Jobs:          format.Number(int64(p.Employment.JobsCreated)),
		Announced:     format.Date(t.AnnouncementDate),
		AnnouncedLong: format.DateLong(t.AnnouncementDate),
		AnnouncedAgo:  format.RelativeTime(t.AnnouncementDate, a.now()),
	}
	if t.ExpectedCompletionDate != "" {
		d.Completion = format.DateShort(t.ExpectedCompletionDate)
	}
	return projectView{Project: p, Display: d}
}

type listResponse struct {
	Count                  int           `json:"count"`
	TotalInvestment        float64       `json:"totalInvestment"`
	TotalInvestmentDisplay string        `json:"totalInvestmentDisplay"`
	Projects               []projectView `json:"projects"`
}

func (a *API) Projects(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	mode, err := project.ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	list := project.Sort(project.Filter(a.store.All(), c), mode)
	total := project.TotalInvestment(list)
	views := make([]projectView, len(list))
	for i, p := range list {
		views[i] = a.view(p)
	}
	writeJSON(w, http.StatusOK, listResponse{
		Count:                  len(list),
		TotalInvestment:        total,
		TotalInvestmentDisplay: format.Currency(total),
		Projects:               views,
	})
}

func (a *API) Project(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a.view(p))
}

func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, project.Stats(project.Filter(a.store.All(), c)))
}

func (a *API) Markers(w http.ResponseWriter, r *http.Request) {
	req, err := ParseMarkersRequest(r)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	ctx := logger.WithView(r.Context(), "markers")
	resp, err := a.markers.Markers(ctx, req)
	if err != nil {
		a.fail(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) MarkersGeoJSON(w http.ResponseWriter, r *http.Request) {
	req, err := ParseMarkersRequest(r)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	fc, err := a.markers.GeoJSON(logger.WithView(r.Context(), "geojson"), req)
	if err != nil {
		a.fail(w, r, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(fc)
}

func (a *API) Fallback(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, fallback.Build(project.Filter(a.store.All(), c)))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cluster.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
