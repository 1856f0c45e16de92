// Package markers serves the aggregated map markers of a filtered,
// viewport-bounded slice of the dataset, memoizing encoded responses.
package markers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/uk-projects-map/internal/cache"
	"github.com/mohammed-shakir/uk-projects-map/internal/cache/keys"
	"github.com/mohammed-shakir/uk-projects-map/internal/cache/memo"
	"github.com/mohammed-shakir/uk-projects-map/internal/cluster"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/observability"
	"github.com/mohammed-shakir/uk-projects-map/internal/dataset"
	"github.com/mohammed-shakir/uk-projects-map/internal/logger"
	"github.com/mohammed-shakir/uk-projects-map/internal/project"
	"github.com/mohammed-shakir/uk-projects-map/internal/spatial"
)

const (
	TierMemo  = "memo"
	TierRedis = "redis"
	TierNone  = "none"
)

type Request struct {
	Criteria project.Criteria
	BBox     *model.BBox // nil selects the whole dataset
	Zoom     float64
}

// Response is the /api/markers body. Markers is the encoded marker list,
// shared by every zoom of the same regime.
type Response struct {
	Zoom    float64         `json:"zoom"`
	Regime  cluster.Regime  `json:"regime"`
	Total   int             `json:"total"`
	Markers json.RawMessage `json:"markers"`
}

// body is what the cache tiers store
type body struct {
	Total   int             `json:"total"`
	Markers json.RawMessage `json:"markers"`
}

type Options struct {
	Memo      *memo.Memo      // nil disables the in-process tier
	Shared    cache.Interface // nil disables the shared tier
	TTL       time.Duration
	OpTimeout time.Duration
	Logger    *slog.Logger
}

type Service struct {
	store     *dataset.Store
	index     *spatial.Index
	agg       cluster.Aggregator
	memo      *memo.Memo
	shared    cache.Interface
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger
}

func New(store *dataset.Store, index *spatial.Index, agg cluster.Aggregator, opts Options) *Service {
	if agg == nil {
		agg = cluster.NewGreedy(opts.Logger)
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	return &Service{
		store:     store,
		index:     index,
		agg:       agg,
		memo:      opts.Memo,
		shared:    opts.Shared,
		ttl:       opts.TTL,
		opTimeout: opts.OpTimeout,
		logger:    lg,
	}
}

func (s *Service) Strategy() string { return s.agg.Name() }

// Projects returns the projects a request covers, in dataset order.
func (s *Service) Projects(req Request) []*model.Project {
	if req.BBox == nil {
		return project.Filter(s.store.All(), req.Criteria)
	}
	var allowed map[string]struct{}
	if req.Criteria.Active() > 0 {
		matched := project.Filter(s.store.All(), req.Criteria)
		allowed = make(map[string]struct{}, len(matched))
		for _, p := range matched {
			allowed[p.ID] = struct{}{}
		}
	}
	return s.index.InBBox(*req.BBox, req.Zoom, allowed, s.logger)
}

// Aggregate computes the markers of req without consulting any cache.
func (s *Service) Aggregate(ctx context.Context, req Request) ([]model.Marker, error) {
	if err := cluster.ValidateZoom(req.Zoom); err != nil {
		return nil, err
	}
	points := model.PointsOf(s.Projects(req))

	start := time.Now()
	ms, err := s.agg.Aggregate(points, req.Zoom)
	if err != nil {
		return nil, fmt.Errorf("aggregate %d points: %w", len(points), err)
	}
	elapsed := time.Since(start)

	clusters := 0
	for _, m := range ms {
		if m.Kind() == model.KindCluster {
			clusters++
		}
	}
	regime := cluster.RegimeFor(req.Zoom)
	observability.ObserveAggregation(s.agg.Name(), string(regime), len(ms)-clusters, clusters, elapsed.Seconds())
	s.logger.DebugContext(ctx, "markers aggregated",
		"strategy", s.agg.Name(),
		"regime", string(regime),
		"points", len(points),
		"markers", len(ms),
		"clusters", clusters,
		"took_ms", elapsed.Milliseconds())
	return ms, nil
}

// Markers answers req from the memo, then the shared cache, and computes
// and stores the response on a miss. Cache failures are logged and
// bypassed.
func (s *Service) Markers(ctx context.Context, req Request) (*Response, error) {
	if err := cluster.ValidateZoom(req.Zoom); err != nil {
		return nil, err
	}
	req = snapped(req)
	regime := cluster.RegimeFor(req.Zoom)
	var bb model.BBox
	if req.BBox != nil {
		bb = *req.BBox
	}
	key := keys.Markers(s.store.Fingerprint(), s.agg.Name(), string(regime), bb, req.Criteria.Canonical())

	b, tier := s.lookup(ctx, key)
	if b == nil {
		ms, err := s.Aggregate(ctx, req)
		if err != nil {
			return nil, err
		}
		enc, err := encode(ms)
		if err != nil {
			return nil, err
		}
		b, tier = enc, TierNone
		s.save(ctx, key, enc)
	}

	var out body
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode cached markers: %w", err)
	}
	s.logger.DebugContext(logger.WithCache(ctx, tier), "markers served",
		"regime", string(regime),
		"total", out.Total)
	return &Response{
		Zoom:    req.Zoom,
		Regime:  regime,
		Total:   out.Total,
		Markers: out.Markers,
	}, nil
}

// snapped puts the viewport on the grid cache keys are written at, so a
// cached entry holds exactly the projects of every box that maps to it.
func snapped(req Request) Request {
	if req.BBox != nil {
		bb := keys.SnapBBox(*req.BBox)
		req.BBox = &bb
	}
	return req
}

func encode(ms []model.Marker) ([]byte, error) {
	if ms == nil {
		ms = []model.Marker{}
	}
	raw, err := json.Marshal(ms)
	if err != nil {
		return nil, fmt.Errorf("encode markers: %w", err)
	}
	b, err := json.Marshal(body{Total: model.CountProjects(ms), Markers: raw})
	if err != nil {
		return nil, fmt.Errorf("encode markers body: %w", err)
	}
	return b, nil
}

func (s *Service) lookup(ctx context.Context, key string) ([]byte, string) {
	if s.memo != nil {
		if b, ok := s.memo.Get(key); ok {
			observability.ObserveCacheResult(TierMemo, "hit")
			return b, TierMemo
		}
		observability.ObserveCacheResult(TierMemo, "miss")
	}
	if s.shared == nil {
		return nil, TierNone
	}

	cctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	b, err := s.shared.Get(cctx, key)
	switch {
	case err == nil:
		observability.ObserveCacheResult(TierRedis, "hit")
		if s.memo != nil {
			s.memo.Add(key, b)
		}
		return b, TierRedis
	case errors.Is(err, cache.ErrMiss):
		observability.ObserveCacheResult(TierRedis, "miss")
	default:
		observability.ObserveCacheResult(TierRedis, "error")
		s.logger.WarnContext(ctx, "shared cache get failed; computing", "key", key, "err", err)
	}
	return nil, TierNone
}

func (s *Service) save(ctx context.Context, key string, b []byte) {
	if s.memo != nil {
		s.memo.Add(key, b)
	}
	if s.shared == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	if err := s.shared.Set(cctx, key, b, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "shared cache set failed", "key", key, "err", err)
	}
}
