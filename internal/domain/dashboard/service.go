package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/medshift/medshift/internal/platform/cache"
)

const (
	keyPrefix = "dashboard:"
	topN      = 5
)

type Service struct {
	repo   Repository
	cache  cache.Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewService returns a dashboard service. A nil store disables caching.
func NewService(repo Repository, store cache.Store, ttl time.Duration, logger zerolog.Logger) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{
		repo:   repo,
		cache:  store,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "dashboard").Logger(),
	}
}

func cacheKey(kind string, p Period) string {
	return keyPrefix + kind + ":" + string(p)
}

// cached fills dst from the cache or, on a miss, from load. Cache errors are
// logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, dst interface{}, load func() error) error {
	err := s.cache.GetJSON(ctx, key, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
	}

	if err := load(); err != nil {
		return err
	}
	if err := s.cache.SetJSON(ctx, key, dst, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, p Period) (*Stats, error) {
	var out Stats
	err := s.cached(ctx, cacheKey("stats", p), &out, func() error {
		st, err := s.repo.Stats(ctx, WindowFor(p, s.now()))
		if err != nil {
			return err
		}
		out = *st
		s.logger.Info().Str("period", string(p)).
			Int("shifts_count", out.ShiftsCount).
			Int("attentions_count", out.AttentionsCount).
			Str("total_revenue", out.TotalRevenue.StringFixed(2)).
			Msg("dashboard stats computed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Charts(ctx context.Context, p Period) (*Charts, error) {
	var out Charts
	err := s.cached(ctx, cacheKey("charts", p), &out, func() error {
		c, err := s.charts(ctx, p)
		if err != nil {
			return err
		}
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) charts(ctx context.Context, p Period) (*Charts, error) {
	now := s.now()
	w := WindowFor(p, now)
	var c Charts

	hours, err := s.repo.PeakHours(ctx, w)
	if err != nil {
		return nil, err
	}
	c.PeakHours = Series{Labels: make([]string, 0, 24), Data: make([]int, 0, 24)}
	for h, n := range hours {
		c.PeakHours.Labels = append(c.PeakHours.Labels, fmt.Sprintf("%02d:00", h))
		c.PeakHours.Data = append(c.PeakHours.Data, n)
	}

	paths, err := s.repo.TopPathologies(ctx, w, topN)
	if err != nil {
		return nil, err
	}
	c.TopPathologies = Series{Labels: []string{}, Data: []int{}}
	for _, nc := range paths {
		c.TopPathologies.Labels = append(c.TopPathologies.Labels, nc.Name)
		c.TopPathologies.Data = append(c.TopPathologies.Data, nc.Count)
	}

	docs, err := s.repo.TopDoctors(ctx, w, topN)
	if err != nil {
		return nil, err
	}
	c.TopDoctors = DoctorSeries{Labels: []string{}, ShiftsData: []int{}, HoursData: []decimal.Decimal{}}
	for _, d := range docs {
		c.TopDoctors.Labels = append(c.TopDoctors.Labels, d.Name)
		c.TopDoctors.ShiftsData = append(c.TopDoctors.ShiftsData, d.Shifts)
		c.TopDoctors.HoursData = append(c.TopDoctors.HoursData, d.Hours)
	}

	buckets := EvolutionBuckets(p, now)
	windows := make([]Window, len(buckets))
	c.Evolution = Series{Labels: make([]string, len(buckets))}
	for i, b := range buckets {
		windows[i] = b.Window
		c.Evolution.Labels[i] = b.Label
	}
	if c.Evolution.Data, err = s.repo.CountAttentions(ctx, windows); err != nil {
		return nil, err
	}
	return &c, nil
}

// Invalidate drops every cached dashboard document. It is registered as a
// shift change listener.
func (s *Service) Invalidate(ctx context.Context) {
	n, err := s.cache.DeleteByPrefix(ctx, keyPrefix)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache invalidation failed")
		return
	}
	if n > 0 {
		s.logger.Debug().Int("keys", n).Msg("dashboard cache invalidated")
	}
}
