package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/tundeakins/billspay/internal/processor"
	"golang.org/x/sync/errgroup"
)

const (
	categoriesCacheKey = "billers:categories"
	allBillersCacheKey = "billers:all"

	// concurrent per-category fetches during the catalog fan-out
	fanOutLimit = 5
)

// BillersService serves the Interswitch biller catalog. Catalog reads are
// slow and rate-limited upstream, so responses are cached in Redis when a
// client is configured and all upstream calls go through a circuit breaker.
// Cache failures degrade to an upstream fetch, never to a request failure.
type BillersService struct {
	quickteller *processor.Quickteller
	cache       *redis.Client // nil disables caching
	cacheTTL    time.Duration
	breaker     *gobreaker.CircuitBreaker[any]
	logger      zerolog.Logger
}

func NewBillersService(qt *processor.Quickteller, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) *BillersService {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "quickteller",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
	return &BillersService{
		quickteller: qt,
		cache:       cache,
		cacheTTL:    cacheTTL,
		breaker:     breaker,
		logger:      logger,
	}
}

// Categories returns the top-level biller categories.
func (s *BillersService) Categories(ctx context.Context) (*processor.BillerCategoriesResponse, error) {
	var cached processor.BillerCategoriesResponse
	if s.cacheGet(ctx, categoriesCacheKey, &cached) {
		return &cached, nil
	}

	result, err := s.breaker.Execute(func() (any, error) {
		token, err := s.quickteller.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		return s.quickteller.BillerCategories(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*processor.BillerCategoriesResponse)
	s.cacheSet(ctx, categoriesCacheKey, resp)
	return resp, nil
}

// BillersByCategory returns the billers registered under one category.
func (s *BillersService) BillersByCategory(ctx context.Context, categoryID int) (*processor.BillersByCategoryResponse, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		token, err := s.quickteller.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		return s.quickteller.BillersByCategory(ctx, token, categoryID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*processor.BillersByCategoryResponse), nil
}

// AllBillers fetches every category's billers concurrently and flattens the
// result. One failing category fails the whole fan-out.
func (s *BillersService) AllBillers(ctx context.Context) ([]processor.BillerCategoryGroup, error) {
	var cached []processor.BillerCategoryGroup
	if s.cacheGet(ctx, allBillersCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]processor.BillerCategoryGroup, len(categories.BillerCategories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)

	for i, cat := range categories.BillerCategories {
		g.Go(func() error {
			resp, err := s.BillersByCategory(gctx, cat.ID)
			if err != nil {
				return err
			}
			group := processor.BillerCategoryGroup{
				ID:          cat.ID,
				Name:        cat.Name,
				Description: cat.Description,
			}
			for _, c := range resp.BillerList.Category {
				group.Billers = append(group.Billers, c.Billers...)
			}
			groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, allBillersCacheKey, groups)
	return groups, nil
}

// PaymentItems returns the payment items a biller service accepts.
func (s *BillersService) PaymentItems(ctx context.Context, serviceID int) (map[string]any, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		token, err := s.quickteller.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		return s.quickteller.BillerPaymentItems(ctx, token, serviceID)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]any), nil
}

func (s *BillersService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("biller cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("biller cache entry corrupt")
		return false
	}
	return true
}

func (s *BillersService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("biller cache marshal failed")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("biller cache write failed")
	}
}
