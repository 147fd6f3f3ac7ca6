// Package catalog serves products from Medusa enriched with editorial content.
//
// Reads go through two cache tiers: an in-process go-cache (L1) and, when
// configured, Redis (L2). Concurrent misses for the same key share one Medusa call.
package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/fittinglab/storefront/internal/domain/entity"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/internal/infrastructure/search"
	"github.com/fittinglab/storefront/internal/metrics"
	"github.com/fittinglab/storefront/pkg/helpers"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSearchDisabled  = errors.New("search not configured")
)

const (
	keyPrefix     = "catalog:"
	reindexPage   = 100
	defaultLimit  = 20
	maxLimit      = 100
	searchResults = 20
	loadTimeout   = 15 * time.Second
)

// ProductSource is the Store API surface the catalog reads.
type ProductSource interface {
	ListProducts(ctx context.Context, q medusa.ProductQuery) ([]entity.Product, int, error)
	ProductByHandle(ctx context.Context, handle, regionID string) (*entity.Product, error)
}

// Index is the search backend; search.ProductIndex implements it.
type Index interface {
	EnsureIndex(ctx context.Context) error
	IndexProducts(ctx context.Context, products []entity.Product) error
	Search(ctx context.Context, q string, size int) ([]search.Hit, error)
}

var (
	_ ProductSource = (*medusa.Client)(nil)
	_ Index         = (*search.ProductIndex)(nil)
)

// ProductView is a product as the storefront renders it.
type ProductView struct {
	entity.Product
	Price          float64                `json:"price"`
	FormattedPrice string                 `json:"formatted_price"`
	Content        *entity.ProductContent `json:"content,omitempty"`
}

type ProductPage struct {
	Products []ProductView `json:"products"`
	Count    int           `json:"count"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type SearchHit struct {
	search.Hit
	FormattedPrice string `json:"formatted_price"`
}

type Service struct {
	Source   ProductSource
	Content  Content
	Index    Index
	RegionID string
	Redis    *redis.Client
	TTL      time.Duration
	Logger   *logrus.Logger

	l1 *gocache.Cache
	sf singleflight.Group
}

func NewService(source ProductSource, content Content, index Index, regionID string, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if content == nil {
		content = Content{}
	}
	return &Service{
		Source:   source,
		Content:  content,
		Index:    index,
		RegionID: regionID,
		Redis:    rdb,
		TTL:      ttl,
		Logger:   logger,
		l1:       gocache.New(ttl, time.Minute),
	}
}

func (s *Service) view(p entity.Product) ProductView {
	v := ProductView{Product: p, Price: search.MinPrice(p), Content: s.Content.For(p.Handle)}
	v.FormattedPrice = helpers.FormatEUR(v.Price)
	if v.Thumbnail == "" && v.Content != nil {
		v.Thumbnail = v.Content.ImageSrc
	}
	return v
}

// fetch resolves key through L1, L2 and finally load, filling both tiers on the way back.
func fetch[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := s.l1.Get(key); ok {
		metrics.ObserveCache("l1", true)
		return v.(T), nil
	}
	metrics.ObserveCache("l1", false)

	if s.Redis != nil {
		var cached T
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("catalog l2 read failed")
		}
		metrics.ObserveCache("l2", hit)
		if hit {
			s.l1.SetDefault(key, cached)
			return cached, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		// Shared by every waiter on key, so it must outlive the caller that started it.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		val, err := load(lctx)
		if err != nil {
			return nil, err
		}
		s.l1.SetDefault(key, val)
		if s.Redis != nil {
			if err := helpers.RedisSetJSON(lctx, s.Redis, key, val, s.TTL); err != nil && s.Logger != nil {
				s.Logger.WithError(err).WithField("key", key).Warn("catalog l2 write failed")
			}
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) List(ctx context.Context, limit, offset int) (*ProductPage, error) {
	limit, offset = clampPage(limit, offset)
	key := keyPrefix + "list:" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
	return fetch(ctx, s, key, func(ctx context.Context) (*ProductPage, error) {
		products, count, err := s.Source.ListProducts(ctx, medusa.ProductQuery{RegionID: s.RegionID, Limit: limit, Offset: offset})
		if err != nil {
			return nil, err
		}
		page := &ProductPage{Products: make([]ProductView, 0, len(products)), Count: count, Limit: limit, Offset: offset}
		for _, p := range products {
			page.Products = append(page.Products, s.view(p))
		}
		return page, nil
	})
}

// ByHandle returns the enriched product detail or ErrProductNotFound.
func (s *Service) ByHandle(ctx context.Context, handle string) (*ProductView, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrProductNotFound
	}
	v, err := fetch(ctx, s, keyPrefix+"product:"+handle, func(ctx context.Context) (*ProductView, error) {
		p, err := s.Source.ProductByHandle(ctx, handle, s.RegionID)
		if err != nil {
			return nil, err
		}
		pv := s.view(*p)
		return &pv, nil
	})
	if medusa.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return v, err
}

// Search queries Elasticsearch, or Medusa's own q filter when no index is configured
// or the index is unreachable.
func (s *Service) Search(ctx context.Context, q string) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []SearchHit{}, nil
	}
	if s.Index != nil {
		hits, err := s.Index.Search(ctx, q, searchResults)
		if err == nil {
			out := make([]SearchHit, 0, len(hits))
			for _, h := range hits {
				out = append(out, SearchHit{Hit: h, FormattedPrice: helpers.FormatEUR(h.MinPrice)})
			}
			return out, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("search index failed, falling back to medusa")
		}
	}

	products, _, err := s.Source.ListProducts(ctx, medusa.ProductQuery{Q: q, RegionID: s.RegionID, Limit: searchResults})
	if err != nil {
		return nil, err
	}
	out := make([]SearchHit, 0, len(products))
	for _, p := range products {
		price := search.MinPrice(p)
		out = append(out, SearchHit{
			Hit:            search.Hit{ID: p.ID, Handle: p.Handle, Title: p.Title, Subtitle: p.Subtitle, Thumbnail: p.Thumbnail, MinPrice: price},
			FormattedPrice: helpers.FormatEUR(price),
		})
	}
	return out, nil
}

// Reindex pages through every Medusa product, pushes it to the index and drops the caches.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, ErrSearchDisabled
	}
	if err := s.Index.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	total := 0
	for offset := 0; ; offset += reindexPage {
		products, count, err := s.Source.ListProducts(ctx, medusa.ProductQuery{RegionID: s.RegionID, Limit: reindexPage, Offset: offset})
		if err != nil {
			return total, err
		}
		if err := s.Index.IndexProducts(ctx, products); err != nil {
			return total, err
		}
		total += len(products)
		if len(products) < reindexPage || total >= count {
			break
		}
	}
	s.Invalidate(ctx)
	if s.Logger != nil {
		s.Logger.WithField("products", total).Info("catalog reindexed")
	}
	return total, nil
}

// Invalidate empties L1 and removes the catalog keys from Redis.
func (s *Service) Invalidate(ctx context.Context) {
	s.l1.Flush()
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, keyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		_ = helpers.RedisDel(ctx, s.Redis, iter.Val())
	}
	if err := iter.Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("catalog l2 invalidation failed")
	}
}
