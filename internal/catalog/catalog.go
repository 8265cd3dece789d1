// Package catalog lists the books the storefront sells. The list comes from
// OpenLibrary, is cached in Redis and is guarded by a circuit breaker.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_bookstore/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PageSize is the number of books on one catalog page.
const PageSize = 20

// Page is one page of a filtered listing. TotalPages is zero when nothing
// matched.
type Page struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
}

type Service struct {
	upstream Upstream
	cache    BookCache
	breaker  *gobreaker.CircuitBreaker[[]Book]
	sfg      singleflight.Group
	log      *zap.Logger
}

// NewService wires the catalog. cache may be nil, then every miss goes
// upstream.
func NewService(upstream Upstream, cache BookCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		upstream: upstream,
		cache:    cache,
		breaker:  circuitbreaker.New[[]Book]("openlibrary", log),
		log:      log,
	}
}

// List filters by title or author, case-insensitively, and returns the
// requested 1-based page. Pages below 1 are treated as 1.
func (s *Service) List(ctx context.Context, query string, page int) (Page, error) {
	books, err := s.books(ctx)
	if err != nil {
		return Page{}, err
	}

	matched := filter(books, query)
	if page < 1 {
		page = 1
	}

	result := Page{
		Books:      []Book{},
		Page:       page,
		TotalPages: (len(matched) + PageSize - 1) / PageSize,
		Total:      len(matched),
	}

	start := (page - 1) * PageSize
	if start >= len(matched) {
		return result, nil
	}
	end := min(start+PageSize, len(matched))
	result.Books = matched[start:end]
	return result, nil
}

// Get looks a book up by ISBN.
func (s *Service) Get(ctx context.Context, isbn string) (Book, error) {
	isbn = strings.TrimSpace(isbn)
	books, err := s.books(ctx)
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return Book{}, ErrBookNotFound
}

// Invalidate drops the cached list.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx)
}

func (s *Service) books(ctx context.Context) ([]Book, error) {
	// concurrent misses share one upstream call
	v, err, _ := s.sfg.Do(booksKey, func() (interface{}, error) {
		if s.cache != nil {
			books, err := s.cache.Get(ctx)
			if err == nil {
				return books, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				s.log.Warn("catalog cache get failed", zap.Error(err))
			}
		}

		books, err := s.breaker.Execute(func() ([]Book, error) {
			return s.upstream.FetchBooks(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, books); err != nil {
				s.log.Warn("catalog cache set failed", zap.Error(err))
			}
		}
		s.log.Info("catalog refreshed", zap.Int("books", len(books)))
		return books, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Book), nil
}

func filter(books []Book, query string) []Book {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return books
	}

	matched := make([]Book, 0)
	for _, b := range books {
		if matches(b, query) {
			matched = append(matched, b)
		}
	}
	return matched
}

func matches(b Book, query string) bool {
	if strings.Contains(strings.ToLower(b.Title), query) {
		return true
	}
	for _, author := range b.Authors {
		if strings.Contains(strings.ToLower(author), query) {
			return true
		}
	}
	return false
}
