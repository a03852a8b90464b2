package catalog

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

type Service struct {
	repo  Repository
	cache *lru.Cache[string, Product]
}

func NewService(repo Repository, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, Product](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, cache: cache}, nil
}

func (s *Service) FindAll(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// FindByID serves from the LRU when possible. Products are read-only at
// runtime so cached entries never go stale.
func (s *Service) FindByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	if p, ok := s.cache.Get(id); ok {
		return &p, nil
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, *p)
	return p, nil
}
