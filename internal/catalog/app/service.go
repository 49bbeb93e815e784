package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductReader

	maxConcurrent int
}

func NewService(repo ProductReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{
		repo:          repo,
		maxConcurrent: maxConcurrent,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// GetProducts fetches several products concurrently. The result is keyed by
// product id; duplicates in ids are fetched once.
func (s *Service) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	products := make([]domain.Product, len(uniq))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range uniq {
		g.Go(func() error {
			p, err := s.repo.Get(ctx, uniq[idx])
			if err != nil {
				return fmt.Errorf("get product %s: %w", uniq[idx], err)
			}
			products[idx] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]domain.Product, len(products))
	for i, p := range products {
		out[uniq[i]] = p
	}
	return out, nil
}
