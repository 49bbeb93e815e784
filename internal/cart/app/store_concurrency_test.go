package app_test

import (
	"context"
	"testing"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func TestStore_ConcurrentAddDistinctProducts(t *testing.T) {
	remote := &fakeRemote{}
	s := newStore(remote)

	const N = 50
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := s.AddToCart(ctx, app.AddRequest{
				Product:  app.Product{ID: uuid.NewString(), Price: decimal.NewFromInt(3), Stock: 5},
				Quantity: 1,
			})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddToCart failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != N {
		t.Fatalf("expected %d items, got %d", N, len(snap.Items))
	}
	if snap.HasPending() {
		t.Fatal("expected every item confirmed")
	}
	if snap.Status != app.StatusIdle {
		t.Fatalf("expected idle once all adds finished, got %s", snap.Status)
	}
	ids := make(map[string]struct{}, N)
	for _, it := range snap.Items {
		ids[it.ID] = struct{}{}
	}
	if len(ids) != N {
		t.Fatalf("expected %d distinct server ids, got %d", N, len(ids))
	}
}

func TestStore_ConcurrentUpdatesOnDistinctItems(t *testing.T) {
	remote := &fakeRemote{}
	s := newStore(remote)
	ctx := context.Background()

	const N = 20
	ids := make([]string, 0, N)
	for i := 0; i < N; i++ {
		it, err := s.AddToCart(ctx, app.AddRequest{
			Product:  app.Product{ID: uuid.NewString(), Price: decimal.NewFromInt(1), Stock: 10},
			Quantity: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, it.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.UpdateItemQuantity(gctx, id, 7)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent UpdateItemQuantity failed: %v", err)
	}

	if got := s.Snapshot().Count(); got != 7*N {
		t.Fatalf("expected total quantity %d, got %d", 7*N, got)
	}
}
