package main

import (
	"context"
	"fmt"
	"log/slog"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/storefront/internal/catalog/infra/httpapi"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/memory"
	checkoutpg "github.com/dwikikusuma/storefront/internal/checkout/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/sqlite"
	confirmapp "github.com/dwikikusuma/storefront/internal/confirmation/app"
	confirmamqp "github.com/dwikikusuma/storefront/internal/confirmation/infra/amqp"
	"github.com/dwikikusuma/storefront/internal/confirmation/infra/lognotify"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/dwikikusuma/storefront/pkg/postgres"
)

// closers run in reverse order on shutdown.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll(log *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.Warn("close failed", slog.Any("err", err))
		}
	}
}

func openDrafts(ctx context.Context, cfg config.Config, cl *closers) (checkoutapp.DraftStore, error) {
	switch cfg.DraftStore {
	case "", "memory":
		return memory.NewDraftStore(), nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		cl.add(s.Close)
		return s, nil
	case "postgres":
		pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: 10})
		if err != nil {
			return nil, err
		}
		cl.add(func() error { pool.Close(); return nil })
		s := checkoutpg.NewDraftStore(pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DRAFT_STORE %q", cfg.DraftStore)
	}
}

func openNotifier(cfg config.Config, log *slog.Logger, cl *closers) confirmapp.Notifier {
	if cfg.RabbitURI == "" {
		return lognotify.New(log)
	}
	n, err := confirmamqp.Dial(cfg.RabbitURI, cfg.NotifyQueue)
	if err != nil {
		// Notifications are best effort; run without the broker.
		log.Warn("rabbitmq unavailable, logging order events instead", slog.Any("err", err))
		return lognotify.New(log)
	}
	cl.add(n.Close)
	return n
}

func loadShipping(cfg config.Config) (*shipping.Resolver, error) {
	if cfg.ShippingConfig == "" {
		return shipping.Default(), nil
	}
	return shipping.LoadFile(cfg.ShippingConfig)
}

// openCatalog reads products from the catalog database when configured,
// otherwise from the catalog service.
func openCatalog(ctx context.Context, cfg config.Config, cl *closers) (catalogapp.ProductReader, error) {
	if cfg.CatalogDatabaseURL == "" {
		return cataloghttp.NewReader(httpjson.New(cfg.CatalogServiceURL, cfg.ClientTimeout)), nil
	}
	pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.CatalogDatabaseURL, MaxConns: 10})
	if err != nil {
		return nil, err
	}
	cl.add(func() error { pool.Close(); return nil })
	return catalogpg.NewProductRepo(pool), nil
}
