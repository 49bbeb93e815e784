package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dwikikusuma/storefront/internal/api"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	carthttp "github.com/dwikikusuma/storefront/internal/cart/infra/httpapi"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	confirmapp "github.com/dwikikusuma/storefront/internal/confirmation/app"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderhttp "github.com/dwikikusuma/storefront/internal/order/infra/httpapi"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/payment/infra/gatewayapi"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "gateway",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	if err := run(cfg, log); err != nil {
		log.Error("gateway stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	var cl closers
	defer cl.closeAll(log)

	taxRate, err := money.Parse(cfg.TaxRate)
	if err != nil {
		return fmt.Errorf("TAX_RATE: %w", err)
	}
	resolver, err := loadShipping(cfg)
	if err != nil {
		return fmt.Errorf("shipping config: %w", err)
	}
	drafts, err := openDrafts(ctx, cfg, &cl)
	if err != nil {
		return fmt.Errorf("draft store: %w", err)
	}

	products, err := openCatalog(ctx, cfg, &cl)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	catalog := catalogapp.NewService(products, 8)
	cartRemote := carthttp.NewClient(httpjson.New(cfg.CartServiceURL, cfg.ClientTimeout))
	orders := orderapp.NewService(
		orderhttp.NewClient(httpjson.New(cfg.OrderBackendURL, cfg.ClientTimeout)))
	gateway := gatewayapi.New(
		httpjson.New(cfg.GatewayURL, cfg.ClientTimeout,
			httpjson.WithHeader("Authorization", "Bearer "+cfg.GatewayKey)),
		cfg.GatewayURL, cfg.GatewayKey)
	if !gateway.Ready() {
		log.Warn("payment gateway not configured, payments are disabled")
	}

	sessions := session.NewRegistry(session.Config{
		Cart:     cartRemote,
		Shipping: resolver,
		Drafts:   drafts,
		TaxRate:  taxRate,
		IdleTTL:  30 * time.Minute,
		Log:      log,
	})
	confirm := confirmapp.NewService(sessions, openNotifier(cfg, log, &cl), log)
	defer confirm.Wait()

	srv := api.NewServer(api.Deps{
		Sessions: sessions,
		Lookup:   cartadapter.NewCatalogServiceReader(catalog),
		Products: catalog,
		Shipping: resolver,
		Payments: paymentapp.NewOrchestrator(gateway, orders, resolver, log),
		Confirm:  confirm,
		Log:      log,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc health server starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sessions.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested", slog.Any("cause", context.Cause(gctx)))
		healthSrv.Shutdown()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
