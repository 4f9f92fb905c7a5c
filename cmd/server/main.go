package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rawmart-be/internal/analytics"
	"rawmart-be/internal/auth"
	"rawmart-be/internal/cart"
	"rawmart-be/internal/config"
	"rawmart-be/internal/db"
	"rawmart-be/internal/httpapi"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/material"
	"rawmart-be/internal/middleware"
	"rawmart-be/internal/order"
	"rawmart-be/internal/payment"
	"rawmart-be/internal/review"
	"rawmart-be/internal/supplier"
	"rawmart-be/internal/surplus"
	"rawmart-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	newDBFunc = func(cfg *config.Config) *db.Manager { return db.New(cfg) }

	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.L()
	log.Info("starting server", zap.Stringer("config", cfg))

	mgr := newDBFunc(cfg)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Cleanup(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, mgr, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories, services and the gateway into the HTTP stack.
func newServer(cfg *config.Config, provider db.Provider, limiter *middleware.RateLimiter) http.Handler {
	sessions := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	journal := payment.NewJournal(payment.NewRepository(provider))

	materialRepo := material.NewRepository(provider)
	cartRepo := cart.NewRepository(provider)
	orderRepo := order.NewRepository(provider)

	return httpapi.NewHTTPHandler(httpapi.Deps{
		Config:    cfg,
		DB:        provider,
		Sessions:  sessions,
		Users:     user.NewService(user.NewRepository(provider), sessions),
		Suppliers: supplier.NewService(supplier.NewRepository(provider), sessions),
		Materials: material.NewService(materialRepo),
		Reviews:   review.NewService(review.NewRepository(provider), materialRepo),
		Carts:     cart.NewService(cartRepo, materialRepo),
		Orders:    order.NewService(orderRepo, cartRepo, materialRepo, gateway, journal, cfg.PaymentCurrency),
		Surplus:   surplus.NewService(surplus.NewRepository(provider), gateway, journal, cfg.PaymentCurrency),
		Analytics: analytics.NewService(materialRepo, orderRepo),
	}, limiter)
}
