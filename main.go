package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/fourpanel/internal/config"
	"github.com/dmorgan81/fourpanel/internal/handler"
	"github.com/dmorgan81/fourpanel/internal/inject"
	"github.com/dmorgan81/fourpanel/internal/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	confPath := flag.String("conf", "", "optional YAML config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*confPath, *envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := log.New(os.Stderr, level)
	ctx := log.NewContext(context.Background(), logger)

	injector := inject.Setup(ctx, cfg)
	if err := inject.Check(injector, cfg); err != nil {
		logger.Error("startup failed", log.Err(err))
		os.Exit(1)
	}
	h := do.MustInvoke[*handler.Handler](injector)

	if cfg.RunMode == config.RunModeLambda {
		adapter := handler.NewLambdaAdapter(h)
		lambda.StartWithOptions(adapter.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	if err := serve(ctx, cfg, h); err != nil {
		logger.Error("server stopped", log.Err(err))
		os.Exit(1)
	}
	_ = injector.Shutdown()
}

func serve(ctx context.Context, cfg *config.Config, h http.Handler) error {
	logger := log.FromContextOrDiscard(ctx)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "validate_words", cfg.WordList.Validate, "text_provider", cfg.Text.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
