package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/devserver"
)

const defaultAddr = "127.0.0.1:3000"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables")
	}

	addr := os.Getenv("PUSHPANEL_DEV_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	testPush := true
	if v := os.Getenv("PUSHPANEL_DEV_TEST_PUSH"); v != "" {
		testPush, err = strconv.ParseBool(v)
		if err != nil {
			logger.Fatal("Invalid PUSHPANEL_DEV_TEST_PUSH", zap.String("value", v), zap.Error(err))
		}
	}

	srv, err := devserver.New(devserver.Options{
		PublicKey: os.Getenv("VAPID_PUBLIC_KEY"),
		TestPush:  testPush,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	logger.Info("Notification server listening",
		zap.String("addr", addr),
		zap.String("vapid_public_key", srv.PublicKey()),
		zap.Bool("test_push", testPush))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
