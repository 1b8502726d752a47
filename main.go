package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/simonsays/config"
	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/monitor"
	"github.com/wfunc/simonsays/rpc"
	"github.com/wfunc/simonsays/server"
	"github.com/wfunc/simonsays/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simonsays: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := pflag.StringP("config", "c", ".", "directory holding config.yaml")
	pflag.Parse()

	// a missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		return err
	}
	defer logger.Sync()

	mon := monitor.NewMonitor(cfg.Metrics.Namespace)
	scheduler := timer.NewTimerManager()
	defer scheduler.Stop()

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress,
		server.WithScheduler(scheduler),
		server.WithMonitor(mon),
		server.WithTiming(cfg.GameTiming()),
		server.WithDefaultDifficulty(cfg.DefaultDifficulty()),
		server.WithHeartbeat(cfg.Server.Heartbeat),
		server.WithStaticDir(cfg.Server.StaticDir),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(gameServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down game server")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return gameServer.Shutdown(shutdownCtx)
	})

	if cfg.Server.RPCAddress != "" {
		rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress, gameServer.Sessions())
		if err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("start rpc server: %w", err)
		}
		g.Go(rpcServer.Start)
		g.Go(func() error {
			<-gctx.Done()
			rpcServer.Stop()
			return nil
		})
	}

	return g.Wait()
}
