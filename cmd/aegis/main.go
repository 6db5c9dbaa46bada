// Command aegis wires the governance engine for standalone operation: it
// constructs the service graph once (no singletons) and holds it until
// shutdown. Hosting applications embed the packages directly instead.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/veridian-labs/aegis/pkg/autonomy"
	"github.com/veridian-labs/aegis/pkg/classifier"
	"github.com/veridian-labs/aegis/pkg/config"
	"github.com/veridian-labs/aegis/pkg/observability"
	"github.com/veridian-labs/aegis/pkg/policy"
	"github.com/veridian-labs/aegis/pkg/store"
	"github.com/veridian-labs/aegis/pkg/trust"
)

func main() {
	if err := run(); err != nil {
		slog.Error("aegis failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	bundle := policy.Default()
	if cfg.PolicyPath != "" {
		bundle, err = policy.Load(cfg.PolicyPath)
		if err != nil {
			return fmt.Errorf("load policy bundle: %w", err)
		}
	}
	bundleHash, err := bundle.ContentHash()
	if err != nil {
		return fmt.Errorf("hash policy bundle: %w", err)
	}
	logger.Info("policy bundle loaded", "version", bundle.Version, "content_hash", bundleHash)

	var obs *observability.Provider
	if cfg.Telemetry {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		obs, err = observability.New(ctx, obsCfg, logger)
		if err != nil {
			return fmt.Errorf("start observability: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Shutdown(shutdownCtx); err != nil {
				logger.Warn("observability shutdown", "error", err)
			}
		}()
	}

	lexical := classifier.NewLexical()
	trustStore := store.NewKVTrustStore(kv)

	engine := trust.NewEngine(trustStore, kv, lexical, lexical, logger)
	engine.SetObservability(obs)

	var evaluator *policy.RiskRuleEvaluator
	if len(bundle.RiskRules) > 0 {
		evaluator, err = policy.NewRiskRuleEvaluator()
		if err != nil {
			return fmt.Errorf("create risk rule evaluator: %w", err)
		}
	}
	analyzer := autonomy.NewAnalyzer(lexical, engine, kv, bundle, evaluator, logger)
	analyzer.SetObservability(obs)

	gate := autonomy.NewGate(engine, bundle, kv, logger)
	gate.SetObservability(obs)

	logger.Info("aegis governance engine ready",
		"store", cfg.StoreBackend, "telemetry", cfg.Telemetry)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openStore(cfg *config.Config) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "sqlite":
		s, err := store.OpenSQL(store.DialectSQLite, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := store.OpenSQL(store.DialectPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "redis":
		s := store.NewRedis(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), cfg.RedisDB)
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
