package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VTGare/kekboard/arikawautils/middlewares"
	"github.com/VTGare/kekboard/bot"
	"github.com/VTGare/kekboard/commands"
	"github.com/VTGare/kekboard/ctxzap"
	"github.com/VTGare/kekboard/metrics"
	"github.com/VTGare/kekboard/store"
	"github.com/VTGare/kekboard/store/mongo"
	"github.com/VTGare/kekboard/store/sqlite"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const envPrefix = "KEKBOARD_"

var config = koanf.NewWithConf(koanf.Conf{
	Delim:       ".",
	StrictMerge: true,
})

func main() {
	if err := initializeConfig(config, "config.json", ".env"); err != nil {
		log.Fatalf("failed to intialize config: %v", err)
	}

	logger, err := initializeLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = ctxzap.ToContext(ctx, logger)

	st, err := openStore(config)
	if err != nil {
		logger.With("error", err).Fatal("failed to configure the store")
	}

	if err := st.Init(ctx); err != nil {
		logger.With("error", err).Fatal("failed to initialize the store")
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := st.Close(closeCtx); err != nil {
			logger.With("error", err).Warn("failed to close the store")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if addr := config.String("metrics.addr"); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, logger, addr, reg); err != nil {
				logger.With("error", err).Error("metrics listener stopped")
			}
		}()
	}

	b, err := bot.New(logger, config, st, m)
	if err != nil {
		logger.With("error", err).Fatal("failed to create the bot")
	}

	b.AddMiddleware(middlewares.CommandLog(logger))
	commands.RegisterCommands(b)

	if err := b.Start(ctx); err != nil {
		logger.With("error", err).Error("bot stopped")
	}
}

func initializeLogger() (*zap.SugaredLogger, error) {
	if config.Bool("dev.mode") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return log.Sugar(), nil
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// openStore picks the storage backend from store.driver.
func openStore(k *koanf.Koanf) (store.Store, error) {
	switch driver := k.String("store.driver"); driver {
	case "", "sqlite":
		path := k.String("store.path")
		if path == "" {
			path = "kekboard.db"
		}

		return sqlite.New(path), nil
	case "mongo":
		uri := k.String("store.uri")
		if uri == "" {
			return nil, fmt.Errorf("store.uri is required for the mongo driver")
		}

		database := k.String("store.database")
		if database == "" {
			database = "kekboard"
		}

		return mongo.New(uri, database), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func initializeConfig(k *koanf.Koanf, jsonPath, dotenvPath string) error {
	// Load JSON config
	if fileExists(jsonPath) {
		if err := k.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return err
		}
	}

	// Load environment variables
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return err
	}

	// Load .env file
	if fileExists(dotenvPath) {
		if err := k.Load(file.Provider(dotenvPath), dotenv.ParserEnv(envPrefix, ".", envKey)); err != nil {
			return err
		}
	}

	if k.String("bot.token") == "" {
		return fmt.Errorf("bot.token is not set, provide it in %v, %v or %vBOT_TOKEN", jsonPath, dotenvPath, envPrefix)
	}

	return nil
}

// envKey maps KEKBOARD_SCAN_WINDOW to scan.window.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(
		strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
