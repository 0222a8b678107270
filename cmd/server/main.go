package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"loginsight/pkg/analyzer"
	"loginsight/pkg/api"
	"loginsight/pkg/storage"
	"loginsight/pkg/storage/elastic"
	"loginsight/pkg/storage/memdb"
	"loginsight/pkg/storage/mongo"
	"loginsight/pkg/storage/postgres"
)

type Config struct {
	LogLevel        string `toml:"logLevel"`
	Port            int    `toml:"port"`
	Storage         string `toml:"storage"`
	RulesPath       string `toml:"rulesPath"`
	MaxPayloadBytes int64  `toml:"maxPayloadBytes"`

	ElasticSearchNodes []string `toml:"elasticSearchNodes"`
	AccessIndex        string   `toml:"accessIndex"`
	ErrorIndex         string   `toml:"errorIndex"`

	Analyzer AnalyzerConfig `toml:"analyzer"`
}

type AnalyzerConfig struct {
	BruteForceThreshold int     `toml:"bruteForceThreshold"`
	SlowRequestMs       float64 `toml:"slowRequestMs"`
	PeakAlertMs         float64 `toml:"peakAlertMs"`
	MinSeverityScore    int     `toml:"minSeverityScore"`
	AgentKillCode       string  `toml:"agentKillCode"`
}

func main() {
	var (
		configPath string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "config.toml", "Path to TOML config file")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.Parse()

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[server] failed to initialize %q storage: %v", cfg.Storage, err)
	}

	apiCfg := api.NewConfig()
	if len(apiCfg.APIKeys) == 0 {
		log.Fatal("[server] no API keys configured, set API_KEYS")
	}
	if cfg.MaxPayloadBytes > 0 {
		apiCfg.MaxPayloadBytes = cfg.MaxPayloadBytes
	}
	applyThresholds(&apiCfg.Analyzer, cfg.Analyzer)

	if cfg.RulesPath != "" {
		rules, err := analyzer.LoadAgentRules(cfg.RulesPath)
		if err != nil {
			log.Fatalf("[server] failed to load rules from %s: %v", cfg.RulesPath, err)
		}
		apiCfg.Rules.Replace(rules)
		log.Infof("[server] loaded %d agent rules from %s", len(rules), cfg.RulesPath)

		go func() {
			if err := apiCfg.Rules.Watch(ctx, cfg.RulesPath); err != nil {
				log.Errorf("[server] rule watcher stopped: %v", err)
			}
		}()
	}

	a := api.New(db, apiCfg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: a.Router(),
	}

	go func() {
		log.Infof("[server] starting on port %d", cfg.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[server] failed to start: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if err := db.Close(shutdownCtx); err != nil {
		log.Errorf("[server] error closing store: %v", err)
	}
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}
}

func applyThresholds(dst *analyzer.Config, src AnalyzerConfig) {
	if src.BruteForceThreshold > 0 {
		dst.BruteForceThreshold = src.BruteForceThreshold
	}
	if src.SlowRequestMs > 0 {
		dst.SlowRequestMs = src.SlowRequestMs
	}
	if src.PeakAlertMs > 0 {
		dst.PeakAlertMs = src.PeakAlertMs
	}
	if src.MinSeverityScore > 0 {
		dst.MinSeverityScore = src.MinSeverityScore
	}
	if src.AgentKillCode != "" {
		dst.AgentKillCode = src.AgentKillCode
	}
}

func openStore(ctx context.Context, cfg Config) (storage.Store, error) {
	switch cfg.Storage {
	case "", "memdb":
		return memdb.New(), nil

	case "postgres":
		conf, err := postgres.NewConfig()
		if err != nil {
			return nil, err
		}
		return postgres.New(ctx, conf.ConString())

	case "mongo":
		conf, err := mongo.NewConfig()
		if err != nil {
			return nil, err
		}
		return mongo.New(ctx, conf)

	case "elastic":
		return elastic.New(elastic.Config{
			Nodes:       cfg.ElasticSearchNodes,
			AccessIndex: cfg.AccessIndex,
			ErrorIndex:  cfg.ErrorIndex,
		})
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
