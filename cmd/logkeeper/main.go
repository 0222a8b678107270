package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"loginsight/pkg/models"
	"loginsight/pkg/storage"
	"loginsight/pkg/storage/elastic"
	"loginsight/pkg/storage/memdb"
	"loginsight/pkg/storage/mongo"
	"loginsight/pkg/storage/postgres"
)

type Config struct {
	LogLevel     string   `toml:"logLevel"`
	KafkaBrokers []string `toml:"kafkaBrokers"`
	AccessTopic  string   `toml:"accessTopic"`
	ErrorTopic   string   `toml:"errorTopic"`
	KafkaGroupID string   `toml:"kafkaGroupID"`

	Storage            string   `toml:"storage"`
	ElasticSearchNodes []string `toml:"elasticSearchNodes"`
	AccessIndex        string   `toml:"accessIndex"`
	ErrorIndex         string   `toml:"errorIndex"`

	NumWorkers int `toml:"numWorkers"`
}

func main() {
	var (
		configPath string
		logLevel   string
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("[logkeeper] shutting down gracefully...")
		cancel()
	}()

	flag.StringVar(&configPath, "config", "config.toml", "Path to TOML config file")
	flag.StringVar(&logLevel, "log", "info", "Log level: debug, info, warn, error.")
	flag.Parse()

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[logkeeper] failed to load config file %s: %v", configPath, err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[logkeeper] failed to initialize %q storage: %v", cfg.Storage, err)
	}

	accessJobs := make(chan kafka.Message, cfg.NumWorkers*5) // buffer is needed to increase throughput
	errorJobs := make(chan kafka.Message, cfg.NumWorkers*5)

	var wg sync.WaitGroup
	wg.Add(cfg.NumWorkers * 2)
	for workerID := 0; workerID < cfg.NumWorkers; workerID++ {
		go func(id int) {
			defer wg.Done()
			accessWorker(ctx, db, accessJobs, id)
		}(workerID)
		go func(id int) {
			defer wg.Done()
			errorWorker(ctx, db, errorJobs, id)
		}(workerID)
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		readLoop(ctx, cfg, cfg.AccessTopic, accessJobs)
	}()
	go func() {
		defer readers.Done()
		readLoop(ctx, cfg, cfg.ErrorTopic, errorJobs)
	}()

	log.Info("[logkeeper] accepting logs...")
	readers.Wait()

	close(accessJobs)
	close(errorJobs)
	wg.Wait()

	if err := db.Close(context.Background()); err != nil {
		log.Errorf("[logkeeper] error closing store: %v", err)
	}
}

func readLoop(ctx context.Context, cfg Config, topic string, jobs chan<- kafka.Message) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    topic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	defer r.Close()

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Errorf("[logkeeper] failed to read message from topic %s: %v", topic, err)
			continue
		}
		log.Debugf("[logkeeper][%s] received message: %s", topic, string(msg.Value))

		jobs <- msg
	}
}

func accessWorker(ctx context.Context, db storage.Store, jobs <-chan kafka.Message, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("[logkeeper][workerID:%d] context cancelled, exiting worker", workerID)
			return

		case msg, ok := <-jobs:
			if !ok {
				log.Infof("[logkeeper][workerID:%d] jobs channel closed, exiting worker", workerID)
				return
			}

			var entry models.AccessLogEntry
			if err := json.Unmarshal(msg.Value, &entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to unmarshal access log entry: %v", workerID, err)
				continue
			}

			if err := db.AddAccessLog(ctx, entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to store access log entry: %v", workerID, err)
			} else {
				log.Infof("[logkeeper][workerID:%d] stored access log entry from %s", workerID, entry.IPAddress)
			}
		}
	}
}

func errorWorker(ctx context.Context, db storage.Store, jobs <-chan kafka.Message, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("[logkeeper][workerID:%d] context cancelled, exiting worker", workerID)
			return

		case msg, ok := <-jobs:
			if !ok {
				log.Infof("[logkeeper][workerID:%d] jobs channel closed, exiting worker", workerID)
				return
			}

			var entry models.ErrorLogEntry
			if err := json.Unmarshal(msg.Value, &entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to unmarshal error log entry: %v", workerID, err)
				continue
			}

			if err := db.AddErrorLog(ctx, entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to store error log entry: %v", workerID, err)
			} else {
				log.Infof("[logkeeper][workerID:%d][%s] error log entry stored", workerID, shorten(entry.ErrorCode))
			}
		}
	}
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
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
