package main

import (
	"context"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/kafka"
	"github.com/UnendingLoop/BatchWatermark/internal/repository"
	"github.com/UnendingLoop/BatchWatermark/internal/worker"
	"github.com/wb-go/wbf/config"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

const (
	kafkaWaitTimeout  = 30 * time.Second
	defaultMigrations = "./migrations"
)

// newPublisher connects to KAFKA_BROKER when it is set. Any failure leaves the batch without events, not without work.
func newPublisher(ctx context.Context, cfg *config.Config, logger zlog.Zerolog) (worker.Publisher, func()) {
	broker := cfg.GetString("KAFKA_BROKER")
	if broker == "" {
		return worker.NoopPublisher{}, func() {}
	}
	topic := cfg.GetString("KAFKA_TOPIC")
	if topic == "" {
		topic = kafka.DefaultTopic
	}

	// ждем пока кафка раздуплится, но не вечно
	waitCtx, cancel := context.WithTimeout(ctx, kafkaWaitTimeout)
	defer cancel()

	if err := kafka.WaitKafkaReady(waitCtx, broker, 2*time.Second); err != nil {
		logger.Warn().Err(err).Msg("Kafka unavailable, outcome events disabled")
		return worker.NoopPublisher{}, func() {}
	}
	if err := kafka.InitKafkaTopics(waitCtx, broker, 2*time.Second, topic); err != nil {
		logger.Warn().Err(err).Msg("Failed to init kafka topic, outcome events disabled")
		return worker.NoopPublisher{}, func() {}
	}

	pub := wbfkafka.NewProducer([]string{broker}, topic)
	logger.Info().Msgf("Publishing outcome events to %s/%s", broker, topic)

	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Kafka-producer")
		}
	}
}

// newJournal connects to POSTGRES_DSN and applies migrations when the DSN is set.
func newJournal(cfg *config.Config, logger zlog.Zerolog) (worker.RunJournal, func()) {
	if cfg.GetString("POSTGRES_DSN") == "" {
		return worker.NoopJournal{}, func() {}
	}

	dbConn, err := repository.ConnectWithRetries(cfg, 3, 5*time.Second)
	if err != nil {
		logger.Warn().Err(err).Msg("Run journal disabled")
		return worker.NoopJournal{}, func() {}
	}

	closeDB := func() {
		if err := dbConn.Master.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close DB-conn correctly")
		}
	}

	migrations := cfg.GetString("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = defaultMigrations
	}
	if err := repository.MigrateWithRetries(dbConn.Master, migrations, 3, 5*time.Second); err != nil {
		logger.Warn().Err(err).Msg("Run journal disabled")
		closeDB()
		return worker.NoopJournal{}, func() {}
	}

	return repository.NewPostgresJournalRepo(dbConn), closeDB
}
