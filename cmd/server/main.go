package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/charmbracelet/log"

	"github.com/minwoo-song/bankcore/infra"
	"github.com/minwoo-song/bankcore/infra/messaging"
	infrarepo "github.com/minwoo-song/bankcore/infra/repository"
	"github.com/minwoo-song/bankcore/infra/security"
	"github.com/minwoo-song/bankcore/pkg/config"
	"github.com/minwoo-song/bankcore/pkg/service/transfer"
	"github.com/minwoo-song/bankcore/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := infra.SetupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infra.Migrate(cfg.DB.Url, cfg.DB.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	cipher, err := security.NewAESCipher(cfg.Crypto.Passphrase, cfg.Crypto.Salt)
	if err != nil {
		return fmt.Errorf("failed to initialize account cipher: %w", err)
	}

	uow := infrarepo.NewUoW(db)
	transfers := transfer.NewService(uow, cipher, logger)

	brokers := messaging.ParseBrokers(cfg.Kafka.Brokers)
	writer := messaging.NewWriter(brokers)
	defer func() { _ = writer.Close() }()

	dlq := messaging.NewKafkaDeadLetterer(writer, cfg.Kafka.RequestTopic, logger)
	dispatcher := messaging.NewDispatcher(
		transfers, dlq,
		cfg.Kafka.MessageTTL, cfg.Kafka.RetryAttempts, cfg.Kafka.RetryBackoff,
		logger,
	)

	requests := messaging.NewRequestConsumer(
		brokers, cfg.Kafka.GroupID, cfg.Kafka.RequestTopic, writer, dispatcher, logger)
	push := messaging.NewPushConsumer(
		brokers, cfg.Kafka.GroupID, cfg.Kafka.PushTopic, logger)
	recovery := messaging.NewRecoveryWorker(
		brokers, cfg.Kafka.GroupID, cfg.Kafka.RequestTopic, transfers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); requests.Run(ctx) }()
	go func() { defer wg.Done(); push.Run(ctx) }()
	go func() { defer wg.Done(); recovery.Run(ctx) }()

	app := webapi.SetupApp(db)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr,
		"request_topic", cfg.Kafka.RequestTopic, "push_topic", cfg.Kafka.PushTopic)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(addr) }()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	_ = app.Shutdown()
	_ = requests.Close()
	_ = push.Close()
	_ = recovery.Close()
	wg.Wait()
	return nil
}
