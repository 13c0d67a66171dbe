package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"example/chess-ingest/app"
	"example/chess-ingest/app/config"
	"example/chess-ingest/app/logs"
	"example/chess-ingest/app/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logs.New(os.Stderr, cfg.Logs)

	if cfg.QueueURL == "" {
		log.Fatal("QUEUE_URL environment variable is required")
	}

	app.MustInitDB(cfg.DB, logger)

	var pub app.EventPublisher
	if cfg.RedisURL != "" {
		sp, err := app.NewStreamPublisherFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer sp.Close()
		pub = sp
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	svc := app.NewServiceFromConfig(cfg.Chess, logger)
	handle := func(ctx context.Context, job models.IngestJob) error {
		return app.ProcessIngestJob(ctx, svc, pub, job, logger)
	}

	worker := app.NewWorker(sqs.NewFromConfig(awsCfg), cfg.QueueURL, handle, logger)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker stopped: %v", err)
	}
	logger.Info("worker shut down")
}
