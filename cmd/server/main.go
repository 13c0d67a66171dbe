package main

import (
	"context"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"example/chess-ingest/app"
	"example/chess-ingest/app/config"
	"example/chess-ingest/app/logs"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logs.New(os.Stderr, cfg.Logs)

	app.MustInitDB(cfg.DB, logger)

	var queue app.JobQueue
	if cfg.QueueURL == "" {
		logger.Warn("QUEUE_URL not set; POST /jobs is disabled")
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatalf("failed to load AWS config: %v", err)
		}
		queue = app.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.QueueURL)
	}

	svc := app.NewServiceFromConfig(cfg.Chess, logger)
	router, err := app.NewRouter(app.NewAPI(svc, queue, logger), cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}

	logger.Info("listening", "addr", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
