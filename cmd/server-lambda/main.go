package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"example/chess-ingest/app"
	"example/chess-ingest/app/config"
	"example/chess-ingest/app/logs"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logs.New(os.Stderr, config.LogConfig{Style: "json", Level: cfg.Logs.Level})

	app.MustInitDB(cfg.DB, logger)

	var queue app.JobQueue
	if cfg.QueueURL != "" {
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
	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway proxy integration.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
