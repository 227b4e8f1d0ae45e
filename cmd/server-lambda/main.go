package main

import (
	"context"
	"log"

	"github.com/KhoaTranProgrammer/Common-Topics/app"
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Logs.Apply()

	// No engine process inside Lambda: only /health and /tournament answer.
	h := &app.Handlers{GamesDir: cfg.GamesDir, Timeout: app.RequestTimeout}

	guard, err := app.NewGuard(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to set up auth: %v", err)
	}

	// Wrap Gin router with Lambda adapter
	ginLambda = ginadapter.New(app.NewRouter(h, guard))
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
