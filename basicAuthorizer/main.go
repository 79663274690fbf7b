package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/product-catalog/pkg/auth"
	"gitlab.connectwisedev.com/product-catalog/pkg/config"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

func main() {
	cfg, err := config.MustLoad()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	users := auth.ParseUsers(cfg.AuthUsers)
	if len(users) == 0 {
		logger.Warn("AUTH_USERS is empty, every request will be denied")
	}
	a := auth.NewAuthorizer(users)

	lambda.Start(func(_ context.Context, req events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
		return a.Authorize(req), nil
	})
}
