package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"review-proxy-api/internal/config"
	"review-proxy-api/pkg/server"
	"review-proxy-api/pkg/serverless"
)

var container *server.Container

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	config.ConfigureLogging(cfg)

	container, err = server.NewContainer(cfg)
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}
}

func main() {
	awslambda.Start(serverless.APIGatewayProxyHandler(container.ReviewHandler.HandleSubmit))
}
