package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

const resultOK = "ok"

// Envelope is the success body of every endpoint.
type Envelope struct {
	Result           string      `json:"result"`
	Data             interface{} `json:"data,omitempty"`
	LastEvaluatedKey string      `json:"lastEvaluatedKey,omitempty"`
	SignedURL        string      `json:"signedUrl,omitempty"`
}

// ErrorBody is the failure body of every endpoint.
type ErrorBody struct {
	Message string `json:"message"`
}

func headers(methods string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": methods,
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
	}
}

func respond(status int, methods string, body interface{}) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		data = []byte(`{"message":"Failed to format response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers(methods),
		Body:       string(data),
	}
}

func ok(methods string, env Envelope) events.APIGatewayProxyResponse {
	env.Result = resultOK
	return respond(http.StatusOK, methods, env)
}

func fail(status int, methods, message string) events.APIGatewayProxyResponse {
	return respond(status, methods, ErrorBody{Message: message})
}
