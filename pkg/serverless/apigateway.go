package serverless

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// FromAPIGatewayProxy converts an API Gateway proxy event, the shape Netlify
// delivers to Go functions, into a generic request.
//
// A body flagged as base64 that fails to decode is dropped, so the request
// fails body parsing rather than being processed with garbage.
func FromAPIGatewayProxy(event events.APIGatewayProxyRequest) *Request {
	headers := make(map[string]string, len(event.Headers)+len(event.MultiValueHeaders))
	for k, values := range event.MultiValueHeaders {
		if len(values) > 0 {
			headers[k] = values[0]
		}
	}
	for k, v := range event.Headers {
		headers[k] = v
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			body = nil
		} else {
			body = decoded
		}
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
	}
}

// ToAPIGatewayProxy converts the response back into the proxy event reply
func (r *Response) ToAPIGatewayProxy() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       string(r.Body),
	}
}

// APIGatewayProxyHandler adapts h to the function signature aws-lambda-go
// expects for API Gateway proxy events
func APIGatewayProxyHandler(h HandlerFunc) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return h(ctx, FromAPIGatewayProxy(event)).ToAPIGatewayProxy(), nil
	}
}
