package serverless

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ErrBodyTooLarge is returned when a request body exceeds the configured cap
var ErrBodyTooLarge = errors.New("request body too large")

// FromHTTP converts a net/http request into a generic request, reading at
// most maxBody bytes of body.
func FromHTTP(r *http.Request, maxBody int64) (*Request, error) {
	headers := make(map[string]string, len(r.Header))
	for k, values := range r.Header {
		if len(values) > 0 {
			headers[k] = values[0]
		}
	}

	query := make(map[string]string)
	for k, values := range r.URL.Query() {
		if len(values) > 0 {
			query[k] = values[0]
		}
	}

	req := &Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     headers,
		QueryParams: query,
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return req, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBody {
		return req, ErrBodyTooLarge
	}
	req.Body = body
	return req, nil
}

// WriteHTTP writes the response to a net/http response writer
func (r *Response) WriteHTTP(w http.ResponseWriter) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.StatusCode)
	_, _ = w.Write(r.Body)
}
