package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	debugctx "github.com/crmarques/reason/debugctx"
)

func (g *HTTPRecordServerGateway) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	started := time.Now()
	requestID := request.Header.Get("X-Request-Id")
	debugctx.Printf(
		ctx,
		"http request method=%q url=%q request_id=%q",
		request.Method,
		redactURLForDebug(request.URL),
		requestID,
	)

	response, err := g.client.Do(request)
	if err != nil {
		debugctx.Printf(
			ctx,
			"http request failed method=%q url=%q request_id=%q error=%v",
			request.Method,
			redactURLForDebug(request.URL),
			requestID,
			err,
		)
		return nil, err
	}

	debugctx.Printf(
		ctx,
		"http response method=%q url=%q request_id=%q status=%d elapsed=%s",
		request.Method,
		redactURLForDebug(request.URL),
		requestID,
		response.StatusCode,
		time.Since(started).Round(time.Millisecond),
	)
	return response, nil
}

func redactURLForDebug(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil

	query := cloned.Query()
	if len(query) > 0 {
		for key, values := range query {
			redacted := make([]string, len(values))
			for idx := range values {
				redacted[idx] = "<redacted>"
			}
			query[key] = redacted
		}
		cloned.RawQuery = query.Encode()
	}

	return cloned.String()
}
