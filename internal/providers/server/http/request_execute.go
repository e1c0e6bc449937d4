package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxResponseBodyBytes = 1 << 20

func (g *HTTPRecordServerGateway) execute(ctx context.Context, spec requestSpec) ([]byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, transportError("remote request cancelled while waiting for rate limit", err)
		}
	}

	request, err := g.newRequest(ctx, spec)
	if err != nil {
		return nil, err
	}

	response, err := g.doRequest(ctx, request)
	if err != nil {
		return nil, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, transportError("failed to read remote response body", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatusError(response.StatusCode, body)
	}

	return body, nil
}

func (g *HTTPRecordServerGateway) newRequest(ctx context.Context, spec requestSpec) (*http.Request, error) {
	targetURL, err := g.resolveRequestURL(spec.Path)
	if err != nil {
		return nil, err
	}

	requestBody, err := encodeRequestBody(spec.Body)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(requestBody) > 0 {
		bodyReader = bytes.NewReader(requestBody)
	}

	request, err := http.NewRequestWithContext(ctx, spec.Method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	if strings.TrimSpace(spec.Accept) != "" {
		request.Header.Set("Accept", spec.Accept)
	}
	if len(requestBody) > 0 && strings.TrimSpace(spec.ContentType) != "" {
		request.Header.Set("Content-Type", spec.ContentType)
	}
	request.Header.Set("X-Request-Id", g.requestID())

	g.applyAuth(request)
	return request, nil
}

func (g *HTTPRecordServerGateway) resolveRequestURL(requestPath string) (string, error) {
	if parsed, err := url.Parse(requestPath); err == nil && parsed.Scheme != "" {
		return "", validationError("request path must be relative to remote.base-url", nil)
	}

	target := *g.baseURL
	target.Path = joinBaseAndRequestPath(g.baseURL.Path, requestPath)
	target.RawPath = ""
	return target.String(), nil
}
