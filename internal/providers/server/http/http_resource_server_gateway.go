package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/providers/shared/tlsconfig"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/server"
)

const (
	defaultMediaType = "application/json"
	runRequestPath   = "/apis/request"
)

var _ server.RecordServer = (*HTTPRecordServerGateway)(nil)
var _ server.Runner = (*HTTPRecordServerGateway)(nil)

type HTTPRecordServerGateway struct {
	baseURL   *url.URL
	auth      authConfig
	client    *http.Client
	limiter   *rate.Limiter
	requestID func() string
}

type GatewayOption func(*HTTPRecordServerGateway)

// WithHTTPClient replaces the default client. The configured timeout is not
// applied to a replacement client.
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPRecordServerGateway) {
		if g == nil || client == nil {
			return
		}
		g.client = client
	}
}

func WithRequestIDGenerator(generate func() string) GatewayOption {
	return func(g *HTTPRecordServerGateway) {
		if g == nil || generate == nil {
			return
		}
		g.requestID = generate
	}
}

func NewHTTPRecordServerGateway(remote config.Remote, auth config.Auth, opts ...GatewayOption) (*HTTPRecordServerGateway, error) {
	baseURL, err := parseBaseURL(remote.BaseURL)
	if err != nil {
		return nil, err
	}

	authCfg, err := buildAuthConfig(auth)
	if err != nil {
		return nil, err
	}

	if remote.RequestsPerSecond < 0 {
		return nil, validationError("remote.requests-per-second must not be negative", nil)
	}

	tlsConfig, err := tlsconfig.BuildTLSConfig(remote.TLS, "remote")
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	gateway := &HTTPRecordServerGateway{
		baseURL: baseURL,
		auth:    authCfg,
		client: &http.Client{
			Timeout:   remote.TimeoutDuration(),
			Transport: transport,
		},
		requestID: func() string { return uuid.NewString() },
	}
	if remote.RequestsPerSecond > 0 {
		gateway.limiter = rate.NewLimiter(rate.Limit(remote.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

func (g *HTTPRecordServerGateway) List(ctx context.Context, kind record.Kind) ([]record.RemoteRecord, error) {
	body, err := g.execute(ctx, requestSpec{
		Method: http.MethodGet,
		Path:   kind.RemotePath,
		Accept: defaultMediaType,
	})
	if err != nil {
		return nil, faults.Wrap(err, fmt.Sprintf("error fetching %ss", strings.ToLower(kind.Label)))
	}

	items, err := decodeListResponse(body)
	if err != nil {
		return nil, faults.Wrap(err, fmt.Sprintf("error fetching %ss", strings.ToLower(kind.Label)))
	}
	return items, nil
}

func (g *HTTPRecordServerGateway) Create(ctx context.Context, kind record.Kind, local record.LocalRecord) (record.RemoteRecord, error) {
	body, err := g.execute(ctx, requestSpec{
		Method:      http.MethodPost,
		Path:        kind.RemotePath,
		Accept:      defaultMediaType,
		ContentType: defaultMediaType,
		Body:        local.Content(),
	})
	if err != nil {
		return record.RemoteRecord{}, faults.Wrap(err, fmt.Sprintf("error creating %s %q", kind.Label, local.Name))
	}

	created, err := decodeRecordResponse(body)
	if err != nil {
		return record.RemoteRecord{}, faults.Wrap(err, fmt.Sprintf("error creating %s %q", kind.Label, local.Name))
	}
	return created, nil
}

func (g *HTTPRecordServerGateway) Update(ctx context.Context, kind record.Kind, id string, local record.LocalRecord) (record.RemoteRecord, error) {
	if strings.TrimSpace(id) == "" {
		return record.RemoteRecord{}, validationError(fmt.Sprintf("%s %q has no remote id", kind.Label, local.Name), nil)
	}

	body, err := g.execute(ctx, requestSpec{
		Method:      http.MethodPut,
		Path:        kind.RemotePath + "/" + url.PathEscape(id),
		Accept:      defaultMediaType,
		ContentType: defaultMediaType,
		Body:        local.Content(),
	})
	if err != nil {
		return record.RemoteRecord{}, faults.Wrap(err, fmt.Sprintf("error updating %s %q", kind.Label, local.Name))
	}

	updated, err := decodeRecordResponse(body)
	if err != nil {
		return record.RemoteRecord{}, faults.Wrap(err, fmt.Sprintf("error updating %s %q", kind.Label, local.Name))
	}
	return updated, nil
}

func (g *HTTPRecordServerGateway) Delete(ctx context.Context, kind record.Kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationError(fmt.Sprintf("%s delete requires a remote id", kind.Label), nil)
	}

	_, err := g.execute(ctx, requestSpec{
		Method:      http.MethodDelete,
		Path:        kind.RemotePath + "/" + url.PathEscape(id),
		Accept:      defaultMediaType,
		ContentType: defaultMediaType,
		Body:        map[string]any{},
	})
	if err != nil {
		return faults.Wrap(err, fmt.Sprintf("error removing %s %q", kind.Label, id))
	}
	return nil
}

func (g *HTTPRecordServerGateway) Run(ctx context.Context, request server.RunRequest) (server.RunResult, error) {
	if strings.TrimSpace(request.APIID) == "" {
		return server.RunResult{}, validationError("run request requires an api id", nil)
	}

	body, err := g.execute(ctx, requestSpec{
		Method:      http.MethodPost,
		Path:        runRequestPath,
		Accept:      defaultMediaType,
		ContentType: defaultMediaType,
		Body: map[string]any{
			"apiId": request.APIID,
			"messages": []any{
				map[string]any{"role": "user", "content": request.Message},
			},
		},
	})
	if err != nil {
		return server.RunResult{}, faults.Wrap(err, "error running integral")
	}

	return decodeRunResponse(body)
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("remote.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("remote.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("remote.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("remote.base-url host is required", nil)
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed, nil
}
