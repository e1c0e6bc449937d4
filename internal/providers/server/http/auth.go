package http

import (
	"net/http"
	"strings"

	"github.com/crmarques/reason/config"
)

type authConfig struct {
	apiKey string
}

func buildAuthConfig(cfg config.Auth) (authConfig, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return authConfig{}, configMissingError("no API key configured, please login first")
	}
	if strings.ContainsAny(apiKey, " \t\r\n") {
		return authConfig{}, validationError("auth.api-key must not contain whitespace", nil)
	}
	return authConfig{apiKey: apiKey}, nil
}

func (g *HTTPRecordServerGateway) applyAuth(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+g.auth.apiKey)
}
