package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
)

// BuildTLSConfig returns nil when settings is nil so callers keep the
// transport defaults.
func BuildTLSConfig(settings *config.TLS, scope string) (*tls.Config, error) {
	if settings == nil {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: settings.InsecureSkipVerify,
	}

	if caFile := strings.TrimSpace(settings.CACertFile); caFile != "" {
		caBytes, err := os.ReadFile(caFile)
		if err != nil {
			return nil, validationError(fmt.Sprintf("%s.tls.ca-cert-file could not be read", scope), err)
		}

		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caBytes); !ok {
			return nil, validationError(fmt.Sprintf("%s.tls.ca-cert-file is not valid PEM", scope), nil)
		}
		tlsConfig.RootCAs = pool
	}

	certFile := strings.TrimSpace(settings.ClientCertFile)
	keyFile := strings.TrimSpace(settings.ClientKeyFile)
	if (certFile == "") != (keyFile == "") {
		return nil, validationError(fmt.Sprintf("%s.tls requires both client-cert-file and client-key-file", scope), nil)
	}

	if certFile != "" {
		certificate, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, validationError(fmt.Sprintf("%s.tls client certificate pair is invalid", scope), err)
		}
		tlsConfig.Certificates = []tls.Certificate{certificate}
	}

	return tlsConfig, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
