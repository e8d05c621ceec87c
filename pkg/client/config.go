// Package client provides the session and request layer for the vexscan REST
// API. A Connection is established once against a remote endpoint, validated
// through a version handshake, and then used to issue typed JSON requests.
// Failures are reported through the taxonomy in pkg/apierrors.
package client

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vexscan/vexscan-client/pkg/apierrors"
)

// Version is the client release identifier, embedded in the User-Agent header.
const Version = "1.0.0"

// IssueURL points at the public issue tracker. Protocol-anomaly errors embed it
// together with the raw response evidence so drift between client and service
// versions can be reported without server-side logs.
const IssueURL = "https://github.com/vexscan/vexscan-client/issues/new"

// DefaultTimeout bounds each request when no explicit timeout is configured.
const DefaultTimeout = 5 * time.Second

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// transportConfig holds the constructor inputs that become the immutable
// per-session transport parameters.
type transportConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
	Verify  bool
	Verbose bool

	logger    zerolog.Logger
	loggerSet bool
	transport http.RoundTripper
}

// Option configures a Connection at construction time.
type Option func(*transportConfig)

// WithTimeout sets the per-call timeout for the session. The default is
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *transportConfig) {
		cfg.Timeout = d
	}
}

// WithVerify controls TLS certificate validation. Verification is on by
// default; passing false disables it for endpoints with self-signed
// certificates.
func WithVerify(verify bool) Option {
	return func(cfg *transportConfig) {
		cfg.Verify = verify
	}
}

// WithVerbose enables debug-level diagnostics for every request and response,
// including connection-level tracing. Disabled by default.
func WithVerbose(verbose bool) Option {
	return func(cfg *transportConfig) {
		cfg.Verbose = verbose
	}
}

// WithLogger supplies the diagnostic sink used when verbose mode is enabled.
// Without it, verbose output goes to stderr.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *transportConfig) {
		cfg.logger = logger
		cfg.loggerSet = true
	}
}

// WithTransport replaces the underlying HTTP transport. Intended for tests
// that need to observe or stub network activity.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *transportConfig) {
		cfg.transport = rt
	}
}

func (cfg *transportConfig) validate() apierrors.Error {
	if err := configValidator.Struct(cfg); err != nil {
		return apierrors.ErrAPI.MsgErr("invalid connection configuration: "+err.Error(), err)
	}
	return nil
}

// headers returns the default header set sent with every request.
func (cfg *transportConfig) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "REST API Client " + Version,
	}
}

// httpClient builds the session's HTTP client with the configured timeout and
// TLS policy.
func (cfg *transportConfig) httpClient() *http.Client {
	c := &http.Client{Timeout: cfg.Timeout}
	switch {
	case cfg.transport != nil:
		c.Transport = cfg.transport
	case !cfg.Verify:
		c.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
	return c
}

// sink resolves the diagnostic logger. When verbose is off all diagnostics are
// suppressed through a no-op logger.
func (cfg *transportConfig) sink() zerolog.Logger {
	if !cfg.Verbose {
		return zerolog.Nop()
	}
	if cfg.loggerSet {
		return cfg.logger
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
