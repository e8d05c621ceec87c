package client

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newRequestID returns a time-ordered identifier that correlates the
// diagnostic log lines of one request/response cycle.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// withClientTrace attaches connection-level tracing to the request context.
// This is the best-effort analog of raising the network stack's log verbosity:
// DNS, connect and TLS events become visible at debug level, observable only
// via logs.
func withClientTrace(ctx context.Context, logger zerolog.Logger, requestID string) context.Context {
	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			logger.Debug().Str("request_id", requestID).Str("host", info.Host).Msg("resolving host")
		},
		ConnectStart: func(network, addr string) {
			logger.Debug().Str("request_id", requestID).Str("network", network).Str("addr", addr).Msg("connecting")
		},
		GotConn: func(info httptrace.GotConnInfo) {
			logger.Debug().Str("request_id", requestID).Bool("reused", info.Reused).Msg("connection established")
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			ev := logger.Debug().Str("request_id", requestID)
			if err != nil {
				ev.Err(err).Msg("TLS handshake failed")
				return
			}
			ev.Uint16("tls_version", state.Version).Msg("TLS handshake done")
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			ev := logger.Debug().Str("request_id", requestID)
			if info.Err != nil {
				ev.Err(info.Err).Msg("failed to write request")
				return
			}
			ev.Msg("request written")
		},
	}
	return httptrace.WithClientTrace(ctx, trace)
}
