package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/vexscan/vexscan-client/pkg/apierrors"
)

const versionPath = "/version"

// bodyExcerptLen bounds how much of a malformed response body gets embedded in
// the error message.
const bodyExcerptLen = 20

// Connection is a validated session against one vexscan API endpoint. It owns
// the transport configuration and is the sole entry point through which
// resource handles reach the network. A Connection is immutable after
// construction and safe for concurrent use.
type Connection struct {
	baseURL    *url.URL
	headers    map[string]string
	httpClient *http.Client
	logger     zerolog.Logger
	verbose    bool
}

// NewConnection establishes a session against the API endpoint at baseURL and
// validates it with a version handshake. Construction fails, and no Connection
// is returned, if the configuration is invalid, the endpoint is unreachable,
// or the handshake response does not look like a vexscan API.
func NewConnection(ctx context.Context, baseURL string, opts ...Option) (*Connection, error) {
	cfg := transportConfig{
		BaseURL: baseURL,
		Timeout: DefaultTimeout,
		Verify:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, apierrors.ErrAPI.MsgErr(fmt.Sprintf("invalid API endpoint URL %q", cfg.BaseURL), err)
	}

	conn := &Connection{
		baseURL:    base,
		headers:    cfg.headers(),
		httpClient: cfg.httpClient(),
		logger:     cfg.sink(),
		verbose:    cfg.Verbose,
	}

	if err := conn.canAccessAPI(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// canAccessAPI performs the bootstrap handshake. The version check must come
// back as a 200 whose body contains a "version" key; anything else fails
// construction.
func (c *Connection) canAccessAPI(ctx context.Context) error {
	code, doc, err := c.SendRequest(ctx, http.MethodGet, versionPath, nil)
	if err != nil {
		return apierrors.ErrAPI.MsgErr(fmt.Sprintf("an error was raised when connecting to the API: %q", err), err).SetExpandError(true)
	}
	if code != http.StatusOK || !doc.Has("version") {
		return apierrors.ErrAPI.Msg("unexpected HTTP response when connecting to the API")
	}
	return nil
}

// Version fetches the service version descriptor.
func (c *Connection) Version(ctx context.Context) (*VersionInfo, error) {
	code, doc, err := c.SendRequest(ctx, http.MethodGet, versionPath, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("failed to retrieve version, unexpected code %d", code))
	}
	var info VersionInfo
	if err := doc.Decode(&info); err != nil {
		return nil, apierrors.ErrAPI.MsgErr("unable to decode version response", err)
	}
	return &info, nil
}

// SendRequest performs one request/response cycle against the API and returns
// the HTTP status code together with the parsed JSON body.
//
// The path is resolved against the session's base URL using standard
// relative-reference semantics. method must be one of GET, POST or DELETE;
// anything else is a programming error and panics before any network activity.
// body is serialized to JSON and is only meaningful for POST.
//
// Responses with status 400, 403 or 404 are converted into their mapped
// taxonomy kinds carrying the body's "message" attribute. Every other status,
// including all 2xx and 5xx, is returned as-is for the caller to interpret.
func (c *Connection) SendRequest(ctx context.Context, method, path string, body any) (int, Document, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		panic(fmt.Sprintf("invalid HTTP method: %q", method))
	}

	ref, err := url.Parse(path)
	if err != nil {
		return 0, Document{}, apierrors.ErrAPI.MsgErr(fmt.Sprintf("invalid request path %q", path), err)
	}
	fullURL := c.baseURL.ResolveReference(ref)

	var payload io.Reader
	if method == http.MethodPost {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, Document{}, apierrors.ErrAPI.MsgErr("unable to serialize request body", err)
		}
		payload = bytes.NewReader(data)
	}

	requestID := newRequestID()
	if c.verbose {
		ctx = withClientTrace(ctx, c.logger, requestID)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), payload)
	if err != nil {
		return 0, Document{}, apierrors.ErrAPI.MsgErr("failed to create request", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", fullURL.String()).
		Msg("sending API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, Document{}, apierrors.ErrAPI.MsgErr(fmt.Sprintf("an error occurred while sending the request: %q", err), err).SetExpandError(true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, Document{}, apierrors.ErrAPI.MsgErr("failed to read response body", err)
	}

	if !gjson.ValidBytes(raw) {
		msg := fmt.Sprintf("the API service did not return JSON, if this issue persists"+
			" please create an issue at %s. The response body starts with: %q",
			IssueURL, excerpt(raw, bodyExcerptLen))
		return 0, Document{}, apierrors.ErrAPI.Msg(msg)
	}
	doc := newDocument(raw)

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msgf("received HTTP response from the wire:\n%s", doc.Pretty())

	if kind, ok := apierrors.ForStatus(resp.StatusCode); ok {
		message, merr := doc.StringField("message")
		if merr != nil {
			msg := fmt.Sprintf("the API service did not return the expected \"message\""+
				" attribute for the %d response. Please create an issue at %s"+
				" with this JSON data:\n\n%s",
				resp.StatusCode, IssueURL, doc.Pretty())
			return 0, Document{}, apierrors.ErrAPI.Msg(msg)
		}
		return 0, Document{}, kind.Msg(message)
	}

	return resp.StatusCode, doc, nil
}

// Close releases idle connections held by the underlying transport. A
// Connection needs no explicit close; this is cooperative resource release for
// callers that want it.
func (c *Connection) Close() {
	c.httpClient.CloseIdleConnections()
}

func excerpt(raw []byte, n int) []byte {
	if len(raw) > n {
		return raw[:n]
	}
	return raw
}
