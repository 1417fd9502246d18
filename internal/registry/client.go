package registry

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
)

const contentType = "application/vnd.schemaregistry.v1+json"

var retryBackoffs = []time.Duration{100 * time.Millisecond, 400 * time.Millisecond, 1600 * time.Millisecond}

// Client is an HTTP client for one Confluent-compatible Schema Registry.
// Construction validates the base URL against the SSRF deny-list; every
// mutating method checks ViewOnly before doing any network I/O.
type Client struct {
	name     string
	base     *url.URL
	user     string
	password string
	viewOnly bool
	http     *http.Client
}

// NewClient builds a Client for cfg, validating its endpoint per spec.md
// §4.1. The returned error is always a *apierrors.CodedError.
func NewClient(cfg Config) (*Client, error) {
	base, err := validateEndpoint(cfg.BaseURL, cfg.AllowLocalhost)
	if err != nil {
		return nil, err
	}

	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if !sameOrigin(req.URL, via[0].URL) {
				return apierrors.New(apierrors.CodeSSRFBlocked, "refusing cross-origin redirect to %s", req.URL)
			}
			return nil
		},
	}

	return &Client{
		name:     cfg.Name,
		base:     base,
		user:     cfg.User,
		password: cfg.Password,
		viewOnly: cfg.ViewOnly,
		http:     httpClient,
	}, nil
}

func buildTransport(cfg Config) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 60 * time.Second}
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}

	if cfg.CACertPath != "" {
		pool := x509.NewCertPool()
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, apierrors.New(apierrors.CodeConfigInvalid, "registry %q: reading CA bundle: %v", cfg.Name, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, apierrors.New(apierrors.CodeConfigInvalid, "registry %q: CA bundle contains no certificates", cfg.Name)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, apierrors.New(apierrors.CodeConfigInvalid, "registry %q: loading client cert: %v", cfg.Name, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		TLSClientConfig:       tlsConfig,
		ResponseHeaderTimeout: 15 * time.Second,
	}, nil
}

// ViewOnly reports whether mutating operations on this registry are blocked.
func (c *Client) ViewOnly() bool { return c.viewOnly }

// Endpoint returns the registry's base URL and basic-auth credentials, for
// handing off to an externally-run migrator (spec.md §4.5 mode B). Unlike
// Info, this is not part of the public read-only view.
func (c *Client) Endpoint() (baseURL, user, password string) {
	return c.base.String(), c.user, c.password
}

// Name returns the configured registry name.
func (c *Client) Name() string { return c.name }

func (c *Client) requireWritable() error {
	if c.viewOnly {
		return apierrors.New(apierrors.CodeRegistryViewonly, "registry %q is view-only", c.name).
			WithDetail("registry", c.name)
	}
	return nil
}

// regError is the structured error body returned by the registry on 4xx/5xx.
type regError struct {
	StatusCode int    `json:"-"`
	ErrorCode  int    `json:"error_code"`
	Message    string `json:"message"`
}

func (e regError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "registry error: " + strconv.Itoa(e.StatusCode)
}

func (c *Client) codedFromHTTPError(err regError) *apierrors.CodedError {
	switch err.StatusCode {
	case http.StatusNotFound:
		return apierrors.New(apierrors.CodeSubjectNotFound, "%s", err.Error()).WithDetail("registry", c.name)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apierrors.New(apierrors.CodeRegistryAuthFailed, "%s", err.Error()).WithDetail("registry", c.name)
	case http.StatusConflict:
		return apierrors.New(apierrors.CodeModeConflict, "%s", err.Error()).WithDetail("registry", c.name)
	case http.StatusUnprocessableEntity:
		return apierrors.New(apierrors.CodeSchemaIncompatible, "%s", err.Error()).WithDetail("registry", c.name)
	default:
		return apierrors.New(apierrors.CodeRegistryUnreachable, "%s", err.Error()).WithDetail("registry", c.name)
	}
}

// doRequest performs one HTTP call against path (already context-composed
// via buildURL). GETs are retried per spec.md §4.1; mutating verbs are not.
func (c *Client) doRequest(ctx context.Context, method, path string, in, out interface{}) error {
	var bodyBytes []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apierrors.New(apierrors.CodeInvalidArgument, "encoding request body: %v", err)
		}
		bodyBytes = b
	}

	retries := 0
	if method == http.MethodGet {
		retries = len(retryBackoffs)
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apierrors.New(apierrors.CodeRegistryTimeout, "%s", ctx.Err())
			case <-time.After(retryBackoffs[attempt-1]):
			}
			logging.Warn("Registry", "retrying %s %s (attempt %d) after %v", method, path, attempt+1, lastErr)
		}

		err := c.once(ctx, method, path, bodyBytes, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out interface{}) error {
	u, err := c.base.Parse(path)
	if err != nil {
		return apierrors.New(apierrors.CodeInvalidArgument, "composing request url: %v", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return apierrors.New(apierrors.CodeInternal, "building request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apierrors.New(apierrors.CodeRegistryUnreachable, "%s %s: %v", method, path, err).
			WithDetail("registry", c.name)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		httpErr := regError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&httpErr)
		return c.codedFromHTTPError(httpErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return apierrors.New(apierrors.CodeInternal, "decoding response from %q: %v", c.name, err)
	}
	return nil
}

func isRetryable(err error) bool {
	ce, ok := err.(*apierrors.CodedError)
	if !ok {
		return false
	}
	switch ce.Code {
	case apierrors.CodeRegistryUnreachable, apierrors.CodeRegistryTimeout:
		return true
	}
	return strings.Contains(ce.Message, "502") || strings.Contains(ce.Message, "503") || strings.Contains(ce.Message, "504")
}

// ---- operations (spec.md §4.1) ----

// ListContexts returns the registry's known contexts (the default context
// is never included; it is represented by "").
func (c *Client) ListContexts(ctx context.Context) ([]string, error) {
	var contexts []string
	if err := c.doRequest(ctx, http.MethodGet, "/contexts", nil, &contexts); err != nil {
		return nil, err
	}
	return contexts, nil
}

// ListSubjects returns the subjects visible in context.
func (c *Client) ListSubjects(ctx context.Context, context_ string) ([]string, error) {
	var subjects []string
	path := buildURL("", context_, "/subjects")
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// GetSubjectVersions returns the version numbers registered for subject.
func (c *Client) GetSubjectVersions(ctx context.Context, subject, context_ string) ([]int, error) {
	var versions []int
	path := buildURL("", context_, "/subjects/"+url.PathEscape(subject)+"/versions")
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetSchema fetches one version (or "latest") of subject.
func (c *Client) GetSchema(ctx context.Context, subject, version, context_ string) (*SchemaVersion, error) {
	var out SchemaVersion
	path := buildURL("", context_, "/subjects/"+url.PathEscape(subject)+"/versions/"+version)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type idSchemaPayload struct {
	Schema     string      `json:"schema"`
	SchemaType string      `json:"schemaType,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// GetSchemaByID fetches a schema by its registry-global ID, used during
// ID-preserving migration.
func (c *Client) GetSchemaByID(ctx context.Context, id int) (*idSchemaPayload, error) {
	var out idSchemaPayload
	path := "/schemas/ids/" + strconv.Itoa(id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type registerRequest struct {
	Schema     string      `json:"schema"`
	SchemaType string      `json:"schemaType,omitempty"`
	References []Reference `json:"references,omitempty"`
	ID         *int        `json:"id,omitempty"`
}

// RegisterResponse is the {id, version} body returned on schema registration.
type RegisterResponse struct {
	ID      int `json:"id"`
	Version int `json:"version"`
}

// RegisterSchema registers payload under subject. When id is non-nil the
// registry must be in IMPORT mode; a nil id is the normal registration
// path and the registry assigns the ID.
func (c *Client) RegisterSchema(ctx context.Context, subject, payload, schemaType, context_ string, id *int, mode Mode) (*RegisterResponse, error) {
	if err := c.requireWritable(); err != nil {
		return nil, err
	}
	if id != nil && mode != ModeImport {
		return nil, apierrors.New(apierrors.CodeModeConflict,
			"registry %q must be in IMPORT mode to register schema with explicit id %d", c.name, *id).
			WithDetail("registry", c.name)
	}

	req := registerRequest{Schema: payload, SchemaType: schemaType, ID: id}
	var out RegisterResponse
	path := buildURL("", context_, "/subjects/"+url.PathEscape(subject)+"/versions")
	if err := c.doRequest(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubject deletes subject, returning the version numbers removed.
// permanent performs a hard delete (?permanent=true) after a prior soft
// delete.
func (c *Client) DeleteSubject(ctx context.Context, subject, context_ string, permanent bool) ([]int, error) {
	if err := c.requireWritable(); err != nil {
		return nil, err
	}
	path := buildURL("", context_, "/subjects/"+url.PathEscape(subject))
	if permanent {
		path += "?permanent=true"
	}
	var deleted []int
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetConfig fetches the global or per-subject compatibility config.
func (c *Client) GetConfig(ctx context.Context, subject, context_ string) (*ConfigSetting, error) {
	var out ConfigSetting
	p := "/config"
	if subject != "" {
		p = "/config/" + url.PathEscape(subject)
	}
	path := buildURL("", context_, p)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetConfig sets the global or per-subject compatibility config.
func (c *Client) SetConfig(ctx context.Context, subject, context_, level string) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	p := "/config"
	if subject != "" {
		p = "/config/" + url.PathEscape(subject)
	}
	path := buildURL("", context_, p)
	return c.doRequest(ctx, http.MethodPut, path, ConfigSetting{Compatibility: level}, nil)
}

// GetMode fetches the global or per-subject mode.
func (c *Client) GetMode(ctx context.Context, subject, context_ string) (Mode, error) {
	var out ModeSetting
	p := "/mode"
	if subject != "" {
		p = "/mode/" + url.PathEscape(subject)
	}
	path := buildURL("", context_, p)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Mode, nil
}

// SetMode sets the global or per-subject mode.
func (c *Client) SetMode(ctx context.Context, subject, context_ string, mode Mode) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	p := "/mode"
	if subject != "" {
		p = "/mode/" + url.PathEscape(subject)
	}
	path := buildURL("", context_, p)
	return c.doRequest(ctx, http.MethodPut, path, ModeSetting{Mode: mode}, nil)
}

// Ping performs the cheapest possible health probe: a single GET to
// /subjects with a bounded timeout, used by test_connection.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var subjects []string
	return c.once(ctx, http.MethodGet, "/subjects", nil, &subjects)
}
