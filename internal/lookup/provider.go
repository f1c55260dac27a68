package lookup

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

var (
	// ErrNoData means the provider answered successfully but had nothing for the query.
	ErrNoData = errors.New("provider returned no data")
	// ErrProviderUnavailable means the provider failed: transport error,
	// non-success status or an unreadable body.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError describes a failed provider call. It matches ErrProviderUnavailable.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("provider %s: unexpected status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("provider %s: unavailable", e.Provider)
	}
}

// Is makes errors.Is(err, ErrProviderUnavailable) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider is an external registry that can answer queries of one kind.
type Provider interface {
	Name() string
	// Lookup returns ErrNoData for an empty successful answer and an error
	// matching ErrProviderUnavailable for any failure.
	Lookup(ctx context.Context, value string) (Record, error)
}

// RequestShape selects how the query value is sent to the provider.
type RequestShape int

const (
	// ShapeQueryParam sends GET <url>?<param>=<value>.
	ShapeQueryParam RequestShape = iota
	// ShapeJSONBody sends POST <url> with body {"<param>": "<value>"}.
	ShapeJSONBody
)

// HTTPProviderConfig describes an HTTP registry endpoint and how to read its answer.
type HTTPProviderConfig struct {
	Name  string
	URL   string
	Token string
	Shape RequestShape
	Param string
	// PayloadPath is the gjson path of the answer object; empty means the whole body.
	PayloadPath string
	// Fields maps canonical fields to gjson paths relative to the payload.
	Fields             map[FieldName]string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// HTTPProvider is a Provider backed by a JSON HTTP API with bearer authentication.
type HTTPProvider struct {
	cfg    HTTPProviderConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPProvider validates cfg and builds the provider.
func NewHTTPProvider(cfg HTTPProviderConfig, logger *slog.Logger) (*HTTPProvider, error) {
	if cfg.Name == "" {
		return nil, errors.New("provider name is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("provider %s: invalid url: %w", cfg.Name, err)
	}
	if cfg.Param == "" {
		return nil, fmt.Errorf("provider %s: request parameter name is required", cfg.Name)
	}
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("provider %s: no field mapping", cfg.Name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "lookup_provider", "provider", cfg.Name)

	client := cfg.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureSkipVerify {
			log.Warn("TLS certificate verification disabled for provider")
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in via config
		}
		client = &http.Client{Transport: transport, Timeout: cfg.Timeout}
	}

	return &HTTPProvider{cfg: cfg, client: client, logger: log}, nil
}

// Name returns the provider name used in logs.
func (p *HTTPProvider) Name() string {
	return p.cfg.Name
}

// Lookup queries the provider for value.
func (p *HTTPProvider) Lookup(ctx context.Context, value string) (Record, error) {
	req, err := p.newRequest(ctx, value)
	if err != nil {
		return nil, &ProviderError{Provider: p.cfg.Name, Err: err}
	}

	startTime := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "Provider request failed", "error", err, "duration", time.Since(startTime))
		return nil, &ProviderError{Provider: p.cfg.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ProviderError{Provider: p.cfg.Name, Err: fmt.Errorf("read body: %w", err)}
	}
	p.logger.DebugContext(ctx, "Provider responded", "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(startTime))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{Provider: p.cfg.Name, StatusCode: resp.StatusCode}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoData
	}
	if !gjson.ValidBytes(body) {
		return nil, &ProviderError{Provider: p.cfg.Name, Err: errors.New("response is not valid JSON")}
	}

	payload := gjson.ParseBytes(body)
	if p.cfg.PayloadPath != "" {
		payload = payload.Get(p.cfg.PayloadPath)
	}
	if isEmpty(payload) {
		return nil, ErrNoData
	}

	record := make(Record, len(p.cfg.Fields))
	for name, path := range p.cfg.Fields {
		if v := payload.Get(path); v.Exists() && v.Type != gjson.Null {
			record[name] = v.String()
		}
	}
	return record, nil
}

func (p *HTTPProvider) newRequest(ctx context.Context, value string) (*http.Request, error) {
	var req *http.Request
	var err error

	switch p.cfg.Shape {
	case ShapeJSONBody:
		body, mErr := json.Marshal(map[string]string{p.cfg.Param: value})
		if mErr != nil {
			return nil, mErr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	default:
		u, pErr := url.Parse(p.cfg.URL)
		if pErr != nil {
			return nil, pErr
		}
		q := u.Query()
		q.Set(p.cfg.Param, value)
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	return req, nil
}

// isEmpty reports whether a payload carries nothing: missing, null, false,
// an empty string, an empty object or an empty array.
func isEmpty(r gjson.Result) bool {
	switch {
	case !r.Exists():
		return true
	case r.Type == gjson.Null, r.Type == gjson.False:
		return true
	case r.Type == gjson.String:
		return r.Str == ""
	case r.IsObject():
		return len(r.Map()) == 0
	case r.IsArray():
		return len(r.Array()) == 0
	}
	return false
}
