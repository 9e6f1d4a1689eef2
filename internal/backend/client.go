// Package backend talks to the RaptorFlow generation service over HTTP.
// Responses are cached per-payload so re-running an unchanged workshop does
// not burn another generation call.
package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/positioning"
)

// tracerName is the instrumentation scope name for backend tracing.
const tracerName = "github.com/raptorflow/raptorflow/internal/backend"

const (
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = 10 * time.Minute
)

// StatusError is returned when the backend responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the generation service. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The configured timeout
// on the replacement is kept as-is.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithCacheTTL overrides how long generation responses are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cache = gocache.New(ttl, ttl)
		}
	}
}

// New creates a client for the generation service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		cache:   gocache.New(defaultCacheTTL, defaultCacheTTL),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Fields map[string]string `json:"fields"`
}

type saveRequest struct {
	GUID   string            `json:"guid,omitempty"`
	Fields map[string]string `json:"fields"`
	Map    positioning.Map   `json:"map"`
}

// GeneratePositioning asks the backend to turn workshop answers into a
// positioning map. Identical field payloads hit the local cache.
func (c *Client) GeneratePositioning(ctx context.Context, fields map[string]string) (positioning.Map, error) {
	ctx, span := c.tracer.Start(ctx, "backend.generate_positioning",
		trace.WithAttributes(attribute.Int("backend.field_count", len(fields))),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	key := cacheKey(fields)
	if cached, ok := c.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("backend.cache_hit", true))
		span.SetStatus(codes.Ok, "")
		return cached.(positioning.Map), nil
	}
	span.SetAttributes(attribute.Bool("backend.cache_hit", false))

	var out positioning.Map
	err := c.post(ctx, "/api/v1/positioning/generate", generateRequest{Fields: fields}, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return positioning.Map{}, err
	}

	c.cache.Set(key, out, gocache.DefaultExpiration)
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// SavePositioning persists a completed workshop to the backend.
func (c *Client) SavePositioning(ctx context.Context, guid string, fields map[string]string, m positioning.Map) error {
	ctx, span := c.tracer.Start(ctx, "backend.save_positioning",
		trace.WithAttributes(attribute.String("backend.draft_guid", guid)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	err := c.post(ctx, "/api/v1/positioning", saveRequest{GUID: guid, Fields: fields, Map: m}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.ErrorErr(log.CatBackend, "backend request failed", err, "path", path)
		return fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error(log.CatBackend, "backend returned error status", "path", path, "status", resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// cacheKey hashes the field map in sorted-key order so equal payloads always
// produce the same key.
func cacheKey(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(fields[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
