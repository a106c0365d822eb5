package enrichment

import (
	"context"
	"fmt"
	"time"

	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/metrics"
)

// JSON-RPC method names understood by every Enrichment Service.
const (
	MethodCreateThumbnail = "createThumbnail"
	MethodGetGreeting     = "getGreeting"
)

// Request asks for a thumbnail to be written to ThumbnailPath and/or for
// the properties of Path. Either part can be skipped when it is already
// fresh.
type Request struct {
	Path           string `json:"path"`
	ThumbnailPath  string `json:"thumbnailPath"`
	WantThumbnail  bool   `json:"wantThumbnail"`
	WantProperties bool   `json:"wantProperties"`
}

// Response carries property text, or a non-empty Exception on failure.
type Response struct {
	Properties string `json:"properties"`
	Exception  string `json:"exception"`
}

// Service is an Enrichment Service.
type Service interface {
	CreateThumbnail(ctx context.Context, req Request) (Response, error)
}

// Failure is a per-file enrichment failure. The pipeline logs it and moves
// on to the next file.
type Failure struct {
	Path    string
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("enrichment of %s failed: %s", f.Path, f.Message)
}

// Client is the pipeline's view of a Service.
type Client struct {
	service Service
}

// NewClient wraps svc.
func NewClient(svc Service) *Client {
	return &Client{service: svc}
}

// Enrich calls the service once. It returns media.ErrCancelled if ctx ends
// first, a *Failure for any service or transport error, and otherwise the
// parsed properties (zero when req.WantProperties is false).
func (c *Client) Enrich(ctx context.Context, req Request) (media.FileProperties, error) {
	if ctx.Err() != nil {
		return media.FileProperties{}, media.ErrCancelled
	}

	start := time.Now()
	resp, err := c.service.CreateThumbnail(ctx, req)
	metrics.EnrichmentCallDuration.Observe(time.Since(start).Seconds())

	if err == nil && resp.Exception != "" {
		err = &Failure{Path: req.Path, Message: resp.Exception}
	}
	if err != nil {
		if ctx.Err() != nil {
			return media.FileProperties{}, media.ErrCancelled
		}
		metrics.EnrichmentCallsTotal.WithLabelValues("failure").Inc()
		if f, ok := err.(*Failure); ok {
			return media.FileProperties{}, f
		}
		return media.FileProperties{}, &Failure{Path: req.Path, Message: err.Error()}
	}

	metrics.EnrichmentCallsTotal.WithLabelValues("success").Inc()
	logging.Debug("Enriched %s (thumbnail=%v, properties=%v) in %v", req.Path, req.WantThumbnail, req.WantProperties, time.Since(start))

	if !req.WantProperties {
		return media.FileProperties{}, nil
	}
	return ParseProperties(resp.Properties), nil
}
