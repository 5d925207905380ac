// Package backup mirrors the card snapshot to a remote endpoint after
// mutations. Pushes go through the shared retry policy and a circuit breaker
// so a dead mirror never slows down or breaks local operation.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("infra/backup")

// Client pushes JSON snapshots to the configured mirror URL.
type Client struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewClient creates a backup client. Pushes are serialized through a
// single-slot bulkhead: overlapping mirror writes would race on the remote
// side and the latest snapshot supersedes all earlier ones anyway.
func NewClient(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(1),
	}
}

// Push sends the serialized snapshot to the mirror.
func (c *Client) Push(ctx context.Context, snapshot []byte) error {
	ctx, span := tracer.Start(ctx, "BackupClient.Push")
	defer span.End()
	span.SetAttributes(attribute.Int("snapshot.bytes", len(snapshot)))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(snapshot))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode >= http.StatusMultipleChoices {
				return &domain.ErrExternalService{
					Service: "backup",
					Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
				}
			}
			return nil
		})
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "backup"}
	}
	return err
}
