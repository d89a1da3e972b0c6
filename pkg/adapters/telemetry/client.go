package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

// Options configures the remote log sink
type Options struct {
	Endpoint  string
	QueueSize int
	Timeout   time.Duration
	Auth      AuthOptions
	Logger    *slog.Logger
}

// HTTPClient ships log events to a remote collector as JSON POSTs.
// Record never blocks: events are queued and dropped when the queue is full.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan domain.LogEvent
	wg      sync.WaitGroup
	dropped atomic.Uint64
	sent    atomic.Uint64
}

var _ ports.Telemetry = (*HTTPClient)(nil)

// NewHTTPClient starts the delivery worker. Call Close to flush and stop it.
func NewHTTPClient(ctx context.Context, opts Options) (*HTTPClient, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("telemetry endpoint is required")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &HTTPClient{
		endpoint: opts.Endpoint,
		client:   newAuthorizedClient(ctx, opts.Auth),
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		queue:    make(chan domain.LogEvent, opts.QueueSize),
	}

	c.wg.Add(1)
	go c.worker()
	return c, nil
}

// Record enqueues e. Invalid events are discarded before they reach the network.
func (c *HTTPClient) Record(e domain.LogEvent) {
	if !e.Valid() {
		c.logger.Debug("telemetry event rejected",
			slog.String("stack", string(e.Stack)),
			slog.String("level", string(e.Level)),
			slog.String("package", string(e.Category)))
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.queue <- e:
	default:
		c.dropped.Add(1)
	}
}

// Dropped counts events discarded because the queue was full
func (c *HTTPClient) Dropped() uint64 {
	return c.dropped.Load()
}

// Sent counts events the collector accepted
func (c *HTTPClient) Sent() uint64 {
	return c.sent.Load()
}

// Close stops accepting events and waits for the queue to drain or ctx to end
func (c *HTTPClient) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) worker() {
	defer c.wg.Done()

	for e := range c.queue {
		if err := c.send(e); err != nil {
			c.logger.Warn("telemetry delivery failed", slog.String("error", err.Error()))
			continue
		}
		c.sent.Add(1)
	}
}

func (c *HTTPClient) send(e domain.LogEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("collector responded %s", resp.Status)
	}
	return nil
}
