// Package webhook delivers transcript lifecycle events to a single configured
// endpoint as HMAC-signed JSON.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
)

const queueSize = 256

type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type delivery struct {
	id      string
	event   string
	payload []byte
}

type Dispatcher struct {
	url        string
	secret     string
	httpClient *http.Client
	deliveries chan delivery
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the delivery loop. It returns nil when no URL is
// configured; callers treat a nil *Dispatcher as "events disabled".
func NewDispatcher(cfg config.WebhookConfig) *Dispatcher {
	if cfg.URL == "" {
		return nil
	}
	d := &Dispatcher{
		url:    cfg.URL,
		secret: cfg.Secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		deliveries: make(chan delivery, queueSize),
		done:       make(chan struct{}),
	}
	go d.processLoop()
	return d
}

// Publish enqueues event for delivery. It never blocks; events are dropped
// when the queue is full or the dispatcher is closed.
func (d *Dispatcher) Publish(_ context.Context, event string, payload interface{}) {
	if d == nil {
		return
	}
	ev := Event{
		ID:        uuid.NewString(),
		Type:      event,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Error("webhook payload marshal failed", "event", event, "error", err)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.deliveries <- delivery{id: ev.ID, event: event, payload: body}:
	default:
		slog.Warn("webhook delivery queue full, dropping", "event", event, "delivery_id", ev.ID)
	}
}

// Close stops accepting events and waits for queued deliveries to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.deliveries)
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) processLoop() {
	defer close(d.done)
	for req := range d.deliveries {
		d.deliver(req)
	}
}

func (d *Dispatcher) deliver(req delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(req.payload))
	if err != nil {
		slog.Error("webhook request creation failed", "error", err)
		return
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", req.event)
	httpReq.Header.Set("X-Webhook-ID", req.id)
	if d.secret != "" {
		httpReq.Header.Set("X-Webhook-Signature", Sign(req.payload, d.secret))
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("webhook delivery failed", "error", err, "event", req.event, "delivery_id", req.id)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("webhook received non-success response", "status", resp.StatusCode, "event", req.event, "delivery_id", req.id)
		return
	}
	slog.Debug("webhook delivered", "event", req.event, "delivery_id", req.id)
}

// Sign returns the X-Webhook-Signature value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
