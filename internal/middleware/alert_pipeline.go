package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SqueezeScan/internal/domain/models"
	domrepo "SqueezeScan/internal/domain/repository"
)

// AlertPipeline sits between alert evaluation and the publisher. It
// validates, throttles repeat triggers per symbol and type, and buffers
// when the downstream broker is unavailable.
type AlertPipeline struct {
	pub     domrepo.AlertPublisher
	metrics domrepo.Metrics

	cooldown time.Duration
	bufSize  int
	bufCh    chan *models.TriggeredAlert
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSent map[string]time.Time // per symbol+type last published time
}

type PipelineOption func(*AlertPipeline)

// WithCooldown sets the minimum gap between repeat alerts for the same
// symbol and type.
func WithCooldown(d time.Duration) PipelineOption {
	return func(p *AlertPipeline) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithBufferSize sets the retry buffer size used when publishing fails.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewAlertPipeline creates a new pipeline.
func NewAlertPipeline(pub domrepo.AlertPublisher, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		pub:      pub,
		metrics:  metrics,
		cooldown: time.Minute,
		bufSize:  256,
		bufCh:    make(chan *models.TriggeredAlert, 256),
		stopCh:   make(chan struct{}),
		lastSent: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.TriggeredAlert, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered alerts.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.pub.PublishAlert(ctx, t); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("alert_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("alert_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and publishes a triggered alert, buffering
// when the broker is down. Throttled alerts are dropped silently.
func (p *AlertPipeline) Process(ctx context.Context, t *models.TriggeredAlert) error {
	if err := validateAlert(t); err != nil {
		p.metrics.RecordError("alert_validate")
		return err
	}
	if !p.allow(t.Symbol+"/"+t.Type, time.Now()) {
		p.metrics.RecordError("alert_throttle")
		return nil
	}

	if err := p.pub.PublishAlert(ctx, t); err != nil {
		p.metrics.RecordError("alert_publish")
		select {
		case p.bufCh <- t:
		default:
			p.metrics.RecordError("alert_buffer_full")
		}
		return fmt.Errorf("alert downstream: %w", err)
	}
	return nil
}

func validateAlert(t *models.TriggeredAlert) error {
	if t == nil {
		return fmt.Errorf("alert nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Type == "" {
		return fmt.Errorf("type empty")
	}
	if t.TriggeredAt.IsZero() {
		return fmt.Errorf("triggered_at unset")
	}
	return nil
}

func (p *AlertPipeline) allow(key string, now time.Time) bool {
	if p.cooldown <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSent[key]
	if !last.IsZero() && now.Sub(last) < p.cooldown {
		return false
	}
	p.lastSent[key] = now
	return true
}
