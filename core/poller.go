package core

import (
	"context"
	"sync"
	"time"

	"pkt.systems/pslog"
)

// Poller drives a fixed-interval fallback poll of the pending-request
// endpoint while the clarification tool is believed active. Ticks never
// overlap: a tick scheduled while the previous one is still in flight is
// dropped and retried on the next interval. A failed tick never stops the
// loop; only the tick callback reporting resolution, Stop, or context
// cancellation does.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context) bool
	log      pslog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	inFlight bool
}

// newPoller constructs a poller. The tick callback reports whether polling
// should stop.
func newPoller(interval time.Duration, logger pslog.Logger, tick func(ctx context.Context) bool) *Poller {
	if interval <= 0 {
		interval = 400 * time.Millisecond
	}
	return &Poller{interval: interval, tick: tick, log: logger}
}

// Start begins polling until Stop is called, the context is cancelled, or
// a tick reports resolution. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	if p == nil || p.tick == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()
	if p.log != nil {
		p.log.Debug("poller start", "interval", p.interval)
	}
	go p.run(ctx)
}

// Stop cancels polling. Safe to call repeatedly and safe to Start again.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		if p.log != nil {
			p.log.Debug("poller stop")
		}
	}
}

// Running reports whether the poller is currently active.
func (p *Poller) Running() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.inFlight {
				p.mu.Unlock()
				if p.log != nil {
					p.log.Trace("poller tick dropped", "reason", "in flight")
				}
				continue
			}
			p.inFlight = true
			p.mu.Unlock()
			go func() {
				stop := p.tick(ctx)
				p.mu.Lock()
				p.inFlight = false
				p.mu.Unlock()
				if stop {
					p.Stop()
				}
			}()
		}
	}
}
