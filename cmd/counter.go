package cmd

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
)

// DeliveryCounter batches delivery counts and feeds them to a progress bar
// every refresh period, so scheduler handlers never touch the bar directly.
type DeliveryCounter struct {
	ticker      *time.Ticker
	refreshRate time.Duration
	pending     atomic.Int64

	mu   sync.Mutex
	bar  *mpb.Bar
	stop chan struct{}
	done chan struct{}
}

func NewDeliveryCounter(refreshRate time.Duration) *DeliveryCounter {
	return &DeliveryCounter{
		ticker:      time.NewTicker(refreshRate),
		refreshRate: refreshRate,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (c *DeliveryCounter) SetBar(bar *mpb.Bar) {
	c.mu.Lock()
	c.bar = bar
	c.mu.Unlock()
}

func (c *DeliveryCounter) Start() {
	go c.worker()
}

// IncrBy records n deliveries.
func (c *DeliveryCounter) IncrBy(n int) {
	c.pending.Add(int64(n))
}

// Stop flushes the remaining count and stops the worker.
func (c *DeliveryCounter) Stop() {
	close(c.stop)
	<-c.done
}

func (c *DeliveryCounter) worker() {
	defer close(c.done)
	defer c.ticker.Stop()
	for {
		select {
		case <-c.ticker.C:
			c.flush()
		case <-c.stop:
			c.flush()
			return
		}
	}
}

func (c *DeliveryCounter) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bar == nil {
		return
	}
	if n := c.pending.Swap(0); n > 0 {
		c.bar.EwmaIncrInt64(n, c.refreshRate)
	}
}
