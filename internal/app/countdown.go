package app

import (
	"sync"
	"time"
)

// Ticker is the part of *time.Ticker a Countdown needs.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// TickerFunc builds a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) Chan() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()                  { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Countdown is a cancellable periodic task. It calls onTick once per tick
// until Stop is called; Stop may be called any number of times, from any
// goroutine, including from inside onTick.
type Countdown struct {
	ticker Ticker
	stop   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// StartCountdown runs onTick on its own goroutine for every tick of t.
func StartCountdown(t Ticker, onTick func()) *Countdown {
	c := &Countdown{
		ticker: t,
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go c.run(onTick)
	return c
}

func (c *Countdown) run(onTick func()) {
	defer close(c.exited)
	for {
		select {
		case <-c.stop:
			return
		case <-c.ticker.Chan():
			// a tick racing with Stop must not be delivered
			select {
			case <-c.stop:
				return
			default:
			}
			onTick()
		}
	}
}

// Stop cancels the countdown. It does not wait for the goroutine to exit.
func (c *Countdown) Stop() {
	c.once.Do(func() {
		c.ticker.Stop()
		close(c.stop)
	})
}

// Exited is closed once the tick goroutine has returned.
func (c *Countdown) Exited() <-chan struct{} {
	return c.exited
}
