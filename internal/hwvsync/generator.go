package hwvsync

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/fence"
)

// ErrAlreadyStarted is returned when Start is called on a running generator
var ErrAlreadyStarted = errors.New("vsync generator already started")

// Generator emits software vsync edges into a Sink
type Generator interface {
	// Start begins emitting vsync edges.
	// Blocks until context is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the generator and waits for Start to return
	Stop() error

	// SetPeriod changes the period from the next edge on
	SetPeriod(period time.Duration)

	// Running reports whether Start is emitting edges
	Running() bool

	// Stats returns the current generator counters
	Stats() Stats
}

// Stats describes generator activity
type Stats struct {
	Period         time.Duration
	Frames         uint64
	ResyncSamples  uint64
	FencesInFlight int
	HwVsyncEnabled bool
}

// inFlight is a present fence waiting for its signal deadline
type inFlight struct {
	fence     *fence.Time
	presentAt clock.Time
	readyAt   clock.Time
}

type generator struct {
	sink         Sink
	clock        clock.TimerClock
	jitter       time.Duration
	fenceLatency time.Duration
	randInt64N   func(n int64) int64

	running atomic.Bool

	mu             sync.Mutex
	cancelFunc     context.CancelFunc
	done           chan struct{}
	stopped        bool
	timer          clock.Timer
	period         time.Duration
	pendingPeriod  time.Duration
	hwVsyncEnabled bool
	fences         *queue.Queue
	frames         uint64
	resyncSamples  uint64
}

// Option is a function that configures the generator
type Option func(*generator)

// WithJitter offsets every resync sample by a uniform random amount in
// [-jitter, jitter]
func WithJitter(jitter time.Duration) Option {
	return func(g *generator) {
		g.jitter = jitter
	}
}

// WithFenceLatency delays signalling a present fence by latency past the
// vsync it was presented at
func WithFenceLatency(latency time.Duration) Option {
	return func(g *generator) {
		g.fenceLatency = latency
	}
}

// New creates a generator emitting edges every period into sink
func New(sink Sink, clk clock.TimerClock, period time.Duration, opts ...Option) Generator {
	g := &generator{
		sink:           sink,
		clock:          clk,
		period:         period,
		hwVsyncEnabled: true,
		fences:         queue.New(),
		done:           make(chan struct{}),
		//nolint:gosec // G404: Non-cryptographic randomness is sufficient for vsync jitter
		randInt64N: rand.Int64N,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Start begins emitting vsync edges, the first one immediately
func (g *generator) Start(ctx context.Context) error {
	genCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	if g.cancelFunc != nil {
		g.mu.Unlock()
		cancel()
		return ErrAlreadyStarted
	}
	g.cancelFunc = cancel
	slog.Info("Starting software vsync generator",
		"period", g.period,
		"jitter", g.jitter,
		"fence_latency", g.fenceLatency)
	g.scheduleLocked(g.clock.Now())
	g.mu.Unlock()

	g.running.Store(true)
	defer func() {
		g.running.Store(false)
		close(g.done)
	}()

	<-genCtx.Done()

	g.mu.Lock()
	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
	}
	frames := g.frames
	g.mu.Unlock()

	slog.Info("Software vsync generator stopped", "frames", frames)
	return nil
}

// Stop gracefully stops the generator
func (g *generator) Stop() error {
	g.mu.Lock()
	cancel := g.cancelFunc
	g.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping software vsync generator")
		cancel()
		<-g.done
	}
	return nil
}

// SetPeriod changes the period from the next edge on and re-enables
// hardware vsync so the change can be confirmed
func (g *generator) SetPeriod(period time.Duration) {
	if period <= 0 {
		slog.Warn("Ignoring non-positive vsync period", "period", period)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingPeriod = period
	g.hwVsyncEnabled = true
}

// Running reports whether Start is emitting edges
func (g *generator) Running() bool {
	return g.running.Load()
}

// Stats returns the current generator counters
func (g *generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Stats{
		Period:         g.period,
		Frames:         g.frames,
		ResyncSamples:  g.resyncSamples,
		FencesInFlight: g.fences.Length(),
		HwVsyncEnabled: g.hwVsyncEnabled,
	}
}

// scheduleLocked arms the timer for the edge at vsync
func (g *generator) scheduleLocked(vsync clock.Time) {
	g.timer = g.clock.AfterFunc(vsync.Sub(g.clock.Now()), func() {
		g.onVsync(vsync)
	})
}

func (g *generator) onVsync(vsync clock.Time) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	next := g.frame(vsync)

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.stopped {
		g.scheduleLocked(next)
	}
}

// frame processes the edge at vsync and returns the time of the next edge
func (g *generator) frame(vsync clock.Time) clock.Time {
	g.mu.Lock()
	g.signalFencesLocked(vsync)
	if g.pendingPeriod > 0 {
		slog.Info("Vsync period changed", "from", g.period, "to", g.pendingPeriod)
		g.period = g.pendingPeriod
		g.pendingPeriod = 0
	}
	next := vsync.Add(g.period)
	f := fence.NewPending()
	g.fences.Add(&inFlight{fence: f, presentAt: next, readyAt: next.Add(g.fenceLatency)})
	resync := g.hwVsyncEnabled
	if resync {
		g.resyncSamples++
	}
	g.frames++
	g.mu.Unlock()

	if resync {
		wantsMore, flushed := g.sink.AddResyncSample(vsync.Add(g.sampleJitter()))
		if flushed {
			slog.Debug("Vsync period change confirmed", "vsync", vsync)
		}
		if !wantsMore {
			g.setHwVsync(false)
		}
	}
	if g.sink.AddPresentFence(f) {
		g.setHwVsync(true)
	}
	return next
}

// signalFencesLocked signals, oldest first, every in-flight fence whose
// deadline is at or before now
func (g *generator) signalFencesLocked(now clock.Time) {
	for g.fences.Length() > 0 {
		pending, _ := g.fences.Peek().(*inFlight)
		if pending.readyAt.After(now) {
			return
		}
		g.fences.Remove()
		pending.fence.Signal(pending.presentAt)
	}
}

func (g *generator) setHwVsync(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hwVsyncEnabled != enabled {
		slog.Debug("Hardware vsync toggled", "enabled", enabled)
	}
	g.hwVsyncEnabled = enabled
}

func (g *generator) sampleJitter() time.Duration {
	if g.jitter <= 0 {
		return 0
	}
	return time.Duration(g.randInt64N(int64(2*g.jitter)+1)) - g.jitter
}
