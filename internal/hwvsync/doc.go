// Package hwvsync provides a software stand-in for the hardware vsync
// interrupt of a display.
//
// The generator emits a vsync edge every period on a clock.TimerClock and
// feeds a Sink, normally a *reactor.Reactor, the way display hardware and the
// frame scheduler around it would:
//
//   - while hardware vsync is enabled, each edge (plus optional jitter) is
//     passed to AddResyncSample; the generator disables hardware vsync once
//     the sink reports it needs no more samples
//   - each frame creates a present fence that is passed to AddPresentFence
//     and signalled with the following vsync time once FenceLatency has
//     elapsed; a true result re-enables hardware vsync
//   - SetPeriod models a display mode change: the new period takes effect at
//     the next edge and hardware vsync is re-enabled so the change can be
//     confirmed
//
// # Usage Example
//
//	gen := hwvsync.New(r, clock.System(), 16666666*time.Nanosecond,
//	    hwvsync.WithJitter(100*time.Microsecond))
//
//	go gen.Start(ctx)
//	defer gen.Stop()
//
// Start blocks until its context is cancelled or Stop is called. The frame
// work runs in timer callbacks, so with a clock.FakeClock every edge is
// processed synchronously inside Advance.
package hwvsync
