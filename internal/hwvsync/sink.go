package hwvsync

import (
	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/fence"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks -source=sink.go Sink

// Sink consumes vsync samples and present fences
type Sink interface {
	AddResyncSample(ts clock.Time) (wantsMoreSamples, periodFlushed bool)
	AddPresentFence(f fence.Fence) bool
}
