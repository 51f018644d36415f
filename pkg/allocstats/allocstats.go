// Package allocstats provides a json.Allocator that records allocation
// statistics as prometheus metrics.
package allocstats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/styrainc/jsondoc/pkg/json"
)

// Stats is a point in time copy of the counters.
type Stats struct {
	Allocs     uint64
	Reallocs   uint64
	Frees      uint64
	BytesInUse int64
}

// Allocator forwards to another json.Allocator and counts the calls. It is
// safe for concurrent use.
type Allocator struct {
	next json.Allocator

	allocs, reallocs, frees atomic.Uint64
	inUse                   atomic.Int64

	allocTotal   prometheus.Counter
	reallocTotal prometheus.Counter
	freeTotal    prometheus.Counter
	bytesInUse   prometheus.Gauge
}

// New returns an Allocator wrapping next, or the default allocator if next is
// nil. The metrics are registered with reg unless it is nil.
func New(reg prometheus.Registerer, next json.Allocator) *Allocator {
	if next == nil {
		next = json.DefaultAllocator()
	}

	a := &Allocator{
		next: next,
		allocTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondoc_alloc_total",
			Help: "The number of buffers allocated for strings and lexer input.",
		}),
		reallocTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondoc_realloc_total",
			Help: "The number of buffer resizes.",
		}),
		freeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondoc_free_total",
			Help: "The number of buffers released.",
		}),
		bytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jsondoc_bytes_in_use",
			Help: "The number of bytes held by live buffers.",
		}),
	}

	if reg != nil {
		reg.MustRegister(a.allocTotal, a.reallocTotal, a.freeTotal, a.bytesInUse)
	}
	return a
}

func (a *Allocator) Alloc(n int) []byte {
	a.allocs.Add(1)
	a.allocTotal.Inc()
	a.grow(n)
	return a.next.Alloc(n)
}

func (a *Allocator) Realloc(b []byte, n int) []byte {
	a.reallocs.Add(1)
	a.reallocTotal.Inc()
	a.grow(n - len(b))
	return a.next.Realloc(b, n)
}

func (a *Allocator) Free(b []byte) {
	a.frees.Add(1)
	a.freeTotal.Inc()
	a.grow(-len(b))
	a.next.Free(b)
}

func (a *Allocator) grow(delta int) {
	a.inUse.Add(int64(delta))
	a.bytesInUse.Add(float64(delta))
}

// Snapshot returns the current counters.
func (a *Allocator) Snapshot() Stats {
	return Stats{
		Allocs:     a.allocs.Load(),
		Reallocs:   a.reallocs.Load(),
		Frees:      a.frees.Load(),
		BytesInUse: a.inUse.Load(),
	}
}
