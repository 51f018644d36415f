package allocstats

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAllocatorCounts(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	a := New(reg, nil)

	b := a.Alloc(8)
	b = a.Realloc(b, 20)
	b = a.Realloc(b, 4)
	a.Free(b)
	a.Alloc(3)

	want := Stats{Allocs: 2, Reallocs: 2, Frees: 1, BytesInUse: 3}
	if got := a.Snapshot(); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if got := testutil.ToFloat64(a.reallocTotal); got != 2 {
		t.Errorf("realloc counter %v", got)
	}

	expected := `
# HELP jsondoc_bytes_in_use The number of bytes held by live buffers.
# TYPE jsondoc_bytes_in_use gauge
jsondoc_bytes_in_use 3
# HELP jsondoc_alloc_total The number of buffers allocated for strings and lexer input.
# TYPE jsondoc_alloc_total counter
jsondoc_alloc_total 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "jsondoc_bytes_in_use", "jsondoc_alloc_total"); err != nil {
		t.Fatal(err)
	}
}

type fixedAllocator struct {
	frees int
}

func (f *fixedAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (f *fixedAllocator) Realloc(b []byte, n int) []byte {
	r := make([]byte, n)
	copy(r, b)
	return r
}
func (f *fixedAllocator) Free([]byte) { f.frees++ }

func TestAllocatorForwards(t *testing.T) {
	next := &fixedAllocator{}
	a := New(nil, next)

	a.Free(a.Alloc(1))
	if next.frees != 1 {
		t.Fatalf("free not forwarded: %d", next.frees)
	}
	if got := a.Snapshot().BytesInUse; got != 0 {
		t.Fatalf("bytes in use %d", got)
	}
}
