// Package json implements an in-memory JSON document model with
// reference-counted sharing.
//
// Every value starts its life with a reference count of one and in the
// floating state. The first container that takes ownership of a floating
// value (Array.Insert, Object.Set) sinks it: the count is left untouched and
// the value becomes owned. Values that are not floating are retained by the
// container instead. A value that is inspected and then discarded must be
// released with Unref.
//
// Reference counts are plain integers: a value tree must not be shared
// between goroutines without external synchronization. The Null and Boolean
// singletons are the only exception; their counts are updated atomically so
// that independent trees may be built concurrently.
package json

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Kind identifies one of the six value variants.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is the interface every node within the document implements. The set
// of implementations is closed: Null, Boolean, Number, String, Array and
// Object.
type Value interface {
	fmt.Stringer

	// Kind returns the variant tag of the value.
	Kind() Kind

	hdr() *header
	release()
	clone() Value
	equal(other Value) bool
	render(o *RenderOptions, indent int) *String
}

var (
	_ Value = (*Null)(nil)
	_ Value = (*Boolean)(nil)
	_ Value = (*Number)(nil)
	_ Value = (*String)(nil)
	_ Value = (*Array)(nil)
	_ Value = (*Object)(nil)
)

// header carries the ownership state shared by all kinds.
type header struct {
	refs     uint32
	floating bool
	pinned   bool // process-wide singleton, counted atomically
}

func newHeader() header {
	return header{refs: 1, floating: true}
}

func (h *header) count() uint32 {
	if h.pinned {
		return atomic.LoadUint32(&h.refs)
	}
	return h.refs
}

func (h *header) retain() {
	if h.pinned {
		if atomic.AddUint32(&h.refs, 1) == 0 {
			panic("json: reference count overflow")
		}
		return
	}
	if h.refs == math.MaxUint32 {
		panic("json: reference count overflow")
	}
	h.refs++
}

// drop decrements the count and reports whether it reached zero. A pinned
// singleton never reaches zero here; only Shutdown tears it down.
func (h *header) drop() bool {
	if h.pinned {
		for {
			old := atomic.LoadUint32(&h.refs)
			if old <= 1 {
				panic("json: over-release of a shared singleton")
			}
			if atomic.CompareAndSwapUint32(&h.refs, old, old-1) {
				return false
			}
		}
	}
	h.refs--
	return h.refs == 0
}

func live(v Value) *header {
	if v == nil {
		panic("json: nil value")
	}
	h := v.hdr()
	if h == nil {
		panic("json: nil value")
	}
	if h.count() == 0 {
		panic("json: use of released value")
	}
	return h
}

// Ref increments the reference count of v and returns v.
func Ref[T Value](v T) T {
	live(v).retain()
	return v
}

// Unref decrements the reference count of v. When the count drops to zero the
// value is destroyed, its children are released and the zero handle is
// returned; otherwise v is returned unchanged.
func Unref[T Value](v T) T {
	h := live(v)
	if h.count() > 1 || h.pinned {
		h.drop()
		return v
	}

	h.refs = 0
	h.floating = false
	v.release()

	var zero T
	return zero
}

// UnrefMany releases every value passed. The first value must not be nil;
// nil entries among the rest are skipped.
func UnrefMany(v Value, more ...Value) {
	if v == nil {
		panic("json: nil value")
	}
	Unref(v)
	for _, m := range more {
		if m != nil {
			Unref(m)
		}
	}
}

// RefCount returns the current reference count of v.
func RefCount(v Value) uint32 {
	return live(v).count()
}

// IsFloating reports whether v has not been claimed by a container yet.
func IsFloating(v Value) bool {
	return live(v).floating
}

// sink takes a reference to v on behalf of a container: a floating value is
// claimed without touching its count, any other value is retained.
func sink(v Value) Value {
	h := live(v)
	if h.floating {
		h.floating = false
		return v
	}
	h.retain()
	return v
}

// adopt takes over a reference the caller already owns.
func adopt(v Value) Value {
	if h := live(v); h.floating {
		h.floating = false
	}
	return v
}

// Clone returns an independent copy of v. Singletons return a new reference
// to themselves.
func Clone(v Value) Value {
	live(v)
	return v.clone()
}

// ToString renders v as pretty-printed JSON at the given nesting level. The
// returned String is floating and owned by the caller.
func ToString(v Value, indent int) *String {
	return ToStringOptions(v, indent, RenderOptions{})
}

// ToStringOptions is like ToString, with explicit rendering options.
func ToStringOptions(v Value, indent int, opts RenderOptions) *String {
	live(v)
	if indent < 0 {
		panic("json: negative indent")
	}
	return v.render(&opts, indent)
}

// Render is a convenience wrapper around ToString returning a Go string.
func Render(v Value, indent int) string {
	return RenderOptionsString(v, indent, RenderOptions{})
}

// RenderOptionsString renders v with the given options into a Go string.
func RenderOptionsString(v Value, indent int, opts RenderOptions) string {
	s := ToStringOptions(v, indent, opts)
	out := s.Value()
	Unref(s)
	return out
}

var singletons struct {
	sync.Mutex
	null       *Null
	trueValue  *Boolean
	falseValue *Boolean
}

// Shutdown tears down the Null and Boolean singletons. It is meant to be
// called once by the host at program exit; any reference to a singleton
// obtained earlier becomes invalid. A later accessor call creates fresh
// singletons.
func Shutdown() {
	singletons.Lock()
	defer singletons.Unlock()

	for _, h := range []*header{singletons.null.hdr(), singletons.trueValue.hdr(), singletons.falseValue.hdr()} {
		if h != nil {
			atomic.StoreUint32(&h.refs, 0)
		}
	}
	singletons.null, singletons.trueValue, singletons.falseValue = nil, nil, nil
}

func pinnedHeader() header {
	return header{refs: 1, pinned: true}
}

// Null represents the JSON null value. There is a single instance per
// process.
type Null struct {
	header
}

// NewNull returns a new reference to the null singleton, creating it on first
// use.
func NewNull() *Null {
	singletons.Lock()
	if singletons.null == nil {
		singletons.null = &Null{header: pinnedHeader()}
	}
	n := singletons.null
	singletons.Unlock()

	return Ref(n)
}

func (n *Null) Kind() Kind { return KindNull }

func (n *Null) hdr() *header {
	if n == nil {
		return nil
	}
	return &n.header
}

func (n *Null) release() {}

func (n *Null) clone() Value { return Ref(n) }

func (n *Null) equal(Value) bool { return true }

func (n *Null) render(o *RenderOptions, indent int) *String {
	s := newIndent(o, indent)
	s.AppendString("null")
	return s
}

func (n *Null) String() string { return Render(n, 0) }

// Boolean represents a JSON boolean. Only the two canonical instances exist.
type Boolean struct {
	header
	value bool
}

// True returns a new reference to the true singleton.
func True() *Boolean {
	return NewBool(true)
}

// False returns a new reference to the false singleton.
func False() *Boolean {
	return NewBool(false)
}

// NewBool returns a new reference to the canonical boolean for b.
func NewBool(b bool) *Boolean {
	singletons.Lock()
	if singletons.trueValue == nil {
		singletons.trueValue = &Boolean{header: pinnedHeader(), value: true}
		singletons.falseValue = &Boolean{header: pinnedHeader(), value: false}
	}
	v := singletons.falseValue
	if b {
		v = singletons.trueValue
	}
	singletons.Unlock()

	return Ref(v)
}

// Value returns the boolean held.
func (b *Boolean) Value() bool {
	live(b)
	return b.value
}

func (b *Boolean) Kind() Kind { return KindBoolean }

func (b *Boolean) hdr() *header {
	if b == nil {
		return nil
	}
	return &b.header
}

func (b *Boolean) release() {}

func (b *Boolean) clone() Value { return Ref(b) }

func (b *Boolean) equal(other Value) bool {
	return b.value == other.(*Boolean).value
}

func (b *Boolean) render(o *RenderOptions, indent int) *String {
	s := newIndent(o, indent)
	if b.value {
		s.AppendString("true")
	} else {
		s.AppendString("false")
	}
	return s
}

func (b *Boolean) String() string { return Render(b, 0) }

// Number holds a double precision value.
type Number struct {
	header
	value float64
}

// NewNumber returns a floating Number holding f.
func NewNumber(f float64) *Number {
	return &Number{header: newHeader(), value: f}
}

// Value returns the number held.
func (n *Number) Value() float64 {
	live(n)
	return n.value
}

// Set replaces the number held.
func (n *Number) Set(f float64) {
	live(n)
	n.value = f
}

func (n *Number) Kind() Kind { return KindNumber }

func (n *Number) hdr() *header {
	if n == nil {
		return nil
	}
	return &n.header
}

func (n *Number) release() {}

func (n *Number) clone() Value { return NewNumber(n.value) }

func (n *Number) equal(other Value) bool {
	return n.value == other.(*Number).value
}

func (n *Number) render(o *RenderOptions, indent int) *String {
	s := newIndent(o, indent)
	s.AppendString(formatNumber(n.value, o.NumberFormat))
	return s
}

func (n *Number) String() string { return Render(n, 0) }
