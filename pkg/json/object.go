package json

import (
	"strings"

	"github.com/open-policy-agent/opa/logging"
	"golang.org/x/exp/slices"
)

const (
	minBuckets = 3

	maxLoadFactor = 0.8
	minLoadFactor = 0.2

	// growFactor is applied when the load factor exceeds maxLoadFactor, its
	// inverse when it drops below minLoadFactor. Growing by 2 from 0.8 lands
	// at 0.4 and shrinking by 2 from 0.2 at 0.4, so a single step never
	// leaves the band on the other side.
	growFactor = 2
)

// Object maps unique string keys to values using a hash table with chained
// buckets. Iteration order follows the bucket layout: it is neither insertion
// order nor stable across rehashes.
type Object struct {
	header
	buckets []*entry
	n       int
}

type entry struct {
	key   string
	value Value
	next  *entry
}

// NewObject returns a floating, empty Object.
func NewObject() *Object {
	return &Object{header: newHeader(), buckets: make([]*entry, minBuckets)}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	live(o)
	return o.n
}

// Buckets returns the current bucket count.
func (o *Object) Buckets() int {
	live(o)
	return len(o.buckets)
}

// LoadFactor returns entries per bucket.
func (o *Object) LoadFactor() float64 {
	live(o)
	return o.loadFactor()
}

func (o *Object) loadFactor() float64 {
	return float64(o.n) / float64(len(o.buckets))
}

func (o *Object) bucket(key string) int {
	return int(strhash(key) % uint32(len(o.buckets)))
}

func (o *Object) find(key string) *entry {
	for e := o.buckets[o.bucket(key)]; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Get returns a borrowed reference to the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	live(o)
	if e := o.find(key); e != nil {
		return e.value, true
	}
	return nil, false
}

// Set stores v under key, sinking v if it is floating and retaining it
// otherwise. A value previously stored under key is released. Set reports
// whether key was newly added.
func (o *Object) Set(key string, v Value) bool {
	live(o)
	return o.put(key, sink(v))
}

// put stores a reference the caller has already taken.
func (o *Object) put(key string, v Value) bool {
	if e := o.find(key); e != nil {
		old := e.value
		e.value = v
		Unref(old)
		return false
	}

	i := o.bucket(key)
	o.buckets[i] = &entry{key: strings.Clone(key), value: v, next: o.buckets[i]}
	o.n++
	o.Rehash()
	return true
}

// Del removes key, releasing its value. It reports whether key was present.
func (o *Object) Del(key string) bool {
	live(o)
	i := o.bucket(key)
	for p := &o.buckets[i]; *p != nil; p = &(*p).next {
		if e := *p; e.key == key {
			*p = e.next
			e.next = nil
			o.n--
			Unref(e.value)
			o.Rehash()
			return true
		}
	}
	return false
}

// Rehash resizes the bucket table when the load factor is outside (0.2, 0.8)
// and reports whether it did. Entries are relinked into the new table, so no
// value is retained or released. Set and Del call it after every change.
func (o *Object) Rehash() bool {
	live(o)
	size := len(o.buckets)
	for float64(o.n)/float64(size) > maxLoadFactor {
		size *= growFactor
	}
	for size > minBuckets && float64(o.n)/float64(size) < minLoadFactor {
		size /= growFactor
		if size < minBuckets {
			size = minBuckets
		}
	}
	if size == len(o.buckets) {
		return false
	}

	old := o.buckets
	o.buckets = make([]*entry, size)
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			i := o.bucket(e.key)
			e.next = o.buckets[i]
			o.buckets[i] = e
			e = next
		}
	}
	return true
}

// Iter calls fn for every entry in bucket order until fn returns false. The
// Object must not be modified during iteration.
func (o *Object) Iter(fn func(key string, v Value) bool) {
	live(o)
	for _, head := range o.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns the keys in iteration order.
func (o *Object) Keys() []string {
	live(o)
	keys := make([]string, 0, o.n)
	for _, head := range o.buckets {
		for e := head; e != nil; e = e.next {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// DebugHash logs the bucket occupancy of o.
func (o *Object) DebugHash(logger logging.Logger) {
	live(o)
	logger.WithFields(map[string]interface{}{
		"buckets":     len(o.buckets),
		"elements":    o.n,
		"load_factor": o.loadFactor(),
	}).Debug("object hash table")

	for i, head := range o.buckets {
		chain := 0
		for e := head; e != nil; e = e.next {
			chain++
		}
		if chain > 0 {
			logger.Debug("bucket %d: %d entries", i, chain)
		}
	}
}

func (o *Object) Kind() Kind { return KindObject }

func (o *Object) hdr() *header {
	if o == nil {
		return nil
	}
	return &o.header
}

func (o *Object) release() {
	buckets := o.buckets
	o.buckets = nil
	o.n = 0
	for _, head := range buckets {
		for e := head; e != nil; e = e.next {
			Unref(e.value)
		}
	}
}

func (o *Object) clone() Value {
	c := NewObject()
	o.Iter(func(key string, v Value) bool {
		c.put(key, adopt(v.clone()))
		return true
	})
	return c
}

func (o *Object) equal(other Value) bool {
	b := other.(*Object)
	if o.n != b.n {
		return false
	}

	for _, head := range o.buckets {
		for e := head; e != nil; e = e.next {
			w := b.find(e.key)
			if w == nil || !Equal(e.value, w.value) {
				return false
			}
		}
	}
	return true
}

func (o *Object) render(opts *RenderOptions, indent int) *String {
	s := newIndent(opts, indent)
	if o.n == 0 {
		s.AppendString("{}")
		return s
	}

	keys := o.Keys()
	if opts.SortKeys {
		slices.Sort(keys)
	}

	s.AppendByte('{')
	s.AppendString(opts.newline())
	for i, key := range keys {
		if i > 0 {
			s.AppendString(opts.separator())
		}
		appendText(s, padding(opts, indent+1))
		appendQuoted(s, []byte(key), opts.RawStrings)
		s.AppendString(opts.colon())

		child := o.find(key).value.render(opts, indent+1)
		s.Append(child.LStrip())
		Unref(child)
	}
	s.AppendString(opts.newline())
	appendText(s, padding(opts, indent))
	s.AppendByte('}')
	return s
}

func (o *Object) String() string { return Render(o, 0) }
