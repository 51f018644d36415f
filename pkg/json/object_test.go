package json

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/open-policy-agent/opa/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

func TestObjectKeyUniqueness(t *testing.T) {
	o := NewObject()
	defer Unref(o)

	v1, v2 := NewNumber(1), NewNumber(2)
	if !o.Set("k", v1) {
		t.Fatal("first set did not report a new key")
	}
	Ref(v1)
	if o.Set("k", v2) {
		t.Fatal("replacing set reported a new key")
	}
	if o.Len() != 1 {
		t.Fatalf("len = %d, want 1", o.Len())
	}
	if got, ok := o.Get("k"); !ok || got != v2 {
		t.Fatalf("get returned %v, %v", got, ok)
	}
	if got := RefCount(v1); got != 1 {
		t.Fatalf("replaced value count = %d, want 1", got)
	}
	Unref(v1)

	if o.Del("absent") {
		t.Fatal("del of absent key reported removal")
	}
	if o.Len() != 1 {
		t.Fatal("del of absent key changed the object")
	}

	if !o.Del("k") {
		t.Fatal("del of present key failed")
	}
	if _, ok := o.Get("k"); ok {
		t.Fatal("deleted key still found")
	}
}

func TestObjectSetSameValue(t *testing.T) {
	o := NewObject()
	defer Unref(o)

	s := NewString("v")
	o.Set("k", s)
	o.Set("k", s)
	if got := RefCount(s); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if s.Value() != "v" {
		t.Fatal("value destroyed on self replacement")
	}
}

func TestObjectKeysAreCopied(t *testing.T) {
	o := NewObject()
	defer Unref(o)

	key := []byte("key")
	o.Set(string(key), NewNumber(1))
	key[0] = 'x'
	if _, ok := o.Get("key"); !ok {
		t.Fatal("object aliases caller memory")
	}
}

func TestObjectRehashPreservesData(t *testing.T) {
	const n = 500
	r := rand.New(rand.NewSource(1))
	keys := make([]string, 0, n)
	seen := map[string]bool{}
	for len(keys) < n {
		k := fmt.Sprintf("k%d", r.Int63())
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	o := NewObject()
	defer Unref(o)

	if o.Buckets() != 3 {
		t.Fatalf("initial buckets = %d, want 3", o.Buckets())
	}

	grown := 0
	for i, k := range keys {
		before := o.Buckets()
		o.Set(k, NewNumber(float64(i)))
		if o.Buckets() > before {
			grown++
		}

		for j := 0; j <= i; j++ {
			v, ok := o.Get(keys[j])
			if !ok || v.(*Number).Value() != float64(j) {
				t.Fatalf("after %d inserts key %q lost", i+1, keys[j])
			}
		}
		if lf := o.LoadFactor(); lf > maxLoadFactor {
			t.Fatalf("load factor %f above band after insert", lf)
		}
	}
	if grown == 0 {
		t.Fatal("inserts never crossed the grow threshold")
	}

	shrunk := 0
	for i, k := range keys {
		before := o.Buckets()
		if !o.Del(k) {
			t.Fatalf("del %q failed", k)
		}
		if o.Buckets() < before {
			shrunk++
		}

		for j := i + 1; j < len(keys); j += 7 {
			v, ok := o.Get(keys[j])
			if !ok || v.(*Number).Value() != float64(j) {
				t.Fatalf("after %d deletions key %q lost", i+1, keys[j])
			}
		}
		if o.Buckets() < minBuckets {
			t.Fatalf("buckets %d below minimum", o.Buckets())
		}
	}
	if shrunk == 0 {
		t.Fatal("deletions never crossed the shrink threshold")
	}
	if o.Len() != 0 || o.Buckets() != minBuckets {
		t.Fatalf("len %d, buckets %d after deleting everything", o.Len(), o.Buckets())
	}
}

func TestObjectRehashBand(t *testing.T) {
	o := NewObject()
	defer Unref(o)

	if o.Rehash() {
		t.Fatal("rehash of empty object at minimum size should be a no-op")
	}

	o.Set("a", NewNumber(1))
	o.Set("b", NewNumber(2))
	if o.Rehash() {
		t.Fatal("rehash inside the band should be a no-op")
	}

	o.resizeForTest(64)
	if !o.Rehash() {
		t.Fatal("rehash below the band should shrink")
	}
	if o.Buckets() != 8 {
		t.Fatalf("buckets = %d, want 8", o.Buckets())
	}
	for _, k := range []string{"a", "b"} {
		if _, ok := o.Get(k); !ok {
			t.Fatalf("key %q lost in shrink", k)
		}
	}
}

// resizeForTest relinks every entry into a table of n buckets without
// applying the load factor band.
func (o *Object) resizeForTest(n int) {
	var all []*entry
	for _, head := range o.buckets {
		for e := head; e != nil; e = e.next {
			all = append(all, e)
		}
	}
	o.buckets = make([]*entry, n)
	for _, e := range all {
		i := o.bucket(e.key)
		e.next = o.buckets[i]
		o.buckets[i] = e
	}
}

func TestObjectKeysAndIter(t *testing.T) {
	o := NewObject()
	defer Unref(o)

	want := []string{"a", "b", "c", "d", "e"}
	for i, k := range want {
		o.Set(k, NewNumber(float64(i)))
	}

	keys := o.Keys()
	slices.Sort(keys)
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys (-want, +got):\n%s", diff)
	}

	visited := 0
	o.Iter(func(key string, v Value) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Fatalf("iteration did not stop early: %d", visited)
	}
}

func TestObjectStrhash(t *testing.T) {
	// h = c + (h << 6) + (h << 16) - h
	var want uint32
	for _, c := range []byte("ab") {
		want = uint32(c) + (want << 6) + (want << 16) - want
	}
	if got := strhash("ab"); got != want {
		t.Fatalf("strhash = %d, want %d", got, want)
	}
	if strhash("") != 0 {
		t.Fatal("empty key hash must be zero")
	}
	if strhash("ab") == strhash("ba") {
		t.Fatal("hash should be order sensitive")
	}
}

func TestObjectDebugHash(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New()
	logger.SetLevel(logging.Debug)
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	o := NewObject()
	defer Unref(o)
	o.Set("x", NewNumber(1))
	o.DebugHash(logger)

	out := buf.String()
	for _, want := range []string{"buckets=3", "elements=1", "object hash table", "bucket "} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}
