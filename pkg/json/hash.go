package json

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

const (
	typeHashNull = iota
	typeHashBool
	typeHashNumber
	typeHashString
	typeHashArray
	typeHashObject
)

// strhash is the sdbm string hash used to place object keys in buckets.
func strhash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = uint32(s[i]) + (h << 6) + (h << 16) - h
	}
	return h
}

// Hash returns a structural hash of v: values for which Equal reports true
// hash equal. Object members are combined order-independently, so the bucket
// layout of an Object does not affect its hash.
func Hash(v Value) uint64 {
	live(v)
	hasher := xxhash.New()
	hashImpl(v, hasher)
	return hasher.Sum64()
}

func hashImpl(v Value, hasher *xxhash.Digest) {
	// Note Hasher writer below never returns an error.

	switch v := v.(type) {
	case *Null:
		hasher.Write([]byte{typeHashNull})

	case *Boolean:
		if v.value {
			hasher.Write([]byte{typeHashBool, 1})
		} else {
			hasher.Write([]byte{typeHashBool, 0})
		}

	case *Number:
		b := make([]byte, 9)
		b[0] = typeHashNumber
		f := v.value
		if f == 0 {
			f = 0 // -0 == 0
		}
		binary.BigEndian.PutUint64(b[1:], math.Float64bits(f))
		hasher.Write(b)

	case *String:
		hashString(hasher, v.buf[:len(v.buf)-1])

	case *Array:
		hasher.Write(binary.AppendUvarint([]byte{typeHashArray}, uint64(len(v.elems))))
		for _, e := range v.elems {
			hashImpl(e, hasher)
		}

	case *Object:
		var m uint64
		v.Iter(func(key string, value Value) bool {
			m = objectHashEntry(m, key, value)
			return true
		})

		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, m)
		b[0] = typeHashObject
		hasher.Write(b)

	default:
		panic("json: unsupported type")
	}
}

// objectHashEntry folds one key-value pair into the running object hash h.
func objectHashEntry(h uint64, key string, v Value) uint64 {
	hasher := xxhash.New()
	hashString(hasher, []byte(key))
	hashImpl(v, hasher)

	return h + hasher.Sum64()
}

// hashString writes b behind its length so that adjacent strings cannot run
// into each other.
func hashString(hasher *xxhash.Digest, b []byte) {
	hasher.Write(binary.AppendUvarint([]byte{typeHashString}, uint64(len(b))))
	hasher.Write(b)
}
