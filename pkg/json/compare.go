package json

import (
	"math"
	"strings"

	"golang.org/x/exp/slices"
)

// Equal compares two values structurally. Values of different kinds are never
// equal.
func Equal(a, b Value) bool {
	live(a)
	live(b)
	if a.Kind() != b.Kind() {
		return false
	}
	return a.equal(b)
}

// Compare defines a total order over values: first by kind (null, boolean,
// number, string, array, object), then by content. Arrays compare element
// by element, objects by their members in key order. NaN sorts before every
// other number.
func Compare(a, b Value) int {
	live(a)
	live(b)
	return compareOp(a, b)
}

func compareOp(a, b Value) int {
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch x := a.(type) {
	case *Null:
		return 0

	case *Boolean:
		y := b.(*Boolean)
		switch {
		case x.value == y.value:
			return 0
		case !x.value:
			return -1
		}
		return 1

	case *Number:
		return compareFloat(x.value, b.(*Number).value)

	case *String:
		return strings.Compare(x.Value(), b.(*String).Value())

	case *Array:
		y := b.(*Array)
		for i := 0; i < len(x.elems) && i < len(y.elems); i++ {
			if c := compareOp(x.elems[i], y.elems[i]); c != 0 {
				return c
			}
		}
		return compareInt(len(x.elems), len(y.elems))

	case *Object:
		return compareObject(x, b.(*Object))

	default:
		panic("json: unsupported type")
	}
}

func compareObject(a, b *Object) int {
	ak, bk := a.Keys(), b.Keys()
	slices.Sort(ak)
	slices.Sort(bk)

	for i := 0; i < len(ak) && i < len(bk); i++ {
		if c := strings.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
		va, _ := a.Get(ak[i])
		vb, _ := b.Get(bk[i])
		if c := compareOp(va, vb); c != 0 {
			return c
		}
	}
	return compareInt(len(ak), len(bk))
}

func compareFloat(x, y float64) int {
	switch xn, yn := math.IsNaN(x), math.IsNaN(y); {
	case xn && yn:
		return 0
	case xn:
		return -1
	case yn:
		return 1
	}

	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareInt(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
