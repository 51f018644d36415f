package json

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Walker receives a stream of events in depth-first search order as a value
// tree is traversed by Walk. All values passed are borrowed.
type Walker interface {
	StartArray(w *WalkState, a *Array)
	EndArray(w *WalkState, a *Array)
	Boolean(w *WalkState, b *Boolean)
	Null(w *WalkState)
	Number(w *WalkState, n *Number)
	StartObject(w *WalkState, o *Object)
	EndObject(w *WalkState, o *Object)
	String(w *WalkState, s *String)
}

// Walk traverses v depth first. Object members are visited in key order.
func Walk(v Value, walker Walker) {
	live(v)
	walk(v, &WalkState{}, walker)
}

func walk(v Value, state *WalkState, walker Walker) {
	switch v := v.(type) {
	case *Null:
		walker.Null(state)
	case *Boolean:
		walker.Boolean(state, v)
	case *Number:
		walker.Number(state, v)
	case *String:
		walker.String(state, v)
	case *Array:
		walker.StartArray(state, v)
		for i, e := range v.elems {
			state.pushIndex(i)
			walk(e, state, walker)
			state.pop()
		}
		walker.EndArray(state, v)
	case *Object:
		walker.StartObject(state, v)
		keys := v.Keys()
		slices.Sort(keys)
		for _, k := range keys {
			e, _ := v.Get(k)
			state.pushField(k)
			walk(e, state, walker)
			state.pop()
		}
		walker.EndObject(state, v)
	default:
		panic("json: unsupported type")
	}
}

// WalkState holds the current position of a traversal.
type WalkState struct {
	segments []string
}

// Depth returns the number of containers enclosing the current value.
func (w *WalkState) Depth() int {
	return len(w.segments)
}

// Path returns the current position as a JSON pointer (RFC 6901).
func (w *WalkState) Path() string {
	if len(w.segments) == 0 {
		return ""
	}

	var b strings.Builder
	for _, s := range w.segments {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (w *WalkState) pushIndex(i int) {
	w.segments = append(w.segments, strconv.Itoa(i))
}

func (w *WalkState) pushField(k string) {
	w.segments = append(w.segments, k)
}

func (w *WalkState) pop() {
	w.segments = w.segments[:len(w.segments)-1]
}
