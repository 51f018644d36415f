package json

// Array is an ordered sequence of values. Every slot holds a live value the
// Array owns a reference to.
type Array struct {
	header
	elems []Value
}

// NewArray returns a floating, empty Array.
func NewArray() *Array {
	return &Array{header: newHeader()}
}

// Len returns the number of elements.
func (a *Array) Len() int {
	live(a)
	return len(a.elems)
}

// Nth returns a borrowed reference to the element at i. The index must be
// within [0, Len()).
func (a *Array) Nth(i int) Value {
	live(a)
	if i < 0 || i >= len(a.elems) {
		panic("json: array index out of range")
	}
	return a.elems[i]
}

// Insert stores v at pos, shifting the elements at and after pos one slot to
// the right. A floating v is sunk, any other v is retained. It returns false,
// leaving v untouched, if pos is beyond Len().
func (a *Array) Insert(v Value, pos int) bool {
	live(a)
	if pos < 0 || pos > len(a.elems) {
		return false
	}

	a.elems = append(a.elems, nil)
	copy(a.elems[pos+1:], a.elems[pos:])
	a.elems[pos] = sink(v)
	return true
}

// Prepend inserts v at the front.
func (a *Array) Prepend(v Value) {
	a.Insert(v, 0)
}

// Append inserts v at the back.
func (a *Array) Append(v Value) {
	live(a)
	a.Insert(v, len(a.elems))
}

// RemoveNth releases the element at pos and shifts the following elements
// left. The index must be within [0, Len()).
func (a *Array) RemoveNth(pos int) {
	live(a)
	if pos < 0 || pos >= len(a.elems) {
		panic("json: array index out of range")
	}

	v := a.elems[pos]
	n := len(a.elems) - 1
	copy(a.elems[pos:], a.elems[pos+1:])
	a.elems[n] = nil
	if n == 0 {
		a.elems = nil
	} else {
		a.elems = a.elems[:n]
	}
	Unref(v)
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) hdr() *header {
	if a == nil {
		return nil
	}
	return &a.header
}

func (a *Array) release() {
	elems := a.elems
	a.elems = nil
	for _, v := range elems {
		Unref(v)
	}
}

func (a *Array) clone() Value {
	c := NewArray()
	if len(a.elems) > 0 {
		c.elems = make([]Value, len(a.elems))
		for i, v := range a.elems {
			c.elems[i] = adopt(v.clone())
		}
	}
	return c
}

func (a *Array) equal(other Value) bool {
	o := other.(*Array)
	if len(a.elems) != len(o.elems) {
		return false
	}
	for i := range a.elems {
		if !Equal(a.elems[i], o.elems[i]) {
			return false
		}
	}
	return true
}

func (a *Array) render(o *RenderOptions, indent int) *String {
	s := newIndent(o, indent)
	if len(a.elems) == 0 {
		s.AppendString("[]")
		return s
	}

	s.AppendByte('[')
	s.AppendString(o.newline())
	for i, v := range a.elems {
		if i > 0 {
			s.AppendString(o.separator())
		}
		child := v.render(o, indent+1)
		s.Append(child)
		Unref(child)
	}
	s.AppendString(o.newline())
	appendText(s, padding(o, indent))
	s.AppendByte(']')
	return s
}

func padding(o *RenderOptions, indent int) string {
	if o.Compact {
		return ""
	}
	return indentString(indent)
}

func (a *Array) String() string { return Render(a, 0) }
