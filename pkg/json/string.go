package json

import (
	"bytes"
	"fmt"
)

// String owns a growable byte buffer. The buffer always carries a NUL
// terminator after the last content byte; the content itself may contain
// NUL bytes.
type String struct {
	header
	buf []byte // len(buf) == Len()+1, buf[Len()] == 0
}

type text interface {
	~string | ~[]byte
}

// NewString returns a floating String holding a copy of s.
func NewString(s string) *String {
	return newString(s)
}

// NewStringBytes returns a floating String holding a copy of exactly the
// first n bytes of b, embedded NUL bytes included. A nil b or a zero n yields
// an empty String.
func NewStringBytes(b []byte, n int) *String {
	if b == nil || n == 0 {
		return newString("")
	}
	if n < 0 || n > len(b) {
		panic("json: string length out of range")
	}
	return newString(b[:n])
}

// Newf returns a floating String holding the formatted text.
func Newf(format string, args ...interface{}) *String {
	return newString(fmt.Sprintf(format, args...))
}

func newString[T text](t T) *String {
	s := &String{header: newHeader()}
	s.buf = memAlloc(len(t) + 1)
	copy(s.buf, t)
	s.buf[len(t)] = 0
	return s
}

// Len returns the number of content bytes.
func (s *String) Len() int {
	live(s)
	return len(s.buf) - 1
}

// Value returns a copy of the content.
func (s *String) Value() string {
	live(s)
	return string(s.buf[:len(s.buf)-1])
}

// Bytes returns the content without the terminator. The slice aliases the
// internal buffer and is valid until the next mutation.
func (s *String) Bytes() []byte {
	live(s)
	n := len(s.buf) - 1
	return s.buf[:n:n]
}

// CStr returns the content followed by the NUL terminator. The slice aliases
// the internal buffer and is valid until the next mutation.
func (s *String) CStr() []byte {
	live(s)
	return s.buf[:len(s.buf):len(s.buf)]
}

// Assign replaces the content with str.
func (s *String) Assign(str string) {
	assignText(s, str)
}

// AssignBytes replaces the content with the first n bytes of b.
func (s *String) AssignBytes(b []byte, n int) {
	if b == nil || n == 0 {
		assignText(s, "")
		return
	}
	if n < 0 || n > len(b) {
		panic("json: string length out of range")
	}
	assignText(s, b[:n])
}

// Assignf replaces the content with the formatted text.
func (s *String) Assignf(format string, args ...interface{}) {
	assignText(s, fmt.Sprintf(format, args...))
}

// Append appends the content of other.
func (s *String) Append(other *String) {
	appendText(s, contentOf(s, other))
}

// AppendString appends str.
func (s *String) AppendString(str string) {
	appendText(s, str)
}

// AppendByte appends a single byte.
func (s *String) AppendByte(c byte) {
	appendText(s, []byte{c})
}

// Write appends p, making a String usable as an io.Writer.
func (s *String) Write(p []byte) (int, error) {
	appendText(s, p)
	return len(p), nil
}

// Appendf appends the formatted text.
func (s *String) Appendf(format string, args ...interface{}) {
	appendText(s, fmt.Sprintf(format, args...))
}

// Prepend inserts the content of other at the front.
func (s *String) Prepend(other *String) {
	prependText(s, contentOf(s, other))
}

// PrependString inserts str at the front.
func (s *String) PrependString(str string) {
	prependText(s, str)
}

// PrependByte inserts a single byte at the front.
func (s *String) PrependByte(c byte) {
	prependText(s, []byte{c})
}

// Prependf inserts the formatted text at the front.
func (s *String) Prependf(format string, args ...interface{}) {
	prependText(s, fmt.Sprintf(format, args...))
}

// LStrip removes leading ASCII whitespace and returns s.
func (s *String) LStrip() *String {
	live(s)
	n := len(s.buf) - 1
	i := 0
	for i < n && isSpace(s.buf[i]) {
		i++
	}
	if i > 0 {
		copy(s.buf, s.buf[i:])
		s.resize(n - i)
	}
	return s
}

// RStrip removes trailing ASCII whitespace and returns s.
func (s *String) RStrip() *String {
	live(s)
	n := len(s.buf) - 1
	j := n
	for j > 0 && isSpace(s.buf[j-1]) {
		j--
	}
	if j < n {
		s.resize(j)
	}
	return s
}

// Strip removes leading and trailing ASCII whitespace and returns s.
func (s *String) Strip() *String {
	return s.RStrip().LStrip()
}

// contentOf returns the content of other, copied when it aliases s.
func contentOf(s, other *String) []byte {
	live(other)
	b := other.buf[:len(other.buf)-1]
	if other == s {
		b = bytes.Clone(b)
	}
	return b
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// resize sets the content length to n and restores the terminator.
func (s *String) resize(n int) {
	s.buf = memRealloc(s.buf, n+1)
	s.buf[n] = 0
}

func assignText[T text](s *String, t T) {
	live(s)
	s.resize(len(t))
	copy(s.buf, t)
}

func appendText[T text](s *String, t T) {
	live(s)
	if len(t) == 0 {
		return
	}
	n := len(s.buf) - 1
	s.resize(n + len(t))
	copy(s.buf[n:], t)
	s.buf[n+len(t)] = 0
}

func prependText[T text](s *String, t T) {
	live(s)
	m := len(t)
	if m == 0 {
		return
	}
	n := len(s.buf) - 1
	s.resize(n + m)
	copy(s.buf[m:], s.buf[:n])
	copy(s.buf, t)
	s.buf[n+m] = 0
}

func (s *String) Kind() Kind { return KindString }

func (s *String) hdr() *header {
	if s == nil {
		return nil
	}
	return &s.header
}

func (s *String) release() {
	memFree(s.buf)
	s.buf = nil
}

func (s *String) clone() Value {
	return newString(s.buf[:len(s.buf)-1])
}

func (s *String) equal(other Value) bool {
	o := other.(*String)
	return bytes.Equal(s.buf, o.buf)
}

func (s *String) render(o *RenderOptions, indent int) *String {
	r := newIndent(o, indent)
	appendQuoted(r, s.buf[:len(s.buf)-1], o.RawStrings)
	return r
}

// String returns the JSON rendering of s, quotes included. Use Value for the
// raw content.
func (s *String) String() string { return Render(s, 0) }
