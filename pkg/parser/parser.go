// Package parser builds document trees from JSON text on top of the lexer.
package parser

import (
	"fmt"
	"io"
	"strconv"

	"github.com/open-policy-agent/opa/logging"

	"github.com/styrainc/jsondoc/pkg/json"
	"github.com/styrainc/jsondoc/pkg/lexer"
)

// DefaultMaxDepth bounds container nesting unless MaxDepth is given.
const DefaultMaxDepth = 1000

// SyntaxError describes malformed input. The position is that of the
// offending token.
type SyntaxError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

type opts struct {
	maxDepth int
	logger   logging.Logger
}

type Option func(*opts)

// MaxDepth sets the deepest container nesting accepted.
func MaxDepth(n int) Option {
	return func(o *opts) {
		o.maxDepth = n
	}
}

// Logger receives a debug trace of container boundaries.
func Logger(l logging.Logger) Option {
	return func(o *opts) {
		o.logger = l
	}
}

func lexerOptions() []lexer.Option {
	return []lexer.Option{lexer.ScanStrings(), lexer.ExtendedNumbers()}
}

// Parse parses a single JSON document. The returned value is floating, or a
// counted reference for null and booleans, and must be released by the
// caller.
func Parse(text string, opt ...Option) (json.Value, error) {
	if text == "" {
		return nil, endOfInput()
	}
	l := lexer.NewFromString(text, lexerOptions()...)
	defer l.Close()
	return ParseLexer(l, opt...)
}

// ParseBytes is like Parse for a byte slice.
func ParseBytes(data []byte, opt ...Option) (json.Value, error) {
	if len(data) == 0 {
		return nil, endOfInput()
	}
	l := lexer.NewFromBytes(data, lexerOptions()...)
	defer l.Close()
	return ParseLexer(l, opt...)
}

// ParseReader reads r to the end and parses its content.
func ParseReader(r io.Reader, opt ...Option) (json.Value, error) {
	l, err := lexer.NewFromReader(r, lexerOptions()...)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return ParseLexer(l, opt...)
}

// ParseFile parses the named file. Open failures wrap lexer.ErrOpen.
func ParseFile(name string, opt ...Option) (json.Value, error) {
	l, err := lexer.NewFromFile(name, lexerOptions()...)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return ParseLexer(l, opt...)
}

// ParseLexer parses the tokens l produces. The lexer should have string
// scanning enabled; without it no object key can be read.
func ParseLexer(l *lexer.Lexer, opt ...Option) (json.Value, error) {
	o := opts{
		maxDepth: DefaultMaxDepth,
		logger:   logging.NewNoOpLogger(),
	}
	for _, f := range opt {
		f(&o)
	}

	p := &parser{lex: l, opts: o}
	p.advance()

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok != lexer.EOF {
		json.Unref(v)
		return nil, p.errorf("unexpected %v after document", p.tok)
	}
	return v, nil
}

func endOfInput() error {
	return &SyntaxError{Line: 1, Msg: "unexpected end of input"}
}

type parser struct {
	lex   *lexer.Lexer
	opts  opts
	tok   lexer.Token
	pos   lexer.Position
	depth int
}

func (p *parser) advance() {
	p.tok = p.lex.Next()
	p.pos = p.lex.Position()
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Offset: p.pos.Offset,
		Line:   p.pos.Line,
		Column: p.pos.Column,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) unexpected() *SyntaxError {
	switch p.tok {
	case lexer.EOF:
		return p.errorf("unexpected end of input")
	case lexer.Error:
		if p.lex.BadString() {
			return p.errorf("invalid string literal")
		}
		return p.errorf("invalid literal %q", p.lex.Literal())
	}
	return p.errorf("unexpected %v", p.tok)
}

func (p *parser) parseValue() (json.Value, error) {
	switch p.tok {
	case lexer.LBrace:
		return p.parseObject()
	case lexer.LBracket:
		return p.parseArray()
	case lexer.String:
		v := json.NewString(p.lex.Literal())
		p.advance()
		return v, nil
	case lexer.Number:
		lit := p.lex.Literal()
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", lit)
		}
		p.advance()
		return json.NewNumber(f), nil
	case lexer.True:
		p.advance()
		return json.True(), nil
	case lexer.False:
		p.advance()
		return json.False(), nil
	case lexer.Null:
		p.advance()
		return json.NewNull(), nil
	}
	return nil, p.unexpected()
}

func (p *parser) enter(kind json.Kind) error {
	p.depth++
	if p.depth > p.opts.maxDepth {
		return p.errorf("exceeded max depth %d", p.opts.maxDepth)
	}
	p.opts.logger.Debug("start %v at %v", kind, p.pos)
	return nil
}

func (p *parser) leave(kind json.Kind) {
	p.opts.logger.Debug("end %v at %v", kind, p.pos)
	p.depth--
}

func (p *parser) parseArray() (json.Value, error) {
	if err := p.enter(json.KindArray); err != nil {
		return nil, err
	}
	defer p.leave(json.KindArray)

	arr := json.NewArray()
	p.advance()
	if p.tok == lexer.RBracket {
		p.advance()
		return arr, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			json.Unref(arr)
			return nil, err
		}
		floating := json.IsFloating(v)
		arr.Append(v)
		if !floating {
			json.Unref(v)
		}

		switch p.tok {
		case lexer.Comma:
			p.advance()
		case lexer.RBracket:
			p.advance()
			return arr, nil
		default:
			err := p.unexpected()
			json.Unref(arr)
			return nil, err
		}
	}
}

func (p *parser) parseObject() (json.Value, error) {
	if err := p.enter(json.KindObject); err != nil {
		return nil, err
	}
	defer p.leave(json.KindObject)

	obj := json.NewObject()
	p.advance()
	if p.tok == lexer.RBrace {
		p.advance()
		return obj, nil
	}

	fail := func(err error) (json.Value, error) {
		json.Unref(obj)
		return nil, err
	}

	for {
		if p.tok != lexer.String {
			if p.tok == lexer.Error || p.tok == lexer.EOF {
				return fail(p.unexpected())
			}
			return fail(p.errorf("expected string key, found %v", p.tok))
		}
		key := p.lex.Literal()
		p.advance()

		if p.tok != lexer.Colon {
			return fail(p.errorf("expected ':' after object key, found %v", p.tok))
		}
		p.advance()

		v, err := p.parseValue()
		if err != nil {
			return fail(err)
		}
		floating := json.IsFloating(v)
		obj.Set(key, v)
		if !floating {
			json.Unref(v)
		}

		switch p.tok {
		case lexer.Comma:
			p.advance()
		case lexer.RBrace:
			p.advance()
			return obj, nil
		default:
			return fail(p.unexpected())
		}
	}
}
