package lexer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/styrainc/jsondoc/pkg/json"
)

type item struct {
	Tok Token
	Lit string
}

func scan(t *testing.T, l *Lexer) []item {
	t.Helper()
	var out []item
	for i := 0; i < 1000; i++ {
		tok := l.Next()
		it := item{Tok: tok}
		if tok != EOF && tok.Literal() {
			it.Lit = l.Literal()
		}
		out = append(out, it)
		if tok == EOF {
			return out
		}
	}
	t.Fatal("lexer did not reach EOF")
	return nil
}

func TestLexerKeyWithoutStringScanning(t *testing.T) {
	l := NewFromString(`{ "key1": null }`)
	defer l.Close()

	want := []item{
		{Tok: LBrace},
		{Tok: DQuote},
		{Tok: Error, Lit: "key1"},
		{Tok: DQuote},
		{Tok: Colon},
		{Tok: Null, Lit: "null"},
		{Tok: RBrace},
		{Tok: EOF},
	}
	if diff := cmp.Diff(want, scan(t, l)); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
	if !l.EOF() {
		t.Fatal("EOF not reported")
	}
}

func TestLexerLiterals(t *testing.T) {
	l := NewFromString("null true false 123.45")
	defer l.Close()

	want := []item{
		{Tok: Null, Lit: "null"},
		{Tok: True, Lit: "true"},
		{Tok: False, Lit: "false"},
		{Tok: Number, Lit: "123.45"},
		{Tok: EOF},
	}
	if diff := cmp.Diff(want, scan(t, l)); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
}

func TestLexerRules(t *testing.T) {
	tests := []struct {
		note string
		in   string
		opts []Option
		want []item
	}{
		{
			note: "identifiers are case sensitive",
			in:   "Null TRUE",
			want: []item{{Error, "Null"}, {Error, "TRUE"}, {EOF, ""}},
		},
		{
			note: "identifier with digits and underscore",
			in:   "null_1,",
			want: []item{{Error, "null_1"}, {Comma, ""}, {EOF, ""}},
		},
		{
			note: "structural characters",
			in:   "[]{}:,'",
			want: []item{{LBracket, ""}, {RBracket, ""}, {LBrace, ""}, {RBrace, ""}, {Colon, ""}, {Comma, ""}, {SQuote, ""}, {EOF, ""}},
		},
		{
			note: "unclaimed character",
			in:   "-1",
			want: []item{{Token('-'), ""}, {Number, "1"}, {EOF, ""}},
		},
		{
			note: "number run without validation",
			in:   "1.2.3 .5",
			want: []item{{Number, "1.2.3"}, {Number, ".5"}, {EOF, ""}},
		},
		{
			note: "exponent not part of a plain number",
			in:   "1e5",
			want: []item{{Number, "1"}, {Error, "e5"}, {EOF, ""}},
		},
		{
			note: "extended numbers",
			in:   "-1.5e+3 2E-2 7e",
			opts: []Option{ExtendedNumbers()},
			want: []item{{Number, "-1.5e+3"}, {Number, "2E-2"}, {Number, "7e"}, {EOF, ""}},
		},
		{
			note: "lone minus",
			in:   "- 1",
			opts: []Option{ExtendedNumbers()},
			want: []item{{Error, "-"}, {Number, "1"}, {EOF, ""}},
		},
		{
			note: "strings",
			in:   `{"key1": "a\"b\\c\/\né😀"}`,
			opts: []Option{ScanStrings()},
			want: []item{{LBrace, ""}, {String, "key1"}, {Colon, ""}, {String, "a\"b\\c/\né\U0001F600"}, {RBrace, ""}, {EOF, ""}},
		},
		{
			note: "empty string",
			in:   `""`,
			opts: []Option{ScanStrings()},
			want: []item{{String, ""}, {EOF, ""}},
		},
		{
			note: "lone surrogate",
			in:   `"\ud83dx"`,
			opts: []Option{ScanStrings()},
			want: []item{{String, "�x"}, {EOF, ""}},
		},
		{
			note: "unterminated string",
			in:   `"abc`,
			opts: []Option{ScanStrings()},
			want: []item{{Error, "abc"}, {EOF, ""}},
		},
		{
			note: "bad escape",
			in:   `"a\qb"`,
			opts: []Option{ScanStrings()},
			want: []item{{Error, "a"}, {Error, "qb"}, {Error, ""}, {EOF, ""}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			l := NewFromString(tc.in, tc.opts...)
			defer l.Close()
			if diff := cmp.Diff(tc.want, scan(t, l)); diff != "" {
				t.Fatalf("(-want, +got):\n%s", diff)
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewFromString("{\n  \"a\": 1,\r\n  \"b\"\r: 2\n}", ScanStrings())
	defer l.Close()

	type pos struct {
		Tok          Token
		Line, Column int
	}
	var got []pos
	for tok := l.Next(); tok != EOF; tok = l.Next() {
		p := l.Position()
		got = append(got, pos{tok, p.Line, p.Column})
	}

	want := []pos{
		{LBrace, 1, 1},
		{String, 2, 3},
		{Colon, 2, 6},
		{Number, 2, 8},
		{Comma, 2, 9},
		{String, 3, 3},
		{Colon, 4, 1},
		{Number, 4, 3},
		{RBrace, 5, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
	if l.Line() != 5 {
		t.Fatalf("final line %d, want 5", l.Line())
	}
	if l.Offset() != len("{\n  \"a\": 1,\r\n  \"b\"\r: 2\n}") {
		t.Fatalf("offset %d after EOF", l.Offset())
	}
}

func TestLexerConstructors(t *testing.T) {
	s := json.NewString("[1]")
	l := New(s)
	json.Unref(s)
	if diff := cmp.Diff([]item{{LBracket, ""}, {Number, "1"}, {RBracket, ""}, {EOF, ""}}, scan(t, l)); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
	l.Close()

	l = NewFromBytesLength([]byte("true false"), 4)
	if diff := cmp.Diff([]item{{True, "true"}, {EOF, ""}}, scan(t, l)); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
	l.Close()

	l, err := NewFromReader(strings.NewReader(" null "))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]item{{Null, "null"}, {EOF, ""}}, scan(t, l)); diff != "" {
		t.Fatalf("(-want, +got):\n%s", diff)
	}
	l.Close()
	l.Close()
}

func TestLexerEmptyInput(t *testing.T) {
	for name, fn := range map[string]func(){
		"string":       func() { NewFromString("") },
		"bytes":        func() { NewFromBytes(nil) },
		"zero length":  func() { NewFromBytesLength([]byte("x"), 0) },
		"value":        func() { New(nil) },
		"long":         func() { NewFromBytesLength([]byte("x"), 2) },
		"empty string": func() { New(json.NewString("")) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestLexerFromFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(name, []byte(`{"k": [1, 2]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	l, err := NewFromFile(name, ScanStrings())
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if got := len(scan(t, l)); got != 10 {
		t.Fatalf("got %d tokens, want 10", got)
	}

	_, err = NewFromFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, ErrOpen) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrOpen wrapping os.ErrNotExist, got %v", err)
	}
}

func TestLexerClosed(t *testing.T) {
	l := NewFromString("1")
	l.Close()
	defer func() {
		if r := recover(); r == nil || !strings.Contains(r.(string), "closed") {
			t.Fatalf("expected closed lexer panic, got %v", r)
		}
	}()
	l.Next()
}

func TestTokenString(t *testing.T) {
	for tok, want := range map[Token]string{
		Error:       "ERROR",
		EOF:         "EOF",
		LBrace:      `'{'`,
		Number:      "NUMBER",
		Null:        "NULL",
		Token(1000): "Token(1000)",
	} {
		if got := tok.String(); got != want {
			t.Errorf("%d: got %q, want %q", int32(tok), got, want)
		}
	}
}
