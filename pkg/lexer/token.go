package lexer

import "fmt"

// Token identifies one lexical unit. Single character tokens use the value of
// the character itself; any character no rule claims is returned that way
// too.
type Token int32

const (
	Error Token = -1
	EOF   Token = 0

	LBrace   Token = '{'
	RBrace   Token = '}'
	LBracket Token = '['
	RBracket Token = ']'
	Colon    Token = ':'
	Comma    Token = ','
	DQuote   Token = '"'
	SQuote   Token = '\''
)

const (
	Number Token = 256 + iota
	String
	True
	False
	Null
)

var names = map[Token]string{
	Error:  "ERROR",
	EOF:    "EOF",
	Number: "NUMBER",
	String: "STRING",
	True:   "TRUE",
	False:  "FALSE",
	Null:   "NULL",
}

func (t Token) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	if t > 0 && t < Number {
		return fmt.Sprintf("%q", rune(t))
	}
	return fmt.Sprintf("Token(%d)", int32(t))
}

// Literal reports whether the token carries text retrievable with
// Lexer.Literal.
func (t Token) Literal() bool {
	switch t {
	case Number, String, True, False, Null, Error:
		return true
	}
	return false
}
