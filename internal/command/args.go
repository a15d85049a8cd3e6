package command

import (
	"fmt"
	"strings"
	"unicode"
)

// MissingArgumentError reports a required argument that was not supplied.
// The router sends its text back to the user as the reply.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s is a required argument that is missing.", e.Name)
}

// NextArg splits the first argument off s. Leading whitespace is skipped.
// An argument that starts with a double quote runs to the next double quote
// and may contain whitespace; an unterminated quote is read as a plain word.
// ok is false when s holds no argument.
func NextArg(s string) (arg, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", "", false
	}
	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			arg, rest = s[1:1+end], s[2+end:]
			return arg, rest, arg != ""
		}
	}
	arg, rest = splitWord(s)
	return arg, rest, true
}

// Rest returns the remainder of the input with surrounding whitespace
// removed. Inner whitespace, including newlines, is kept as typed.
func Rest(s string) string {
	return strings.TrimSpace(s)
}

// Unquote strips one pair of double quotes enclosing all of s.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// splitWord returns the leading run of non-space characters and what follows
// it. It does not skip leading whitespace.
func splitWord(s string) (word, rest string) {
	if i := strings.IndexFunc(s, isSpace); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
