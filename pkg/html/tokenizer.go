package html

import (
	"strings"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenText:
		return "Text"
	case TokenEOF:
		return "EOF"
	}
	return "Unknown"
}

// Token is one lexical unit. TagName is set for start and end tags, Text for
// text runs. Tag names are already trimmed and ASCII-lowercased.
type Token struct {
	Type    TokenType
	TagName string
	Text    string
}

func StartTag(name string) Token { return Token{Type: TokenStartTag, TagName: name} }
func EndTag(name string) Token   { return Token{Type: TokenEndTag, TagName: name} }
func Text(content string) Token  { return Token{Type: TokenText, Text: content} }

func (t Token) String() string {
	switch t.Type {
	case TokenStartTag, TokenEndTag:
		return t.Type.String() + "(" + t.TagName + ")"
	case TokenText:
		return "Text(" + t.Text + ")"
	}
	return t.Type.String()
}

const scriptCloser = "</script>"

// Tokenizer scans markup into tokens. It never fails: malformed input
// (an unterminated tag, comment or script body) ends the stream early.
type Tokenizer struct {
	input   string
	pos     int
	stopped bool
	pending []Token // tokens produced by one scan step but not yet handed out
}

func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokenize returns the complete token stream for input.
func Tokenize(input string) []Token {
	return NewTokenizer(input).All()
}

// All drains the tokenizer.
func (t *Tokenizer) All() []Token {
	tokens := make([]Token, 0)
	for {
		token := t.NextToken()
		if token.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, token)
	}
}

// NextToken returns the next token, or a TokenEOF token once the input is
// exhausted or scanning has stopped.
func (t *Tokenizer) NextToken() Token {
	for len(t.pending) == 0 {
		if t.stopped || t.pos >= len(t.input) {
			return Token{Type: TokenEOF}
		}
		t.scan()
	}
	token := t.pending[0]
	t.pending = t.pending[1:]
	return token
}

func (t *Tokenizer) emit(token Token) {
	t.pending = append(t.pending, token)
}

// stop drops the remaining input.
func (t *Tokenizer) stop() {
	t.stopped = true
	t.pos = len(t.input)
}

func (t *Tokenizer) scan() {
	rest := t.input[t.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest, "-->")
		if end < 0 {
			t.stop()
			return
		}
		t.pos += end + len("-->")
	case rest[0] == '<':
		t.readTag(rest)
	default:
		t.readText(rest)
	}
}

func (t *Tokenizer) readTag(rest string) {
	closeAt := strings.IndexByte(rest, '>')
	if closeAt < 0 {
		t.stop()
		return
	}
	inside := strings.TrimSpace(rest[1:closeAt])
	t.pos += closeAt + 1

	// <!DOCTYPE ...> and friends carry nothing we keep
	if inside == "" || inside[0] == '!' {
		return
	}

	if inside[0] == '/' {
		if name := normalizeTagName(inside[1:]); name != "" {
			t.emit(EndTag(name))
		}
		return
	}

	selfClosing := strings.HasSuffix(inside, "/")
	name := normalizeTagName(inside)
	if name == "" {
		return
	}
	t.emit(StartTag(name))

	if name == "script" {
		t.readScript()
		return
	}
	if selfClosing || IsVoidElement(name) {
		t.emit(EndTag(name))
	}
}

// readScript consumes a raw-text script body up to the closing tag. Markup
// inside the body is not tokenized. Without a closing tag the body is lost
// and scanning ends.
func (t *Tokenizer) readScript() {
	rest := t.input[t.pos:]
	end := strings.Index(asciiLower(rest), scriptCloser)
	if end < 0 {
		t.stop()
		return
	}
	if code := rest[:end]; strings.TrimSpace(code) != "" {
		t.emit(Text(code))
	}
	t.emit(EndTag("script"))
	t.pos += end + len(scriptCloser)
}

func (t *Tokenizer) readText(rest string) {
	next := strings.IndexByte(rest, '<')
	if next < 0 {
		next = len(rest)
	}
	if trimmed := strings.TrimSpace(rest[:next]); trimmed != "" {
		t.emit(Text(trimmed))
	}
	t.pos += next
}

// normalizeTagName strips slashes, drops attributes and lowercases.
func normalizeTagName(raw string) string {
	fields := strings.Fields(strings.Trim(raw, "/"))
	if len(fields) == 0 {
		return ""
	}
	return asciiLower(fields[0])
}

// asciiLower lowercases ASCII letters only, so byte offsets in the result
// match the input.
func asciiLower(s string) string {
	upper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			upper = true
			break
		}
	}
	if !upper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
