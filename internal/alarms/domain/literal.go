package alarms

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind tags a parsed literal value.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
)

const maxLiteralDepth = 32

// Value is a node of a parsed list literal. Only numbers, strings, booleans,
// None and (nested) lists or tuples are representable.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Items []Value
}

// AsInt returns the value as an integer when it is integral.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		if v.Float == float64(int64(v.Float)) {
			return int64(v.Float), true
		}
	}
	return 0, false
}

// ParseLiteral parses a serialized list literal such as `[[1, "a", 2, 3]]`.
// It never evaluates anything: unknown tokens are a DecodeError.
func ParseLiteral(input string) (Value, error) {
	p := &literalParser{src: input}
	p.skipSpace()
	value, err := p.parseValue(0)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Value{}, p.fail("unexpected trailing input")
	}
	return value, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) fail(reason string) *DecodeError {
	return &DecodeError{Offset: p.pos, Reason: reason}
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) parseValue(depth int) (Value, error) {
	if p.pos >= len(p.src) {
		return Value{}, p.fail("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '[':
		return p.parseSequence(depth, '[', ']')
	case c == '(':
		return p.parseSequence(depth, '(', ')')
	case c == '"' || c == '\'':
		s, err := p.parseString(c)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *literalParser) parseSequence(depth int, open, closing byte) (Value, error) {
	if depth >= maxLiteralDepth {
		return Value{}, p.fail("nesting too deep")
	}
	p.pos++ // open
	items := make([]Value, 0)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Value{}, p.fail("unterminated " + string(open))
		}
		if p.src[p.pos] == closing {
			p.pos++
			return Value{Kind: KindList, Items: items}, nil
		}
		item, err := p.parseValue(depth + 1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return Value{}, p.fail("unterminated " + string(open))
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return Value{Kind: KindList, Items: items}, nil
		default:
			return Value{}, p.fail("expected ',' or '" + string(closing) + "'")
		}
	}
}

func (p *literalParser) parseString(quote byte) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.fail("newline in string")
		case c == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	p.pos = start
	return "", p.fail("unterminated string")
}

func (p *literalParser) parseEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return p.fail("dangling escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'x':
		return p.parseCodePoint(b, 2)
	case 'u':
		return p.parseCodePoint(b, 4)
	case 'U':
		return p.parseCodePoint(b, 8)
	default:
		// unknown escapes are kept verbatim
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) parseCodePoint(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.fail("truncated escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return p.fail("invalid escape")
	}
	if n > utf8.MaxRune {
		return p.fail("escape out of range")
	}
	p.pos += digits
	b.WriteRune(rune(n))
	return nil
}

func (p *literalParser) parseNumber() (Value, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	digits := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case isDigit(c) || c == '_':
			if c != '_' {
				digits++
			}
			p.pos++
			continue
		case c == '.':
			isFloat = true
			p.pos++
			continue
		case (c == 'e' || c == 'E') && digits > 0:
			isFloat = true
			p.pos++
			if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
			continue
		}
		break
	}
	if digits == 0 {
		p.pos = start
		return Value{}, p.fail("invalid number")
	}

	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if !isFloat {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Value{Kind: KindInt, Int: n}, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return Value{}, p.fail("invalid number")
	}
	return Value{Kind: KindFloat, Float: f}, nil
}

func (p *literalParser) parseKeyword() (Value, error) {
	for _, kw := range []struct {
		word  string
		value Value
	}{
		{"None", Value{Kind: KindNone}},
		{"True", Value{Kind: KindBool, Bool: true}},
		{"False", Value{Kind: KindBool, Bool: false}},
	} {
		if strings.HasPrefix(p.src[p.pos:], kw.word) {
			end := p.pos + len(kw.word)
			if end < len(p.src) && isIdentChar(p.src[end]) {
				break
			}
			p.pos = end
			return kw.value, nil
		}
	}
	return Value{}, p.fail("unexpected token")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
