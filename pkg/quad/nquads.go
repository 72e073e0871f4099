package quad

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrSyntax = errors.New("malformed n-quads statement")
)

// Parse reads one N-Quads (or N-Triples) statement.
func Parse(line string) (Quad, error) {
	l := &lexer{input: strings.TrimSpace(line)}
	var (
		q   Quad
		err error
	)
	if q.Subject, err = l.term(); err != nil {
		return Quad{}, errors.WithMessage(err, "subject")
	}
	if q.Predicate, err = l.term(); err != nil {
		return Quad{}, errors.WithMessage(err, "predicate")
	}
	if q.Object, err = l.term(); err != nil {
		return Quad{}, errors.WithMessage(err, "object")
	}
	l.skipSpace()
	if !l.peek('.') {
		if q.Graph, err = l.term(); err != nil {
			return Quad{}, errors.WithMessage(err, "graph")
		}
		l.skipSpace()
	}
	if !l.peek('.') {
		return Quad{}, errors.WithMessagef(ErrSyntax, "missing terminating '.' at %d", l.pos)
	}
	l.pos++
	l.skipSpace()
	if l.pos < len(l.input) && l.input[l.pos] != '#' {
		return Quad{}, errors.WithMessagef(ErrSyntax, "trailing characters at %d", l.pos)
	}
	if q.Subject.Kind == Literal || q.Predicate.Kind != IRI || q.Graph.Kind == Literal {
		return Quad{}, errors.WithMessage(ErrSyntax, "term not allowed in position")
	}
	return q, nil
}

// ParseAll reads every statement from r, skipping blank lines and comments.
func ParseAll(r io.Reader) ([]Quad, error) {
	var quads []Quad
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := Parse(line)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", number)
		}
		quads = append(quads, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read n-quads")
	}
	return quads, nil
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) peek(c byte) bool {
	return l.pos < len(l.input) && l.input[l.pos] == c
}

func (l *lexer) term() (Term, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Term{}, errors.WithMessage(ErrSyntax, "unexpected end of statement")
	}
	switch l.input[l.pos] {
	case '<':
		iri, err := l.iri()
		if err != nil {
			return Term{}, err
		}
		return NewIRI(iri), nil
	case '_':
		return l.blank()
	case '"':
		return l.literal()
	default:
		return Term{}, errors.WithMessagef(ErrSyntax, "unexpected %q at %d", l.input[l.pos], l.pos)
	}
}

func (l *lexer) iri() (string, error) {
	end := strings.IndexByte(l.input[l.pos:], '>')
	if end < 0 {
		return "", errors.WithMessage(ErrSyntax, "unterminated iri")
	}
	iri := l.input[l.pos+1 : l.pos+end]
	if strings.ContainsAny(iri, " \t\"<") {
		return "", errors.WithMessagef(ErrSyntax, "invalid iri %q", iri)
	}
	l.pos += end + 1
	return iri, nil
}

func (l *lexer) blank() (Term, error) {
	if !strings.HasPrefix(l.input[l.pos:], "_:") {
		return Term{}, errors.WithMessage(ErrSyntax, "invalid blank node")
	}
	l.pos += 2
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != ' ' && l.input[l.pos] != '\t' {
		l.pos++
	}
	label := l.input[start:l.pos]
	// "_:b1." ends the statement
	if strings.HasSuffix(label, ".") && strings.TrimSpace(l.input[l.pos:]) == "" {
		label = label[:len(label)-1]
		l.pos--
	}
	if label == "" {
		return Term{}, errors.WithMessage(ErrSyntax, "empty blank node label")
	}
	return NewBlank(label), nil
}

func (l *lexer) literal() (Term, error) {
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Term{}, errors.WithMessage(ErrSyntax, "unterminated literal")
		}
		c := l.input[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			l.pos++
			continue
		}
		if l.pos+1 >= len(l.input) {
			return Term{}, errors.WithMessage(ErrSyntax, "dangling escape")
		}
		l.pos++
		switch e := l.input[l.pos]; e {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(e)
		case 'u', 'U':
			size := 4
			if e == 'U' {
				size = 8
			}
			if l.pos+size >= len(l.input) {
				return Term{}, errors.WithMessage(ErrSyntax, "short unicode escape")
			}
			code, err := strconv.ParseUint(l.input[l.pos+1:l.pos+1+size], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return Term{}, errors.WithMessage(ErrSyntax, "invalid unicode escape")
			}
			b.WriteRune(rune(code))
			l.pos += size
		default:
			return Term{}, errors.WithMessagef(ErrSyntax, "unknown escape \\%c", e)
		}
		l.pos++
	}
	value := b.String()
	switch {
	case l.peek('@'):
		l.pos++
		start := l.pos
		for l.pos < len(l.input) && isLangChar(l.input[l.pos]) {
			l.pos++
		}
		if start == l.pos {
			return Term{}, errors.WithMessage(ErrSyntax, "empty language tag")
		}
		return NewLangLiteral(value, l.input[start:l.pos]), nil
	case strings.HasPrefix(l.input[l.pos:], "^^"):
		l.pos += 2
		if !l.peek('<') {
			return Term{}, errors.WithMessage(ErrSyntax, "datatype must be an iri")
		}
		datatype, err := l.iri()
		if err != nil {
			return Term{}, err
		}
		return NewTypedLiteral(value, datatype), nil
	default:
		return NewLiteral(value), nil
	}
}

func isLangChar(c byte) bool {
	return c == '-' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
