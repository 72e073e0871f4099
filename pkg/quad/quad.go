// Package quad holds the fact records streamed by sensors: subject-predicate-object
// statements with an optional graph used as a provenance tag.
package quad

import (
	"strings"
)

type TermKind uint8

const (
	DefaultGraph TermKind = iota
	IRI
	Blank
	Literal
)

func (k TermKind) String() string {
	switch k {
	case DefaultGraph:
		return "DefaultGraph"
	case IRI:
		return "IRI"
	case Blank:
		return "Blank"
	case Literal:
		return "Literal"
	default:
		return "Unknown"
	}
}

// Term is one position of a quad. Terms are values, two terms are the same term
// when all fields match.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Language string
}

func NewIRI(iri string) Term {
	return Term{Kind: IRI, Value: iri}
}

func NewBlank(label string) Term {
	return Term{Kind: Blank, Value: label}
}

func NewLiteral(value string) Term {
	return Term{Kind: Literal, Value: value}
}

func NewTypedLiteral(value, datatype string) Term {
	return Term{Kind: Literal, Value: value, Datatype: datatype}
}

func NewLangLiteral(value, language string) Term {
	return Term{Kind: Literal, Value: value, Language: language}
}

func (t Term) IsLiteral() bool {
	return t.Kind == Literal
}

func (t Term) IsDefaultGraph() bool {
	return t.Kind == DefaultGraph
}

func (t Term) String() string {
	switch t.Kind {
	case IRI:
		return "<" + t.Value + ">"
	case Blank:
		return "_:" + t.Value
	case Literal:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(literalEscaper.Replace(t.Value))
		b.WriteByte('"')
		if t.Language != "" {
			b.WriteByte('@')
			b.WriteString(t.Language)
		} else if t.Datatype != "" {
			b.WriteString("^^<")
			b.WriteString(t.Datatype)
			b.WriteByte('>')
		}
		return b.String()
	default:
		return ""
	}
}

func (t Term) less(o Term) bool {
	if t.Kind != o.Kind {
		return t.Kind < o.Kind
	}
	if t.Value != o.Value {
		return t.Value < o.Value
	}
	if t.Datatype != o.Datatype {
		return t.Datatype < o.Datatype
	}
	return t.Language < o.Language
}

// Quad is a fact record. It is comparable, so it can be used directly as a set key:
// structurally equal quads are the same fact.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func New(subject, predicate, object Term) Quad {
	return Quad{Subject: subject, Predicate: predicate, Object: object}
}

func NewInGraph(subject, predicate, object, graph Term) Quad {
	return Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

// WithoutGraph returns the quad moved to the default graph.
func (q Quad) WithoutGraph() Quad {
	q.Graph = Term{}
	return q
}

// Less orders quads by subject, predicate, object then graph.
func (q Quad) Less(o Quad) bool {
	if q.Subject != o.Subject {
		return q.Subject.less(o.Subject)
	}
	if q.Predicate != o.Predicate {
		return q.Predicate.less(o.Predicate)
	}
	if q.Object != o.Object {
		return q.Object.less(o.Object)
	}
	return q.Graph.less(o.Graph)
}

// String renders the quad as one N-Quads statement.
func (q Quad) String() string {
	parts := []string{q.Subject.String(), q.Predicate.String(), q.Object.String()}
	if !q.Graph.IsDefaultGraph() {
		parts = append(parts, q.Graph.String())
	}
	return strings.Join(parts, " ") + " ."
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
