package store

import (
	"errors"
	"fmt"
	"strings"
)

type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!="
	OpIn      Op = "in"
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpLike    Op = "like" // case-insensitive, % and _ wildcards, \ escapes
	OpIsNull  Op = "is null"
	OpNotNull Op = "is not null"
)

var (
	ErrUnknownField = errors.New("store: unknown field")
	ErrInvalidOp    = errors.New("store: invalid operator")
)

// Predicate is a single typed condition. Value is ignored for IsNull/NotNull
// and must be a slice for In.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

func Eq(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpNe, Value: v} }
func Gt(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpGt, Value: v} }
func Gte(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpGte, Value: v} }
func Lt(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpLt, Value: v} }
func Lte(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpLte, Value: v} }
func Like(field, pattern string) Predicate { return Predicate{Field: field, Op: OpLike, Value: pattern} }
func IsNull(field string) Predicate { return Predicate{Field: field, Op: OpIsNull} }
func NotNull(field string) Predicate { return Predicate{Field: field, Op: OpNotNull} }
func In(field string, vs ...string) Predicate { return Predicate{Field: field, Op: OpIn, Value: vs} }
func Contains(field, term string) Predicate { return Like(field, "%"+EscapeLike(term)+"%") }

// EscapeLike makes % and _ in term match literally.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter is the conjunction of All, further restricted by each OR group in
// AnyOf (at least one predicate of every group must hold).
type Filter struct {
	All   []Predicate
	AnyOf [][]Predicate
}

func (f Filter) And(p ...Predicate) Filter {
	f.All = append(append([]Predicate{}, f.All...), p...)
	return f
}

func (f Filter) Or(p ...Predicate) Filter {
	if len(p) == 0 {
		return f
	}
	f.AnyOf = append(append([][]Predicate{}, f.AnyOf...), p)
	return f
}

type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Query is a filtered, ordered, optionally paginated scan. Limit 0 means
// no limit.
type Query struct {
	Filter  Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

func Where(p ...Predicate) Query {
	return Query{Filter: Filter{All: p}}
}

func (q Query) Or(p ...Predicate) Query {
	q.Filter = q.Filter.Or(p...)
	return q
}

func (q Query) And(p ...Predicate) Query {
	q.Filter = q.Filter.And(p...)
	return q
}

func (q Query) Sort(o ...Order) Query {
	q.OrderBy = append(append([]Order{}, q.OrderBy...), o...)
	return q
}

func (q Query) Page(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

// Fields lists every field the query touches, for whitelist checks.
func (q Query) Fields() []string {
	out := []string{}
	for _, p := range q.Filter.All {
		out = append(out, p.Field)
	}
	for _, g := range q.Filter.AnyOf {
		for _, p := range g {
			out = append(out, p.Field)
		}
	}
	for _, o := range q.OrderBy {
		out = append(out, o.Field)
	}
	return out
}
