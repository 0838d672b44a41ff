// Package query implements the store's small algebraic query AST: Eq,
// In, And, Lt/Gt, and an orderBy restricted to the _id field. The
// temporal visibility filter (dataset lookup list, revision cutoff,
// imports cutoff) is composed on top of a user-built Expr at the
// data-source layer; it is never itself expressible through this
// package, matching the "not exposed to the user" design note.
package query

import "github.com/datacentricorg/datacentric-sub004/go/skerr"

// Expr is an algebraic query expression. The concrete node types
// (eqExpr, inExpr, andExpr, ltExpr, gtExpr) are unexported; construct
// them through the Eq/In/And/Lt/Gt functions below.
type Expr interface {
	isExpr()
}

type eqExpr struct {
	Field string
	Value interface{}
}

func (eqExpr) isExpr() {}

// Eq builds a "field = value" predicate.
func Eq(field string, value interface{}) Expr {
	return eqExpr{Field: field, Value: value}
}

type inExpr struct {
	Field  string
	Values []interface{}
}

func (inExpr) isExpr() {}

// In builds a "field ∈ values" predicate.
func In(field string, values []interface{}) Expr {
	return inExpr{Field: field, Values: values}
}

type andExpr struct {
	Terms []Expr
}

func (andExpr) isExpr() {}

// And conjoins terms. And() with no terms is the always-true predicate.
func And(terms ...Expr) Expr {
	return andExpr{Terms: terms}
}

type ltExpr struct {
	Field string
	Value interface{}
}

func (ltExpr) isExpr() {}

// Lt builds a "field < value" predicate.
func Lt(field string, value interface{}) Expr {
	return ltExpr{Field: field, Value: value}
}

type gtExpr struct {
	Field string
	Value interface{}
}

func (gtExpr) isExpr() {}

// Gt builds a "field > value" predicate.
func Gt(field string, value interface{}) Expr {
	return gtExpr{Field: field, Value: value}
}

// OrderByIDField is the only field name OrderBy accepts: queries may
// order by _id (ascending or descending) and nothing else.
const OrderByIDField = "_id"

// SortDirection selects ascending or descending order for OrderBy.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// OrderBy pins the query's iteration order to _id, in the given
// direction. Any other field name is a programmer error, not a runtime
// one — Query.Validate rejects it early rather than relying on the
// backing store to reject an unsupported sort.
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// ByID builds the canonical OrderBy(_id, direction).
func ByID(direction SortDirection) OrderBy {
	return OrderBy{Field: OrderByIDField, Direction: direction}
}

// Query pairs a filter expression with an optional sort order. Filter
// may be nil, meaning "match everything" (still subject to the
// data source's internally-applied temporal visibility filter).
type Query struct {
	Filter  Expr
	Order   *OrderBy
}

// Validate rejects a Query whose Order does not sort by _id.
func (q Query) Validate() error {
	if q.Order != nil && q.Order.Field != OrderByIDField {
		return skerr.Fmt("orderBy is restricted to %q, got %q", OrderByIDField, q.Order.Field)
	}
	return nil
}

// FieldLookup resolves a field name against whatever record Match is
// currently evaluating, returning ok == false for a field the record
// does not expose. Record types that want to participate in queries
// implement this themselves; one that does not simply matches nothing
// beyond the always-true empty And().
type FieldLookup func(field string) (value interface{}, ok bool)

// Match evaluates e against lookup, field by field. A field the record
// does not expose (ok == false) never satisfies Eq/In/Lt/Gt, so records
// that do not implement FieldLookup for a given field are excluded by
// any predicate naming it rather than matched by accident.
func Match(e Expr, lookup FieldLookup) bool {
	switch t := e.(type) {
	case nil:
		return true
	case eqExpr:
		v, ok := lookup(t.Field)
		return ok && v == t.Value
	case inExpr:
		v, ok := lookup(t.Field)
		if !ok {
			return false
		}
		for _, want := range t.Values {
			if v == want {
				return true
			}
		}
		return false
	case andExpr:
		for _, term := range t.Terms {
			if !Match(term, lookup) {
				return false
			}
		}
		return true
	case ltExpr:
		return compareOrdered(lookup, t.Field, t.Value, func(cmp int) bool { return cmp < 0 })
	case gtExpr:
		return compareOrdered(lookup, t.Field, t.Value, func(cmp int) bool { return cmp > 0 })
	default:
		return false
	}
}

func compareOrdered(lookup FieldLookup, field string, want interface{}, accept func(int) bool) bool {
	v, ok := lookup(field)
	if !ok {
		return false
	}
	switch a := v.(type) {
	case int64:
		b, ok := want.(int64)
		if !ok {
			return false
		}
		return accept(compareInt64(a, b))
	case int32:
		b, ok := want.(int32)
		if !ok {
			return false
		}
		return accept(compareInt64(int64(a), int64(b)))
	case string:
		b, ok := want.(string)
		if !ok {
			return false
		}
		return accept(compareString(a, b))
	default:
		return false
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
