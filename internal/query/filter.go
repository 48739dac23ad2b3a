package query

import (
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm/clause"
)

// likeEscape marks a literal % or _ in LIKE patterns. Backslash is avoided
// because MySQL also treats it as a string literal escape.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// Op is a filter operator
type Op string

const (
	Equals     Op = "equals"
	Not        Op = "not"
	In         Op = "in"
	NotIn      Op = "notIn"
	Lt         Op = "lt"
	Lte        Op = "lte"
	Gt         Op = "gt"
	Gte        Op = "gte"
	Contains   Op = "contains"
	StartsWith Op = "startsWith"
	EndsWith   Op = "endsWith"
)

// Filter is one condition on a column, or an OR group when Or is set
type Filter struct {
	Field string
	Op    Op
	Value any
	Or    []Filter
}

// Sort orders results by one column
type Sort struct {
	Field string
	Desc  bool
}

// Where builds a filter
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Eq builds an equality filter; a nil value matches NULL
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: Equals, Value: value}
}

// AnyOf groups filters with OR
func AnyOf(filters ...Filter) Filter {
	return Filter{Or: filters}
}

// Asc and Desc build sort terms
func Asc(field string) Sort  { return Sort{Field: field} }
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

func (c *Client[T]) expr(f Filter) (clause.Expression, error) {
	if len(f.Or) > 0 {
		exprs := make([]clause.Expression, 0, len(f.Or))
		for _, sub := range f.Or {
			e, err := c.expr(sub)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return clause.Or(exprs...), nil
	}

	col, err := c.column(f.Field)
	if err != nil {
		return nil, err
	}
	column := clause.Column{Table: clause.CurrentTable, Name: col}

	switch f.Op {
	case Equals, "":
		return clause.Eq{Column: column, Value: f.Value}, nil
	case Not:
		return clause.Neq{Column: column, Value: f.Value}, nil
	case In:
		values, err := toSlice(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Field, err)
		}
		return clause.IN{Column: column, Values: values}, nil
	case NotIn:
		values, err := toSlice(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Field, err)
		}
		return clause.Not(clause.IN{Column: column, Values: values}), nil
	case Lt:
		return clause.Lt{Column: column, Value: f.Value}, nil
	case Lte:
		return clause.Lte{Column: column, Value: f.Value}, nil
	case Gt:
		return clause.Gt{Column: column, Value: f.Value}, nil
	case Gte:
		return clause.Gte{Column: column, Value: f.Value}, nil
	case Contains, StartsWith, EndsWith:
		s, ok := f.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %s requires a string value", f.Field, f.Op)
		}
		s = likeEscaper.Replace(s)
		pattern := "%" + s + "%"
		if f.Op == StartsWith {
			pattern = s + "%"
		} else if f.Op == EndsWith {
			pattern = "%" + s
		}
		return clause.Expr{SQL: "? LIKE ? ESCAPE '" + likeEscape + "'", Vars: []interface{}{column, pattern}}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, f.Op)
}

func toSlice(v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("in/notIn requires a slice, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
