package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm/clause"
)

const countAlias = "agg_count"

// AggregateArgs selects aggregate functions over numeric columns
type AggregateArgs struct {
	Where []Filter
	Count bool
	Sum   []string
	Avg   []string
	Min   []string
	Max   []string
}

// AggregateResult holds aggregate values keyed by column name
type AggregateResult struct {
	Count int64
	Sum   map[string]float64
	Avg   map[string]float64
	Min   map[string]float64
	Max   map[string]float64
}

// GroupByArgs groups rows by columns, counting and optionally summing
type GroupByArgs struct {
	By      []string
	Where   []Filter
	Sum     []string
	OrderBy []Sort
}

// Group is one result row of GroupBy
type Group struct {
	Keys  map[string]any
	Count int64
	Sum   map[string]float64
}

// Key returns the group's value for column as a string
func (g Group) Key(column string) string {
	v, ok := g.Keys[column]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

type aggSpec struct {
	fn    string
	alias string
	col   string
}

// Aggregate computes count/sum/avg/min/max over the rows matching args.Where
func (c *Client[T]) Aggregate(ctx context.Context, args AggregateArgs) (*AggregateResult, error) {
	specs := make([]aggSpec, 0)
	add := func(fn string, fields []string) error {
		for _, name := range fields {
			col, err := c.numericColumn(name)
			if err != nil {
				return err
			}
			specs = append(specs, aggSpec{fn: fn, col: col, alias: strings.ToLower(fn) + "__" + col})
		}
		return nil
	}
	for fn, fields := range map[string][]string{"SUM": args.Sum, "AVG": args.Avg, "MIN": args.Min, "MAX": args.Max} {
		if err := add(fn, fields); err != nil {
			return nil, err
		}
	}

	selects := []string{"COUNT(*) AS " + countAlias}
	for _, s := range specs {
		selects = append(selects, fmt.Sprintf("%s(%s) AS %s", s.fn, s.col, s.alias))
	}

	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), args.Where)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := tx.Select(strings.Join(selects, ", ")).Scan(&rows).Error; err != nil {
		return nil, err
	}

	res := &AggregateResult{
		Sum: map[string]float64{},
		Avg: map[string]float64{},
		Min: map[string]float64{},
		Max: map[string]float64{},
	}
	if len(rows) == 0 {
		return res, nil
	}
	row := rows[0]
	res.Count = toInt64(row[countAlias])
	for _, s := range specs {
		v := toFloat(row[s.alias])
		switch s.fn {
		case "SUM":
			res.Sum[s.col] = v
		case "AVG":
			res.Avg[s.col] = v
		case "MIN":
			res.Min[s.col] = v
		case "MAX":
			res.Max[s.col] = v
		}
	}
	return res, nil
}

// GroupBy counts rows per distinct combination of args.By
func (c *Client[T]) GroupBy(ctx context.Context, args GroupByArgs) ([]Group, error) {
	if len(args.By) == 0 {
		return nil, fmt.Errorf("%w: group by requires at least one field", ErrUnknownField)
	}

	by := make([]string, 0, len(args.By))
	for _, name := range args.By {
		col, err := c.column(name)
		if err != nil {
			return nil, err
		}
		by = append(by, col)
	}
	sums := make([]string, 0, len(args.Sum))
	for _, name := range args.Sum {
		col, err := c.numericColumn(name)
		if err != nil {
			return nil, err
		}
		sums = append(sums, col)
	}

	selects := append([]string{}, by...)
	selects = append(selects, "COUNT(*) AS "+countAlias)
	for _, col := range sums {
		selects = append(selects, fmt.Sprintf("SUM(%s) AS sum__%s", col, col))
	}

	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), args.Where)
	if err != nil {
		return nil, err
	}
	tx = tx.Select(strings.Join(selects, ", ")).Group(strings.Join(by, ", "))

	if len(args.OrderBy) == 0 {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: by[0]}})
	}
	for _, s := range args.OrderBy {
		col, err := c.column(s.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: s.Desc})
	}

	var rows []map[string]any
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		g := Group{Keys: map[string]any{}, Count: toInt64(row[countAlias]), Sum: map[string]float64{}}
		for _, col := range by {
			g.Keys[col] = normalize(row[col])
		}
		for _, col := range sums {
			g.Sum[col] = toFloat(row["sum__"+col])
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		i, _ := strconv.ParseInt(string(n), 10, 64)
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case uint64:
		return float64(n)
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
