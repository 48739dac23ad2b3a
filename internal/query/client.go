// Package query is a schema-driven data-access client over gorm.
//
// A Client is bound to one model type. Every field referenced by a filter,
// sort, select or group-by is checked against the model's parsed gorm
// schema, so callers can only address real columns.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var (
	ErrNotFound         = gorm.ErrRecordNotFound
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownRelation  = errors.New("unknown relation")
	ErrUnknownOperator  = errors.New("unknown filter operator")
	ErrSelectAndInclude = errors.New("select and include cannot be used together")
	ErrNotNumeric       = errors.New("field is not numeric")
	ErrEmptyWhere       = errors.New("bulk operation requires a filter")
)

var schemaCache sync.Map

// Client runs typed operations for model T
type Client[T any] struct {
	db     *gorm.DB
	schema *schema.Schema
}

// FindManyArgs describes a list query
type FindManyArgs struct {
	Where   []Filter
	OrderBy []Sort
	Skip    int
	Take    int
	Select  []string
	Include []string
}

// New parses T's schema and returns a client for it
func New[T any](db *gorm.DB) (*Client[T], error) {
	s, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return &Client[T]{db: db, schema: s}, nil
}

// MustNew is New for wiring code where a bad model is a programming error
func MustNew[T any](db *gorm.DB) *Client[T] {
	c, err := New[T](db)
	if err != nil {
		panic(err)
	}
	return c
}

// WithTx returns a client that runs on tx
func (c *Client[T]) WithTx(tx *gorm.DB) *Client[T] {
	return &Client[T]{db: tx, schema: c.schema}
}

// Table returns the model's table name
func (c *Client[T]) Table() string {
	return c.schema.Table
}

func (c *Client[T]) column(name string) (string, error) {
	f := c.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, c.schema.Name, name)
	}
	return f.DBName, nil
}

func (c *Client[T]) numericColumn(name string) (string, error) {
	f := c.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, c.schema.Name, name)
	}
	switch f.GORMDataType {
	case schema.Int, schema.Uint, schema.Float:
		return f.DBName, nil
	}
	return "", fmt.Errorf("%w: %s.%s", ErrNotNumeric, c.schema.Name, name)
}

func (c *Client[T]) byID(id any) clause.Where {
	pk := clause.Column{Table: clause.CurrentTable, Name: c.schema.PrioritizedPrimaryField.DBName}
	return clause.Where{Exprs: []clause.Expression{clause.Eq{Column: pk, Value: id}}}
}

func (c *Client[T]) scope(tx *gorm.DB, where []Filter) (*gorm.DB, error) {
	if len(where) == 0 {
		return tx, nil
	}
	exprs := make([]clause.Expression, 0, len(where))
	for _, f := range where {
		e, err := c.expr(f)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return tx.Clauses(clause.Where{Exprs: exprs}), nil
}

func (c *Client[T]) build(ctx context.Context, args FindManyArgs) (*gorm.DB, error) {
	if len(args.Select) > 0 && len(args.Include) > 0 {
		return nil, ErrSelectAndInclude
	}

	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), args.Where)
	if err != nil {
		return nil, err
	}

	if len(args.Select) > 0 {
		cols := make([]string, 0, len(args.Select))
		for _, name := range args.Select {
			col, err := c.column(name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		tx = tx.Select(cols)
	}

	for _, name := range args.Include {
		if _, ok := c.schema.Relationships.Relations[name]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, c.schema.Name, name)
		}
		tx = tx.Preload(name)
	}

	for _, s := range args.OrderBy {
		col, err := c.column(s.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: col}, Desc: s.Desc})
	}

	if args.Skip > 0 {
		tx = tx.Offset(args.Skip)
	}
	if args.Take > 0 {
		tx = tx.Limit(args.Take)
	}
	return tx, nil
}

// FindUnique loads one row by primary key
func (c *Client[T]) FindUnique(ctx context.Context, id any, include ...string) (*T, error) {
	tx, err := c.build(ctx, FindManyArgs{Include: include})
	if err != nil {
		return nil, err
	}
	var out T
	if err := tx.Clauses(c.byID(id)).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// FindFirst returns the first row matching args
func (c *Client[T]) FindFirst(ctx context.Context, args FindManyArgs) (*T, error) {
	args.Take = 1
	tx, err := c.build(ctx, args)
	if err != nil {
		return nil, err
	}
	var out T
	if err := tx.Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// FindMany returns all rows matching args
func (c *Client[T]) FindMany(ctx context.Context, args FindManyArgs) ([]T, error) {
	tx, err := c.build(ctx, args)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of rows matching where
func (c *Client[T]) Count(ctx context.Context, where ...Filter) (int64, error) {
	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), where)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Exists reports whether any row matches where
func (c *Client[T]) Exists(ctx context.Context, where ...Filter) (bool, error) {
	n, err := c.Count(ctx, where...)
	return n > 0, err
}

// Distinct returns the sorted distinct values of a column
func (c *Client[T]) Distinct(ctx context.Context, field string, where ...Filter) ([]string, error) {
	col, err := c.column(field)
	if err != nil {
		return nil, err
	}
	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), where)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0)
	if err := tx.Distinct().Order(col).Pluck(col, &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts row
func (c *Client[T]) Create(ctx context.Context, row *T) error {
	return c.db.WithContext(ctx).Create(row).Error
}

func (c *Client[T]) assignments(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for name, v := range values {
		col, err := c.column(name)
		if err != nil {
			return nil, err
		}
		out[col] = v
	}
	return out, nil
}

// Update sets values on the row with primary key id
func (c *Client[T]) Update(ctx context.Context, id any, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	assign, err := c.assignments(values)
	if err != nil {
		return err
	}
	return c.db.WithContext(ctx).Model(new(T)).
		Clauses(c.byID(id)).
		Updates(assign).Error
}

// UpdateMany sets values on every row matching where
func (c *Client[T]) UpdateMany(ctx context.Context, where []Filter, values map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, ErrEmptyWhere
	}
	assign, err := c.assignments(values)
	if err != nil {
		return 0, err
	}
	tx, err := c.scope(c.db.WithContext(ctx).Model(new(T)), where)
	if err != nil {
		return 0, err
	}
	res := tx.Updates(assign)
	return res.RowsAffected, res.Error
}

// Delete removes the row with primary key id
func (c *Client[T]) Delete(ctx context.Context, id any) (int64, error) {
	res := c.db.WithContext(ctx).Clauses(c.byID(id)).Delete(new(T))
	return res.RowsAffected, res.Error
}

// DeleteMany removes every row matching where
func (c *Client[T]) DeleteMany(ctx context.Context, where ...Filter) (int64, error) {
	if len(where) == 0 {
		return 0, ErrEmptyWhere
	}
	tx, err := c.scope(c.db.WithContext(ctx), where)
	if err != nil {
		return 0, err
	}
	res := tx.Delete(new(T))
	return res.RowsAffected, res.Error
}
