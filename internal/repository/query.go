package repository

import (
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// Order is a caller-specified sort. Field must be in the repository's allow-list
// or the repository default is used.
type Order struct {
	Field      string
	Descending bool
}

func (o Order) clause(allowed map[string]string, fallback string) string {
	column, ok := allowed[o.Field]
	if !ok {
		return fallback + " DESC"
	}
	if o.Descending {
		return column + " DESC"
	}
	return column + " ASC"
}

// whereBuilder accumulates positional predicates.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) placeholder(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) eq(column string, value any) {
	w.clauses = append(w.clauses, column+"="+w.placeholder(value))
}

func (w *whereBuilder) cmp(column, op string, value any) {
	w.clauses = append(w.clauses, column+" "+op+" "+w.placeholder(value))
}

func (w *whereBuilder) in(column string, values []any) {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = w.placeholder(v)
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (w *whereBuilder) build() (string, []any) {
	if len(w.clauses) == 0 {
		return "1=1", w.args
	}
	return strings.Join(w.clauses, " AND "), w.args
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
